package route

import (
	"github.com/gofiber/fiber/v2"

	mediaController "github.com/abassolaiya/phibitechbackend/internals/features/media/controller"
	helperOSS "github.com/abassolaiya/phibitechbackend/internals/helpers/oss"
	authMiddleware "github.com/abassolaiya/phibitechbackend/internals/middlewares/auth"
)

func MediaRoutes(api fiber.Router, authn *authMiddleware.Authenticator, up helperOSS.Uploader) {
	ctl := mediaController.NewMediaController(up)
	api.Post("/media", authn.AuthMiddleware(), ctl.Upload)
}
