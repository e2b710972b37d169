package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	authorController "github.com/abassolaiya/phibitechbackend/internals/features/users/authors/controller"
	helperOSS "github.com/abassolaiya/phibitechbackend/internals/helpers/oss"
	authMiddleware "github.com/abassolaiya/phibitechbackend/internals/middlewares/auth"
)

func AuthorRoutes(api fiber.Router, db *gorm.DB, authn *authMiddleware.Authenticator, up helperOSS.Uploader) {
	ctl := authorController.NewAuthorController(db, up)

	authors := api.Group("/authors")
	// /me before /:username so "me" is never read as a username
	authors.Put("/me/avatar", authn.AuthMiddleware(), ctl.UploadAvatar)
	authors.Put("/me/cover", authn.AuthMiddleware(), ctl.UploadCoverPhoto)
	authors.Get("/:username", ctl.GetPublicProfile)
}
