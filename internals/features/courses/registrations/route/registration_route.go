package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/abassolaiya/phibitechbackend/internals/constants"
	registrationController "github.com/abassolaiya/phibitechbackend/internals/features/courses/registrations/controller"
	"github.com/abassolaiya/phibitechbackend/internals/helpers/mailer"
	"github.com/abassolaiya/phibitechbackend/internals/middlewares"
	authMiddleware "github.com/abassolaiya/phibitechbackend/internals/middlewares/auth"
)

func RegistrationRoutes(api fiber.Router, db *gorm.DB, a *authMiddleware.Authenticator, m mailer.Mailer) {
	ctl := registrationController.NewRegistrationController(db, m)

	admin := func(h fiber.Handler) []fiber.Handler {
		return []fiber.Handler{
			a.AuthMiddleware(),
			authMiddleware.OnlyRolesSlice(constants.RoleErrorAdmin("registrations"), constants.AdminOnly),
			h,
		}
	}

	// 📝 apply (signed-in callers get the registration linked to their account)
	api.Post("/courses/:courseId/registrations",
		middlewares.SubmissionRateLimiter(), a.OptionalAuthMiddleware(), ctl.Register)
	api.Get("/courses/:courseId/registrations", admin(ctl.ListForCourse)...)

	reg := api.Group("/registrations")
	reg.Get("/:id", admin(ctl.GetRegistration)...)
	reg.Put("/:id/status", admin(ctl.UpdateStatus)...)
	reg.Put("/:id/payment", admin(ctl.UpdatePayment)...)
	reg.Delete("/:id", admin(ctl.DeleteRegistration)...)
}
