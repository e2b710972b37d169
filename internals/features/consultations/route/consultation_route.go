package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/abassolaiya/phibitechbackend/internals/constants"
	consultationController "github.com/abassolaiya/phibitechbackend/internals/features/consultations/controller"
	"github.com/abassolaiya/phibitechbackend/internals/helpers/mailer"
	"github.com/abassolaiya/phibitechbackend/internals/middlewares"
	authMiddleware "github.com/abassolaiya/phibitechbackend/internals/middlewares/auth"
)

func ConsultationRoutes(api fiber.Router, db *gorm.DB, a *authMiddleware.Authenticator, m mailer.Mailer, adminInbox string) {
	ctl := consultationController.NewConsultationController(db, m, adminInbox)

	g := api.Group("/consultations")
	g.Post("/", middlewares.SubmissionRateLimiter(), ctl.Submit) // 📨 public

	adminOnly := []fiber.Handler{
		a.AuthMiddleware(),
		authMiddleware.OnlyRolesSlice(constants.RoleErrorAdmin("consultations"), constants.AdminOnly),
	}
	g.Get("/", append(adminOnly, ctl.List)...)
	g.Get("/:id", append(adminOnly, ctl.Get)...)
	g.Put("/:id/status", append(adminOnly, ctl.UpdateStatus)...)
	g.Delete("/:id", append(adminOnly, ctl.Delete)...)
}
