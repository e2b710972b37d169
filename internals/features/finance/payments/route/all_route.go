package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/abassolaiya/phibitechbackend/internals/constants"
	paymentsController "github.com/abassolaiya/phibitechbackend/internals/features/finance/payments/controller"
	"github.com/abassolaiya/phibitechbackend/internals/features/finance/payments/service"
	authMiddleware "github.com/abassolaiya/phibitechbackend/internals/middlewares/auth"
)

// AllPaymentRoutes mounts checkout (optional sign-in), the gateway notification hook
// and the admin view of the notification log.
func AllPaymentRoutes(r fiber.Router, db *gorm.DB, authn *authMiddleware.Authenticator, gw service.Gateway) {
	h := paymentsController.NewPaymentController(db, gw)
	ev := paymentsController.NewPaymentEventController(db)

	r.Post("/registrations/:id/checkout", authn.OptionalAuthMiddleware(), h.Checkout)

	// called by Midtrans; authenticated by signature_key
	r.Post("/payments/notification", h.MidtransWebhook)

	adminOnly := []fiber.Handler{
		authn.AuthMiddleware(),
		authMiddleware.OnlyRolesSlice(constants.RoleErrorAdmin("payment events"), constants.AdminOnly),
	}
	r.Get("/payments/events", append(adminOnly, ev.ListEvents)...)
	r.Get("/payments/events/:id", append(adminOnly, ev.GetByID)...)
}
