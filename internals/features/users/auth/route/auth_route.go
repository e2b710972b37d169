package route

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gorilla/sessions"
	"gorm.io/gorm"

	"github.com/abassolaiya/phibitechbackend/internals/configs"
	"github.com/abassolaiya/phibitechbackend/internals/features/users/auth/controller"
	"github.com/abassolaiya/phibitechbackend/internals/features/users/auth/service"
	"github.com/abassolaiya/phibitechbackend/internals/helpers/mailer"
	rateLimiter "github.com/abassolaiya/phibitechbackend/internals/middlewares"
	authMiddleware "github.com/abassolaiya/phibitechbackend/internals/middlewares/auth"
)

// AuthRoutes mounts /auth under api (normally /api).
func AuthRoutes(api fiber.Router, db *gorm.DB, cfg *configs.Config, authn *authMiddleware.Authenticator, store sessions.Store, m mailer.Mailer) {
	svc := service.NewAuthService(db, cfg, m)
	authController := controller.NewAuthController(db, svc, cfg.JWT.CookieSecure, cfg.Session.Name)
	oauthController := controller.NewOAuthController(svc, service.NewGoogleOAuthConfig(cfg.Google),
		store, cfg.Session.Name, cfg.Google.SuccessRedirect)

	baseAuth := api.Group("/auth")

	// 🔓 public
	baseAuth.Post("/register", rateLimiter.RegisterRateLimiter(), authController.Register)
	baseAuth.Post("/login", rateLimiter.LoginRateLimiter(), authController.Login)
	baseAuth.Post("/login-google", rateLimiter.LoginRateLimiter(), authController.LoginGoogle)
	baseAuth.Post("/forgot-password", rateLimiter.ForgotPasswordRateLimiter(), authController.ForgotPassword)
	baseAuth.Post("/reset-password", rateLimiter.ForgotPasswordRateLimiter(), authController.ResetPassword)

	// browser OAuth flow (server-side session)
	baseAuth.Get("/google", adaptor.HTTPHandlerFunc(oauthController.GoogleLogin))
	baseAuth.Get("/google/callback", adaptor.HTTPHandlerFunc(oauthController.GoogleCallback))

	// token lifecycle: both check the presented tokens themselves
	baseAuth.Post("/refresh-token", authController.RefreshToken)
	baseAuth.Post("/logout", authController.Logout)

	// 🔐 signed in
	baseAuth.Post("/change-password", authn.AuthMiddleware(), authController.ChangePassword)
	baseAuth.Get("/me", authn.AuthMiddleware(), authController.Me)
	baseAuth.Put("/me", authn.AuthMiddleware(), authController.UpdateMe)
	baseAuth.Put("/me/bank-details", authn.AuthMiddleware(), authController.UpdateBankDetails)
}
