package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"github.com/abassolaiya/phibitechbackend/internals/configs"
	"github.com/abassolaiya/phibitechbackend/internals/middlewares/logger"
)

// SetupMiddlewares installs the app-wide chain in order: recover, request id,
// access log, CORS, request deadline.
func SetupMiddlewares(app *fiber.App, cfg *configs.Config) {
	app.Use(RecoveryMiddleware())
	app.Use(RequestIDMiddleware())
	app.Use(logger.LoggerMiddleware())
	app.Use(CorsMiddleware(cfg.CORSOrigins))
	app.Use(RequestContextMiddleware(cfg.RequestTimeout))
}
