package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/abassolaiya/phibitechbackend/internals/constants"
	jobController "github.com/abassolaiya/phibitechbackend/internals/features/careers/jobs/controller"
	authMiddleware "github.com/abassolaiya/phibitechbackend/internals/middlewares/auth"
)

// JobRoutes mounts the public job board and admin management.
func JobRoutes(api fiber.Router, db *gorm.DB, authn *authMiddleware.Authenticator) {
	ctl := jobController.NewJobController(db)

	adminOnly := []fiber.Handler{
		authn.AuthMiddleware(),
		authMiddleware.OnlyRolesSlice(constants.RoleErrorAdmin("job management"), constants.AdminOnly),
	}

	jobs := api.Group("/jobs")
	// optional auth lets admins see closed jobs on the same endpoints
	jobs.Get("/", authn.OptionalAuthMiddleware(), ctl.ListJobs)
	jobs.Get("/:slug", authn.OptionalAuthMiddleware(), ctl.GetJob)

	jobs.Post("/", append(adminOnly, ctl.CreateJob)...)
	jobs.Put("/:id", append(adminOnly, ctl.UpdateJob)...)
	jobs.Delete("/:id", append(adminOnly, ctl.DeleteJob)...)
}
