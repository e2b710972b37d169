package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/abassolaiya/phibitechbackend/internals/constants"
	courseController "github.com/abassolaiya/phibitechbackend/internals/features/courses/courses/controller"
	helperOSS "github.com/abassolaiya/phibitechbackend/internals/helpers/oss"
	authMiddleware "github.com/abassolaiya/phibitechbackend/internals/middlewares/auth"
)

// CourseRoutes mounts the public catalogue and the admin management endpoints.
func CourseRoutes(api fiber.Router, db *gorm.DB, authn *authMiddleware.Authenticator, uploader helperOSS.Uploader) {
	ctl := courseController.NewCourseController(db, uploader)

	adminOnly := []fiber.Handler{
		authn.AuthMiddleware(),
		authMiddleware.OnlyRolesSlice(constants.RoleErrorAdmin("course management"), constants.AdminOnly),
	}

	courses := api.Group("/courses")
	courses.Get("/", ctl.ListCourses)    // 📄 catalogue
	courses.Get("/:slug", ctl.GetCourse) // 🔍 detail + derived pricing

	courses.Post("/", append(adminOnly, ctl.CreateCourse)...)
	courses.Put("/:slug", append(adminOnly, ctl.UpdateCourse)...)
	courses.Delete("/:slug", append(adminOnly, ctl.DeleteCourse)...)
	courses.Post("/:slug/cover", append(adminOnly, ctl.UploadCover)...)
}
