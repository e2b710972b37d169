package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	postController "github.com/abassolaiya/phibitechbackend/internals/features/blogs/posts/controller"
	helperOSS "github.com/abassolaiya/phibitechbackend/internals/helpers/oss"
	authMiddleware "github.com/abassolaiya/phibitechbackend/internals/middlewares/auth"
)

// PostRoutes mounts the blog. Reads are public with drafts visible to their author;
// writes need a signed-in author and ownership (or admin).
func PostRoutes(api fiber.Router, db *gorm.DB, authn *authMiddleware.Authenticator, uploader helperOSS.Uploader) {
	ctl := postController.NewPostController(db, uploader)
	auth := authn.AuthMiddleware()

	posts := api.Group("/posts")
	posts.Get("/", authn.OptionalAuthMiddleware(), ctl.ListPosts)
	posts.Get("/:slug", authn.OptionalAuthMiddleware(), ctl.GetPost)

	posts.Post("/", auth, ctl.CreatePost)
	posts.Put("/:id", auth, ctl.UpdatePost)
	posts.Delete("/:id", auth, ctl.DeletePost)
	posts.Post("/:id/cover", auth, ctl.UploadCover)
	posts.Post("/:id/like", auth, ctl.ToggleLike) // ❤️ toggle
}
