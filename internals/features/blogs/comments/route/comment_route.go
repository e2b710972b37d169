package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	commentController "github.com/abassolaiya/phibitechbackend/internals/features/blogs/comments/controller"
	authMiddleware "github.com/abassolaiya/phibitechbackend/internals/middlewares/auth"
)

// CommentRoutes mounts comment threads under /posts/:id and the /comments, /replies resources.
func CommentRoutes(api fiber.Router, db *gorm.DB, authn *authMiddleware.Authenticator) {
	ctl := commentController.NewCommentController(db)
	auth := authn.AuthMiddleware()
	optional := authn.OptionalAuthMiddleware()

	api.Get("/posts/:id/comments", optional, ctl.ListComments)
	api.Post("/posts/:id/comments", auth, ctl.CreateComment)

	comments := api.Group("/comments")
	comments.Put("/:id", auth, ctl.UpdateComment)
	comments.Delete("/:id", auth, ctl.DeleteComment)
	comments.Post("/:id/like", auth, ctl.ToggleCommentLike)
	comments.Get("/:id/replies", optional, ctl.ListReplies)
	comments.Post("/:id/replies", auth, ctl.CreateReply)

	replies := api.Group("/replies")
	replies.Put("/:id", auth, ctl.UpdateReply)
	replies.Delete("/:id", auth, ctl.DeleteReply)
	replies.Post("/:id/like", auth, ctl.ToggleReplyLike)
}
