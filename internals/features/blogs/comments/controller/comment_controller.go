package controller

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abassolaiya/phibitechbackend/internals/features/blogs/comments/dto"
	"github.com/abassolaiya/phibitechbackend/internals/features/blogs/comments/service"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
	authMiddleware "github.com/abassolaiya/phibitechbackend/internals/middlewares/auth"
)

var validateComment = validator.New()

type CommentController struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{DB: db, Now: time.Now}
}

func actorFrom(c *fiber.Ctx) (service.Actor, error) {
	id, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return service.Actor{}, err
	}
	return service.Actor{ID: id, Admin: authMiddleware.IsAdmin(c)}, nil
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func parseContent(c *fiber.Ctx) (string, error) {
	var req dto.ContentRequest
	if err := c.BodyParser(&req); err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	req.Normalize()
	if err := validateComment.Struct(&req); err != nil {
		return "", err
	}
	return req.Content, nil
}

// GET /api/posts/:id/comments
func (ctl *CommentController) ListComments(c *fiber.Ctx) error {
	postID, err := paramID(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	tree, err := service.ListForPost(c.UserContext(), ctl.DB, postID, helper.OptionalUserID(c), authMiddleware.IsAdmin(c))
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "comments fetched", tree)
}

// POST /api/posts/:id/comments
func (ctl *CommentController) CreateComment(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	postID, err := paramID(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	content, err := parseContent(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	view, err := service.CreateComment(c.UserContext(), ctl.DB, postID, actor, content)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "comment created", view)
}

// PUT /api/comments/:id
func (ctl *CommentController) UpdateComment(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	content, err := parseContent(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	view, err := service.UpdateComment(c.UserContext(), ctl.DB, id, actor, content)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "comment updated", view)
}

// DELETE /api/comments/:id
func (ctl *CommentController) DeleteComment(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := service.DeleteComment(c.UserContext(), ctl.DB, id, actor); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "comment deleted", fiber.Map{"id": id})
}

// POST /api/comments/:id/like
func (ctl *CommentController) ToggleCommentLike(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	res, err := service.ToggleCommentLike(c.UserContext(), ctl.DB, id, actor, ctl.Now())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, likeMessage(res.Liked), res)
}

// GET /api/comments/:id/replies
func (ctl *CommentController) ListReplies(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	replies, err := service.ListReplies(c.UserContext(), ctl.DB, id, helper.OptionalUserID(c), authMiddleware.IsAdmin(c))
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "replies fetched", replies)
}

// POST /api/comments/:id/replies
func (ctl *CommentController) CreateReply(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	content, err := parseContent(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	view, err := service.CreateReply(c.UserContext(), ctl.DB, id, actor, content)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "reply created", view)
}

// PUT /api/replies/:id
func (ctl *CommentController) UpdateReply(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	content, err := parseContent(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	view, err := service.UpdateReply(c.UserContext(), ctl.DB, id, actor, content)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "reply updated", view)
}

// DELETE /api/replies/:id
func (ctl *CommentController) DeleteReply(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := service.DeleteReply(c.UserContext(), ctl.DB, id, actor); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "reply deleted", fiber.Map{"id": id})
}

// POST /api/replies/:id/like
func (ctl *CommentController) ToggleReplyLike(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	res, err := service.ToggleReplyLike(c.UserContext(), ctl.DB, id, actor, ctl.Now())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, likeMessage(res.Liked), res)
}

func likeMessage(liked bool) string {
	if liked {
		return "liked"
	}
	return "unliked"
}
