package controller

import (
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abassolaiya/phibitechbackend/internals/constants"
	"github.com/abassolaiya/phibitechbackend/internals/features/blogs/posts/dto"
	"github.com/abassolaiya/phibitechbackend/internals/features/blogs/posts/service"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
	helperOSS "github.com/abassolaiya/phibitechbackend/internals/helpers/oss"
	authMiddleware "github.com/abassolaiya/phibitechbackend/internals/middlewares/auth"
)

var validatePost = validator.New()

type PostController struct {
	DB       *gorm.DB
	Uploader helperOSS.Uploader
	Now      func() time.Time
}

func NewPostController(db *gorm.DB, uploader helperOSS.Uploader) *PostController {
	return &PostController{DB: db, Uploader: uploader, Now: time.Now}
}

func actorFrom(c *fiber.Ctx) (service.Actor, error) {
	id, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return service.Actor{}, err
	}
	return service.Actor{ID: id, Admin: authMiddleware.IsAdmin(c)}, nil
}

func postID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid post id")
	}
	return id, nil
}

// GET /api/posts?q=&tag=&author=&mine=true&page=&per_page=
func (ctl *PostController) ListPosts(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 10, 50)
	f := service.ListFilter{
		Query:  c.Query("q"),
		Tag:    c.Query("tag"),
		Author: c.Query("author"),
		Mine:   c.QueryBool("mine", false),
	}

	posts, total, err := service.ListPosts(c.UserContext(), ctl.DB, f, p, helper.OptionalUserID(c), authMiddleware.IsAdmin(c))
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "posts fetched", posts,
		helper.BuildPaginationFromPage(total, p.Page, p.PerPage, len(posts)))
}

// GET /api/posts/:slug (slug or id)
func (ctl *PostController) GetPost(c *fiber.Ctx) error {
	detail, err := service.GetPostDetail(c.UserContext(), ctl.DB, c.Params("slug"), helper.OptionalUserID(c), authMiddleware.IsAdmin(c))
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "post fetched", detail)
}

// POST /api/posts
func (ctl *PostController) CreatePost(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Normalize()
	if err := validatePost.Struct(&req); err != nil {
		return helper.FromFiberError(c, err)
	}

	view, err := service.CreatePost(c.UserContext(), ctl.DB, actor.ID, req, ctl.Now())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	log.Printf("[INFO] post created: %s by %s", view.Slug, actor.ID)
	return helper.JsonCreated(c, "post created", view)
}

// PUT /api/posts/:id
func (ctl *PostController) UpdatePost(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := postID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Normalize()
	if err := validatePost.Struct(&req); err != nil {
		return helper.FromFiberError(c, err)
	}

	view, err := service.UpdatePost(c.UserContext(), ctl.DB, id, actor, req, ctl.Now())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "post updated", view)
}

// DELETE /api/posts/:id
func (ctl *PostController) DeletePost(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := postID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	deleted, err := service.DeletePost(c.UserContext(), ctl.DB, id, actor)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if deleted.BlogPostCoverImage != "" {
		if err := ctl.Uploader.DeleteByPublicURL(c.UserContext(), deleted.BlogPostCoverImage); err != nil {
			log.Printf("[WARN] delete cover of post %s: %v", deleted.BlogPostSlug, err)
		}
	}
	return helper.JsonDeleted(c, "post deleted", fiber.Map{"id": deleted.BlogPostID, "slug": deleted.BlogPostSlug})
}

// POST /api/posts/:id/cover (multipart: cover|image|file)
func (ctl *PostController) UploadCover(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := postID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	fh, err := helperOSS.GetImageFile(c, "cover", "image", "file")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if fh == nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "cover image is required")
	}
	if constants.DetectFileTypeFromExt(fh.Filename) != constants.FileTypeImage {
		return helper.JsonError(c, fiber.StatusBadRequest, "cover must be a jpg, png or webp image")
	}
	if err := service.AuthorizeCover(c.UserContext(), ctl.DB, id, actor); err != nil {
		return helper.FromFiberError(c, err)
	}

	url, err := ctl.Uploader.UploadImage(c.UserContext(), fh, constants.MediaDirPosts)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	view, old, err := service.SetCoverImage(c.UserContext(), ctl.DB, id, actor, url)
	if err != nil {
		_ = ctl.Uploader.DeleteByPublicURL(c.UserContext(), url)
		return helper.FromFiberError(c, err)
	}
	if old != "" && old != url {
		if err := ctl.Uploader.DeleteByPublicURL(c.UserContext(), old); err != nil {
			log.Printf("[WARN] delete previous cover of post %s: %v", view.Slug, err)
		}
	}
	return helper.JsonUpdated(c, "cover uploaded", view)
}

// POST /api/posts/:id/like (id or slug)
func (ctl *PostController) ToggleLike(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	res, err := service.ToggleLike(c.UserContext(), ctl.DB, c.Params("id"), actor, ctl.Now())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	msg := "unliked"
	if res.Liked {
		msg = "liked"
	}
	return helper.JsonOK(c, msg, res)
}
