package controller

import (
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/abassolaiya/phibitechbackend/internals/constants"
	"github.com/abassolaiya/phibitechbackend/internals/features/courses/courses/dto"
	"github.com/abassolaiya/phibitechbackend/internals/features/courses/courses/service"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
	helperOSS "github.com/abassolaiya/phibitechbackend/internals/helpers/oss"
)

var validateCourse = validator.New()

type CourseController struct {
	DB       *gorm.DB
	Uploader helperOSS.Uploader
	Now      func() time.Time
}

func NewCourseController(db *gorm.DB, uploader helperOSS.Uploader) *CourseController {
	return &CourseController{DB: db, Uploader: uploader, Now: time.Now}
}

// GET /api/courses?q=&level=&open=true&page=&per_page=
func (ctl *CourseController) ListCourses(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 12, 100)
	f := service.ListFilter{
		Query:    c.Query("q"),
		Level:    strings.TrimSpace(c.Query("level")),
		OpenOnly: c.QueryBool("open", false),
	}

	views, total, err := service.ListCourses(c.UserContext(), ctl.DB, f, p, ctl.Now())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "courses fetched", views,
		helper.BuildPaginationFromPage(total, p.Page, p.PerPage, len(views)))
}

// GET /api/courses/:slug
func (ctl *CourseController) GetCourse(c *fiber.Ctx) error {
	view, err := service.DescribeCourse(c.UserContext(), ctl.DB, c.Params("slug"), ctl.Now())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "course fetched", view)
}

// POST /api/courses
func (ctl *CourseController) CreateCourse(c *fiber.Ctx) error {
	var req dto.CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Normalize()
	if err := validateCourse.Struct(&req); err != nil {
		return helper.FromFiberError(c, err)
	}

	created, err := service.CreateCourse(c.UserContext(), ctl.DB, req.ToModel())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	log.Printf("[INFO] course created: %s (%s)", created.CourseSlug, created.CourseID)
	return helper.JsonCreated(c, "course created", service.BuildCourseView(ctl.Now(), *created))
}

// PUT /api/courses/:slug
func (ctl *CourseController) UpdateCourse(c *fiber.Ctx) error {
	var req dto.UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validateCourse.Struct(&req); err != nil {
		return helper.FromFiberError(c, err)
	}

	updated, err := service.UpdateCourse(c.UserContext(), ctl.DB, c.Params("slug"), req)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "course updated", service.BuildCourseView(ctl.Now(), *updated))
}

// DELETE /api/courses/:slug
func (ctl *CourseController) DeleteCourse(c *fiber.Ctx) error {
	deleted, err := service.DeleteCourse(c.UserContext(), ctl.DB, c.Params("slug"))
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	if deleted.CourseCoverImage != "" {
		if err := ctl.Uploader.DeleteByPublicURL(c.UserContext(), deleted.CourseCoverImage); err != nil {
			log.Printf("[WARN] delete cover of %s: %v", deleted.CourseSlug, err)
		}
	}
	return helper.JsonDeleted(c, "course deleted", fiber.Map{"id": deleted.CourseID, "slug": deleted.CourseSlug})
}

// POST /api/courses/:slug/cover (multipart: cover|image|file)
func (ctl *CourseController) UploadCover(c *fiber.Ctx) error {
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

	// fail fast before uploading
	if _, err := service.FindBySlug(c.UserContext(), ctl.DB, c.Params("slug")); err != nil {
		return helper.FromFiberError(c, err)
	}

	url, err := ctl.Uploader.UploadImage(c.UserContext(), fh, constants.MediaDirCourseCovers)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	course, old, err := service.SetCoverImage(c.UserContext(), ctl.DB, c.Params("slug"), url)
	if err != nil {
		_ = ctl.Uploader.DeleteByPublicURL(c.UserContext(), url)
		return helper.FromFiberError(c, err)
	}
	if old != "" && old != url {
		if err := ctl.Uploader.DeleteByPublicURL(c.UserContext(), old); err != nil {
			log.Printf("[WARN] delete previous cover of %s: %v", course.CourseSlug, err)
		}
	}
	return helper.JsonUpdated(c, "cover uploaded", service.BuildCourseView(ctl.Now(), *course))
}
