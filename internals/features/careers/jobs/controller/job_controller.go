package controller

import (
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abassolaiya/phibitechbackend/internals/features/careers/jobs/dto"
	"github.com/abassolaiya/phibitechbackend/internals/features/careers/jobs/service"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
	authMiddleware "github.com/abassolaiya/phibitechbackend/internals/middlewares/auth"
)

var validateJob = validator.New()

type JobController struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewJobController(db *gorm.DB) *JobController {
	return &JobController{DB: db, Now: time.Now}
}

func jobID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid job id")
	}
	return id, nil
}

// GET /api/jobs?q=&type=&location=&include_closed=true
func (ctl *JobController) ListJobs(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 100)
	f := service.ListFilter{
		Query:          c.Query("q"),
		EmploymentType: c.Query("type"),
		Location:       c.Query("location"),
		IncludeClosed:  c.QueryBool("include_closed", false),
	}
	now := ctl.Now()
	jobs, total, err := service.ListJobs(c.UserContext(), ctl.DB, f, p, now, authMiddleware.IsAdmin(c))
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "jobs fetched", jobs,
		helper.BuildPaginationFromPage(total, p.Page, p.PerPage, len(jobs)))
}

// GET /api/jobs/:slug (slug or id)
func (ctl *JobController) GetJob(c *fiber.Ctx) error {
	now := ctl.Now()
	j, err := service.GetJob(c.UserContext(), ctl.DB, c.Params("slug"), now, authMiddleware.IsAdmin(c))
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "job fetched", dto.ToJobView(now, *j))
}

// POST /api/jobs
func (ctl *JobController) CreateJob(c *fiber.Ctx) error {
	var req dto.CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Normalize()
	if err := validateJob.Struct(&req); err != nil {
		return helper.FromFiberError(c, err)
	}

	j, err := service.CreateJob(c.UserContext(), ctl.DB, req.ToModel())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	log.Printf("[INFO] job created: %s", j.JobSlug)
	return helper.JsonCreated(c, "job created", dto.ToJobView(ctl.Now(), *j))
}

// PUT /api/jobs/:id
func (ctl *JobController) UpdateJob(c *fiber.Ctx) error {
	id, err := jobID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validateJob.Struct(&req); err != nil {
		return helper.FromFiberError(c, err)
	}

	j, err := service.UpdateJob(c.UserContext(), ctl.DB, id, req)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "job updated", dto.ToJobView(ctl.Now(), *j))
}

// DELETE /api/jobs/:id
func (ctl *JobController) DeleteJob(c *fiber.Ctx) error {
	id, err := jobID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	j, err := service.DeleteJob(c.UserContext(), ctl.DB, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "job deleted", fiber.Map{"id": j.JobID, "slug": j.JobSlug})
}
