package controller

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abassolaiya/phibitechbackend/internals/features/courses/registrations/dto"
	"github.com/abassolaiya/phibitechbackend/internals/features/courses/registrations/model"
	"github.com/abassolaiya/phibitechbackend/internals/features/courses/registrations/service"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
	"github.com/abassolaiya/phibitechbackend/internals/helpers/mailer"
)

var validateRegistration = validator.New()

type RegistrationController struct {
	DB     *gorm.DB
	Mailer mailer.Mailer
	Now    func() time.Time
}

func NewRegistrationController(db *gorm.DB, m mailer.Mailer) *RegistrationController {
	return &RegistrationController{DB: db, Mailer: m, Now: time.Now}
}

// POST /api/courses/:courseId/registrations
func (ctl *RegistrationController) Register(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("courseId"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid course id")
	}

	var req dto.CreateRegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Normalize()
	if err := validateRegistration.Struct(&req); err != nil {
		return helper.FromFiberError(c, err)
	}

	reg, err := service.EvaluateRegistration(c.UserContext(), ctl.DB, courseID, service.Registrant{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Motivation: req.Motivation,
		AuthorID:   helper.OptionalUserID(c),
	}, ctl.Now())
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	log.Printf("[INFO] registration %s admitted to course %s", reg.RegistrationID, reg.RegistrationCourseID)
	mailer.SendAsync(ctl.Mailer, confirmationMail(*reg), "registration confirmation")

	return helper.JsonCreated(c, "registration submitted", dto.ToRegistrationResponse(*reg))
}

// GET /api/courses/:courseId/registrations?status=&page=&per_page=
func (ctl *RegistrationController) ListForCourse(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("courseId"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid course id")
	}
	status := strings.ToLower(strings.TrimSpace(c.Query("status")))
	if status != "" && status != model.StatusPending && status != model.StatusApproved && status != model.StatusRejected {
		return helper.JsonError(c, fiber.StatusBadRequest, "status must be one of: pending approved rejected")
	}

	p := helper.ResolvePaging(c, 20, 200)
	rows, total, err := service.ListForCourse(c.UserContext(), ctl.DB, courseID, status, p)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "registrations fetched", dto.ToRegistrationResponses(rows),
		helper.BuildPaginationFromPage(total, p.Page, p.PerPage, len(rows)))
}

// GET /api/registrations/:id
func (ctl *RegistrationController) GetRegistration(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid registration id")
	}
	reg, err := service.GetRegistration(c.UserContext(), ctl.DB, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "registration fetched", dto.ToRegistrationResponse(*reg))
}

// PUT /api/registrations/:id/status
func (ctl *RegistrationController) UpdateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid registration id")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if err := validateRegistration.Struct(&req); err != nil {
		return helper.FromFiberError(c, err)
	}

	reg, err := service.UpdateStatus(c.UserContext(), ctl.DB, id, req.Status)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "registration status updated", dto.ToRegistrationResponse(*reg))
}

// PUT /api/registrations/:id/payment
func (ctl *RegistrationController) UpdatePayment(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid registration id")
	}
	var req dto.UpdatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.PaymentStatus = strings.ToLower(strings.TrimSpace(req.PaymentStatus))
	if err := validateRegistration.Struct(&req); err != nil {
		return helper.FromFiberError(c, err)
	}

	reg, err := service.UpdatePayment(c.UserContext(), ctl.DB, id, req.PaymentStatus, ctl.Now())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "payment status updated", dto.ToRegistrationResponse(*reg))
}

// DELETE /api/registrations/:id
func (ctl *RegistrationController) DeleteRegistration(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid registration id")
	}
	reg, err := service.DeleteRegistration(c.UserContext(), ctl.DB, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	log.Printf("[INFO] registration %s deleted (status was %s)", reg.RegistrationID, reg.RegistrationStatus)
	return helper.JsonDeleted(c, "registration deleted", fiber.Map{"id": reg.RegistrationID})
}

func confirmationMail(reg model.RegistrationModel) mailer.Message {
	title := "the course"
	if reg.Course != nil {
		title = reg.Course.CourseTitle
	}
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nWe received your registration for %s.\r\n"+
			"Status: %s\r\nAmount due: %d\r\nReference: %s\r\n\r\n"+
			"We will contact you once it has been reviewed.\r\n",
		reg.RegistrationName, title, reg.RegistrationStatus,
		reg.RegistrationPaymentAmount, reg.RegistrationID,
	)
	return mailer.Message{
		To:       []string{reg.RegistrationEmail},
		Subject:  "Registration received: " + title,
		TextBody: body,
	}
}
