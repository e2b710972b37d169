package controller

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abassolaiya/phibitechbackend/internals/features/consultations/dto"
	"github.com/abassolaiya/phibitechbackend/internals/features/consultations/service"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
	"github.com/abassolaiya/phibitechbackend/internals/helpers/mailer"
)

var validateConsultation = validator.New()

type ConsultationController struct {
	DB         *gorm.DB
	Mailer     mailer.Mailer
	AdminInbox string
}

func NewConsultationController(db *gorm.DB, m mailer.Mailer, adminInbox string) *ConsultationController {
	return &ConsultationController{DB: db, Mailer: m, AdminInbox: adminInbox}
}

func consultationID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid consultation id")
	}
	return id, nil
}

// POST /api/consultations (public)
func (ctl *ConsultationController) Submit(c *fiber.Ctx) error {
	var req dto.CreateConsultationRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Normalize()
	if err := validateConsultation.Struct(&req); err != nil {
		return helper.FromFiberError(c, err)
	}

	m, err := service.Submit(c.UserContext(), ctl.DB, req.ToModel())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if msg, ok := service.AdminNotice(ctl.AdminInbox, *m); ok {
		mailer.SendAsync(ctl.Mailer, msg, "consultation notice")
	} else {
		log.Printf("[WARN] consultation %s stored, no admin inbox configured", m.ConsultationID)
	}
	return helper.JsonCreated(c, "consultation request sent", fiber.Map{
		"id":     m.ConsultationID,
		"status": m.ConsultationStatus,
	})
}

// GET /api/consultations?status=&q=
func (ctl *ConsultationController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 100)
	f := service.ListFilter{Status: c.Query("status"), Query: c.Query("q")}
	rows, total, err := service.ListConsultations(c.UserContext(), ctl.DB, f, p)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "consultations fetched", rows,
		helper.BuildPaginationFromPage(total, p.Page, p.PerPage, len(rows)))
}

// GET /api/consultations/:id
func (ctl *ConsultationController) Get(c *fiber.Ctx) error {
	id, err := consultationID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	m, err := service.GetConsultation(c.UserContext(), ctl.DB, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "consultation fetched", m)
}

// PUT /api/consultations/:id/status
func (ctl *ConsultationController) UpdateStatus(c *fiber.Ctx) error {
	id, err := consultationID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validateConsultation.Struct(&req); err != nil {
		return helper.FromFiberError(c, err)
	}
	m, err := service.UpdateStatus(c.UserContext(), ctl.DB, id, req.Status)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "consultation status updated", m)
}

// DELETE /api/consultations/:id
func (ctl *ConsultationController) Delete(c *fiber.Ctx) error {
	id, err := consultationID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := service.DeleteConsultation(c.UserContext(), ctl.DB, id); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "consultation deleted", fiber.Map{"id": id})
}
