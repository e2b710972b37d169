package controller

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abassolaiya/phibitechbackend/internals/features/finance/payments/dto"
	"github.com/abassolaiya/phibitechbackend/internals/features/finance/payments/model"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
)

var errEventNotFound = fiber.NewError(fiber.StatusNotFound, "payment event not found")

// PaymentEventController exposes the notification log to admins.
type PaymentEventController struct {
	DB *gorm.DB
}

func NewPaymentEventController(db *gorm.DB) *PaymentEventController {
	return &PaymentEventController{DB: db}
}

/* =======================================================================
   List (filter + pagination)
   Query params:
     - status: received|processed|ignored|failed
     - registration_id: uuid
     - q: order id / transaction id (substring)
     - start, end: RFC3339 on created_at
     - page, per_page
======================================================================= */

func (h *PaymentEventController) ListEvents(c *fiber.Ctx) error {
	q := h.DB.WithContext(c.UserContext()).Model(&model.PaymentEventModel{})

	if s := strings.ToLower(strings.TrimSpace(c.Query("status"))); s != "" {
		q = q.Where("payment_event_status = ?", s)
	}
	if rid := strings.TrimSpace(c.Query("registration_id")); rid != "" {
		id, err := uuid.Parse(rid)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid registration_id")
		}
		q = q.Where("payment_event_registration_id = ?", id)
	}
	if s := strings.TrimSpace(c.Query("q")); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(payment_event_order_id) LIKE ? OR LOWER(COALESCE(payment_event_transaction_id,'')) LIKE ?", like, like)
	}
	if start := strings.TrimSpace(c.Query("start")); start != "" {
		t, err := time.Parse(time.RFC3339, start)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid start (use RFC3339)")
		}
		q = q.Where("payment_event_created_at >= ?", t.UTC())
	}
	if end := strings.TrimSpace(c.Query("end")); end != "" {
		t, err := time.Parse(time.RFC3339, end)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid end (use RFC3339)")
		}
		q = q.Where("payment_event_created_at < ?", t.UTC())
	}

	p := helper.ResolvePaging(c, 20, 200)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.FromFiberError(c, err)
	}

	var rows []model.PaymentEventModel
	if err := q.Order("payment_event_created_at DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return helper.FromFiberError(c, err)
	}

	out := make([]dto.PaymentEventResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.FromPaymentEvent(&rows[i]))
	}
	return helper.JsonList(c, "payment events", out,
		helper.BuildPaginationFromPage(total, p.Page, p.PerPage, len(out)))
}

func (h *PaymentEventController) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid id")
	}

	var m model.PaymentEventModel
	if err := h.DB.WithContext(c.UserContext()).
		First(&m, "payment_event_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.FromFiberError(c, errEventNotFound)
		}
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "payment event", dto.FromPaymentEvent(&m))
}
