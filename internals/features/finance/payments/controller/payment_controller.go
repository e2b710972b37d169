package controller

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	regModel "github.com/abassolaiya/phibitechbackend/internals/features/courses/registrations/model"
	regService "github.com/abassolaiya/phibitechbackend/internals/features/courses/registrations/service"
	"github.com/abassolaiya/phibitechbackend/internals/features/finance/payments/dto"
	"github.com/abassolaiya/phibitechbackend/internals/features/finance/payments/model"
	"github.com/abassolaiya/phibitechbackend/internals/features/finance/payments/service"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
	authMiddleware "github.com/abassolaiya/phibitechbackend/internals/middlewares/auth"
)

var (
	errAlreadyPaid  = helper.NewCodedError(fiber.StatusConflict, "ALREADY_PAID", "registration is already paid")
	errNothingToPay = helper.NewCodedError(fiber.StatusBadRequest, "NOTHING_TO_PAY", "registration has no amount due")
	errRejected     = helper.NewCodedError(fiber.StatusBadRequest, "REGISTRATION_REJECTED", "registration was rejected")
)

type PaymentController struct {
	DB      *gorm.DB
	Gateway service.Gateway
	Now     func() time.Time
}

func NewPaymentController(db *gorm.DB, gw service.Gateway) *PaymentController {
	return &PaymentController{DB: db, Gateway: gw, Now: time.Now}
}

/* =======================================================================
   Checkout
   POST /api/registrations/:id/checkout
======================================================================= */

func (h *PaymentController) Checkout(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid registration id")
	}

	reg, err := regService.GetRegistration(c.UserContext(), h.DB, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	// a registration bound to an account may only be paid by that account (or an admin)
	if reg.RegistrationAuthorID != nil {
		if helper.OptionalUserID(c) == nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "sign in to pay for this registration")
		}
		if !authMiddleware.CanManage(c, reg.RegistrationAuthorID.String()) {
			return helper.JsonError(c, fiber.StatusForbidden, "this registration belongs to another account")
		}
	}

	switch {
	case reg.RegistrationStatus == regModel.StatusRejected:
		return helper.FromFiberError(c, errRejected)
	case reg.RegistrationPaymentStatus == regModel.PaymentPaid:
		return helper.FromFiberError(c, errAlreadyPaid)
	case reg.RegistrationPaymentAmount <= 0:
		return helper.FromFiberError(c, errNothingToPay)
	}

	in := service.CheckoutInput{
		OrderID: service.NewOrderID(reg.RegistrationID.String(), h.Now()),
		Amount:  reg.RegistrationPaymentAmount,
		ItemID:  reg.RegistrationCourseID.String(),
		Customer: service.CustomerInput{
			FullName: reg.RegistrationName,
			Email:    reg.RegistrationEmail,
			Phone:    reg.RegistrationPhone,
		},
	}
	if reg.Course != nil {
		in.ItemName = reg.Course.CourseTitle
	}

	res, err := h.Gateway.CreateCheckout(c.UserContext(), in)
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return helper.FromFiberError(c, fe)
		}
		log.Printf("[ERROR] checkout %s: %v", reg.RegistrationID, err)
		return helper.JsonError(c, fiber.StatusBadGateway, "payment gateway unavailable")
	}

	if err := h.recordOrder(c, reg.RegistrationID, res.OrderID, in.Amount); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "checkout created", res)
}

/* =======================================================================
   Webhook Midtrans
   POST /api/payments/notification
======================================================================= */

func (h *PaymentController) MidtransWebhook(c *fiber.Ctx) error {
	var notif dto.MidtransNotification
	if err := c.BodyParser(&notif); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if !h.Gateway.VerifySignature(notif.OrderID, notif.StatusCode, notif.GrossAmount, notif.SignatureKey) {
		return helper.JsonError(c, fiber.StatusUnauthorized, "invalid signature")
	}

	ctx := c.UserContext()
	ev := h.logEvent(c, notif)

	result := dto.WebhookResult{
		TransactionStatus: notif.TransactionStatus,
		FraudStatus:       notif.FraudStatus,
		TransactionID:     strPtr(notif.TransactionID),
	}

	newStatus, ok := service.MapTransactionStatus(notif.TransactionStatus, notif.FraudStatus)
	if !ok {
		h.finishEvent(ev, nil, model.EventIgnored, "")
		result.Status, result.Reason = "ignored", "status does not change payment"
		return helper.JsonOK(c, "notification ignored", result)
	}

	reg, err := h.applyNotification(ctx, notif.OrderID, newStatus)
	if err != nil {
		if errors.Is(err, regService.ErrRegistrationNotFound) {
			// 200 so the gateway stops retrying an order we never issued
			h.finishEvent(ev, nil, model.EventIgnored, "registration not found")
			result.Status, result.Reason = "ignored", "registration not found"
			return helper.JsonOK(c, "notification ignored", result)
		}
		h.finishEvent(ev, nil, model.EventFailed, err.Error())
		return helper.FromFiberError(c, err)
	}

	h.finishEvent(ev, &reg.RegistrationID, model.EventProcessed, "")
	log.Printf("[INFO] payment %s -> %s (order %s)", reg.RegistrationID, reg.RegistrationPaymentStatus, notif.OrderID)

	result.Status = "ok"
	result.RegistrationID = reg.RegistrationID.String()
	result.PaymentStatus = reg.RegistrationPaymentStatus
	return helper.JsonOK(c, "notification processed", result)
}

/* =======================================================================
   Helpers: orders
======================================================================= */

// recordOrder keeps the issued order id and makes it the registration's current reference.
func (h *PaymentController) recordOrder(c *fiber.Ctx, registrationID uuid.UUID, orderID string, amount int64) error {
	return h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model.PaymentOrderModel{
			PaymentOrderID:             orderID,
			PaymentOrderRegistrationID: registrationID,
			PaymentOrderProvider:       model.ProviderMidtrans,
			PaymentOrderAmount:         amount,
		}).Error; err != nil {
			return err
		}
		return regService.SetPaymentReference(c.UserContext(), tx, registrationID, orderID)
	})
}

// applyNotification resolves the order through every id ever issued, then falls back
// to the registration's current reference.
func (h *PaymentController) applyNotification(ctx context.Context, orderID, paymentStatus string) (*regModel.RegistrationModel, error) {
	var order model.PaymentOrderModel
	err := h.DB.WithContext(ctx).Where("payment_order_id = ?", orderID).First(&order).Error
	switch {
	case err == nil:
		return regService.UpdatePayment(ctx, h.DB, order.PaymentOrderRegistrationID, paymentStatus, h.Now())
	case errors.Is(err, gorm.ErrRecordNotFound):
		return regService.UpdatePaymentByReference(ctx, h.DB, orderID, paymentStatus, h.Now())
	default:
		return nil, err
	}
}

/* =======================================================================
   Helpers: webhook
======================================================================= */

func (h *PaymentController) logEvent(c *fiber.Ctx, notif dto.MidtransNotification) *model.PaymentEventModel {
	payload, _ := json.Marshal(notif)
	ev := &model.PaymentEventModel{
		PaymentEventProvider:          model.ProviderMidtrans,
		PaymentEventOrderID:           notif.OrderID,
		PaymentEventTransactionID:     strPtr(notif.TransactionID),
		PaymentEventTransactionStatus: notif.TransactionStatus,
		PaymentEventPayload:           datatypes.JSON(payload),
		PaymentEventStatus:            model.EventReceived,
	}
	if err := h.DB.WithContext(c.UserContext()).Create(ev).Error; err != nil {
		log.Printf("[WARN] log payment event %s: %v", notif.OrderID, err)
		return nil
	}
	return ev
}

func (h *PaymentController) finishEvent(ev *model.PaymentEventModel, registrationID *uuid.UUID, status, errMsg string) {
	if ev == nil {
		return
	}
	now := h.Now()
	updates := map[string]any{
		"payment_event_status":       status,
		"payment_event_processed_at": now,
		"payment_event_error":        strPtr(errMsg),
	}
	if registrationID != nil {
		updates["payment_event_registration_id"] = *registrationID
	}
	if err := h.DB.Model(&model.PaymentEventModel{}).
		Where("payment_event_id = ?", ev.PaymentEventID).
		Updates(updates).Error; err != nil {
		log.Printf("[WARN] update payment event %s: %v", ev.PaymentEventID, err)
	}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
