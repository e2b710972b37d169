package dto

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/abassolaiya/phibitechbackend/internals/features/finance/payments/model"
)

type PaymentEventResponse struct {
	ID                uuid.UUID      `json:"id"`
	RegistrationID    *uuid.UUID     `json:"registration_id,omitempty"`
	Provider          string         `json:"provider"`
	OrderID           string         `json:"order_id"`
	TransactionID     *string        `json:"transaction_id,omitempty"`
	TransactionStatus string         `json:"transaction_status"`
	Status            string         `json:"status"`
	Error             *string        `json:"error,omitempty"`
	Payload           datatypes.JSON `json:"payload,omitempty"`
	ProcessedAt       *time.Time     `json:"processed_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

func FromPaymentEvent(m *model.PaymentEventModel) PaymentEventResponse {
	return PaymentEventResponse{
		ID:                m.PaymentEventID,
		RegistrationID:    m.PaymentEventRegistrationID,
		Provider:          m.PaymentEventProvider,
		OrderID:           m.PaymentEventOrderID,
		TransactionID:     m.PaymentEventTransactionID,
		TransactionStatus: m.PaymentEventTransactionStatus,
		Status:            m.PaymentEventStatus,
		Error:             m.PaymentEventError,
		Payload:           m.PaymentEventPayload,
		ProcessedAt:       m.PaymentEventProcessedAt,
		CreatedAt:         m.PaymentEventCreatedAt,
	}
}
