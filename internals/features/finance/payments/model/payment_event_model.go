package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ProviderMidtrans = "midtrans"

	EventReceived  = "received"
	EventProcessed = "processed"
	EventIgnored   = "ignored"
	EventFailed    = "failed"
)

// PaymentEventModel logs every gateway notification, including ones that match nothing.
type PaymentEventModel struct {
	PaymentEventID             uuid.UUID  `gorm:"column:payment_event_id;type:uuid;primaryKey" json:"payment_event_id"`
	PaymentEventRegistrationID *uuid.UUID `gorm:"column:payment_event_registration_id;type:uuid;index" json:"payment_event_registration_id,omitempty"`

	PaymentEventProvider          string  `gorm:"column:payment_event_provider;size:20;not null" json:"payment_event_provider"`
	PaymentEventOrderID           string  `gorm:"column:payment_event_order_id;size:64;not null;index" json:"payment_event_order_id"`
	PaymentEventTransactionID     *string `gorm:"column:payment_event_transaction_id;size:64" json:"payment_event_transaction_id,omitempty"`
	PaymentEventTransactionStatus string  `gorm:"column:payment_event_transaction_status;size:30" json:"payment_event_transaction_status"`

	PaymentEventPayload datatypes.JSON `gorm:"column:payment_event_payload" json:"payment_event_payload"`

	PaymentEventStatus      string     `gorm:"column:payment_event_status;size:20;not null;default:received" json:"payment_event_status"`
	PaymentEventError       *string    `gorm:"column:payment_event_error;type:text" json:"payment_event_error,omitempty"`
	PaymentEventProcessedAt *time.Time `gorm:"column:payment_event_processed_at" json:"payment_event_processed_at,omitempty"`

	PaymentEventCreatedAt time.Time `gorm:"column:payment_event_created_at;autoCreateTime" json:"payment_event_created_at"`
}

func (PaymentEventModel) TableName() string { return "payment_events" }

func (e *PaymentEventModel) BeforeCreate(tx *gorm.DB) error {
	if e.PaymentEventID == uuid.Nil {
		e.PaymentEventID = uuid.New()
	}
	if e.PaymentEventStatus == "" {
		e.PaymentEventStatus = EventReceived
	}
	return nil
}
