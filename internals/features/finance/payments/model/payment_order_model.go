package model

import (
	"time"

	"github.com/google/uuid"
)

// PaymentOrderModel keeps every order id issued at checkout, so a late notification
// for an older order still finds its registration.
type PaymentOrderModel struct {
	PaymentOrderID             string    `gorm:"column:payment_order_id;size:64;primaryKey" json:"payment_order_id"`
	PaymentOrderRegistrationID uuid.UUID `gorm:"column:payment_order_registration_id;type:uuid;not null;index" json:"payment_order_registration_id"`
	PaymentOrderProvider       string    `gorm:"column:payment_order_provider;size:20;not null" json:"payment_order_provider"`
	PaymentOrderAmount         int64     `gorm:"column:payment_order_amount;not null" json:"payment_order_amount"`

	PaymentOrderCreatedAt time.Time `gorm:"column:payment_order_created_at;autoCreateTime" json:"payment_order_created_at"`
}

func (PaymentOrderModel) TableName() string { return "payment_orders" }
