package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	courseModel "github.com/abassolaiya/phibitechbackend/internals/features/courses/courses/model"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"

	PaymentUnpaid   = "unpaid"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// HoldsSeat reports whether a registration in status counts against the course's seats.
func HoldsSeat(status string) bool {
	return status == StatusPending || status == StatusApproved
}

// RegistrationModel is a person's application to a course. Rows are never removed implicitly.
type RegistrationModel struct {
	RegistrationID       uuid.UUID  `gorm:"column:registration_id;type:uuid;primaryKey"`
	RegistrationCourseID uuid.UUID  `gorm:"column:course_id;type:uuid;not null;index:idx_registrations_course_status,priority:1"`
	RegistrationAuthorID *uuid.UUID `gorm:"column:author_id;type:uuid;index"`

	RegistrationName       string `gorm:"column:registration_name;size:120;not null"`
	RegistrationEmail      string `gorm:"column:registration_email;size:255;not null;index"`
	RegistrationPhone      string `gorm:"column:registration_phone;size:32;not null"`
	RegistrationMotivation string `gorm:"column:registration_motivation;type:text;not null"`

	RegistrationStatus        string     `gorm:"column:registration_status;size:20;not null;default:pending;index:idx_registrations_course_status,priority:2"`
	RegistrationPaymentStatus string     `gorm:"column:registration_payment_status;size:20;not null;default:unpaid"`
	RegistrationPaymentAmount int64      `gorm:"column:registration_payment_amount;not null"`
	RegistrationPaymentDate   *time.Time `gorm:"column:registration_payment_date"`
	// gateway order id of the latest checkout
	RegistrationPaymentReference *string `gorm:"column:registration_payment_reference;size:64;uniqueIndex:uq_registrations_payment_ref"`

	RegistrationCreatedAt time.Time `gorm:"column:registration_created_at;autoCreateTime"`
	RegistrationUpdatedAt time.Time `gorm:"column:registration_updated_at;autoUpdateTime"`

	Course *courseModel.CourseModel `gorm:"foreignKey:RegistrationCourseID;references:CourseID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (RegistrationModel) TableName() string { return "course_registrations" }

func (r *RegistrationModel) BeforeCreate(tx *gorm.DB) error {
	if r.RegistrationID == uuid.Nil {
		r.RegistrationID = uuid.New()
	}
	if r.RegistrationStatus == "" {
		r.RegistrationStatus = StatusPending
	}
	if r.RegistrationPaymentStatus == "" {
		r.RegistrationPaymentStatus = PaymentUnpaid
	}
	return nil
}
