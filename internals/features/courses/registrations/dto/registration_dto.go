package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	courseDTO "github.com/abassolaiya/phibitechbackend/internals/features/courses/courses/dto"
	"github.com/abassolaiya/phibitechbackend/internals/features/courses/registrations/model"
)

type CreateRegistrationRequest struct {
	Name       string `json:"name" validate:"required,max=120"`
	Email      string `json:"email" validate:"required,email,max=255"`
	Phone      string `json:"phone" validate:"required,max=32"`
	Motivation string `json:"motivation" validate:"required,max=2000"`
}

func (r *CreateRegistrationRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Motivation = strings.TrimSpace(r.Motivation)
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

type UpdatePaymentRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=unpaid paid refunded"`
}

type RegistrationResponse struct {
	ID               uuid.UUID              `json:"id"`
	CourseID         uuid.UUID              `json:"course_id"`
	Course           *courseDTO.CourseBrief `json:"course,omitempty"`
	AuthorID         *uuid.UUID             `json:"author_id,omitempty"`
	Name             string                 `json:"name"`
	Email            string                 `json:"email"`
	Phone            string                 `json:"phone"`
	Motivation       string                 `json:"motivation"`
	Status           string                 `json:"status"`
	PaymentStatus    string                 `json:"payment_status"`
	PaymentAmount    int64                  `json:"payment_amount"`
	PaymentDate      *time.Time             `json:"payment_date,omitempty"`
	PaymentReference *string                `json:"payment_reference,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

func ToRegistrationResponse(m model.RegistrationModel) RegistrationResponse {
	out := RegistrationResponse{
		ID:               m.RegistrationID,
		CourseID:         m.RegistrationCourseID,
		AuthorID:         m.RegistrationAuthorID,
		Name:             m.RegistrationName,
		Email:            m.RegistrationEmail,
		Phone:            m.RegistrationPhone,
		Motivation:       m.RegistrationMotivation,
		Status:           m.RegistrationStatus,
		PaymentStatus:    m.RegistrationPaymentStatus,
		PaymentAmount:    m.RegistrationPaymentAmount,
		PaymentDate:      m.RegistrationPaymentDate,
		PaymentReference: m.RegistrationPaymentReference,
		CreatedAt:        m.RegistrationCreatedAt,
		UpdatedAt:        m.RegistrationUpdatedAt,
	}
	if m.Course != nil {
		brief := courseDTO.ToCourseBrief(*m.Course)
		out.Course = &brief
	}
	return out
}

func ToRegistrationResponses(list []model.RegistrationModel) []RegistrationResponse {
	out := make([]RegistrationResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToRegistrationResponse(m))
	}
	return out
}
