package dto

import (
	"strings"
	"time"

	"github.com/abassolaiya/phibitechbackend/internals/features/consultations/model"
)

type CreateConsultationRequest struct {
	Name          string     `json:"name" validate:"required,max=120"`
	Email         string     `json:"email" validate:"required,email,max=255"`
	Phone         string     `json:"phone" validate:"max=32"`
	Company       string     `json:"company" validate:"max=200"`
	Service       string     `json:"service" validate:"max=120"`
	Message       string     `json:"message" validate:"required,max=5000"`
	PreferredDate *time.Time `json:"preferred_date"`
}

func (r *CreateConsultationRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Company = strings.TrimSpace(r.Company)
	r.Service = strings.TrimSpace(r.Service)
	r.Message = strings.TrimSpace(r.Message)
}

func (r CreateConsultationRequest) ToModel() model.ConsultationModel {
	m := model.ConsultationModel{
		ConsultationName:    r.Name,
		ConsultationEmail:   r.Email,
		ConsultationPhone:   r.Phone,
		ConsultationCompany: r.Company,
		ConsultationService: r.Service,
		ConsultationMessage: r.Message,
		ConsultationStatus:  model.StatusNew,
	}
	if r.PreferredDate != nil {
		d := r.PreferredDate.UTC()
		m.ConsultationPreferredDate = &d
	}
	return m
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new contacted closed"`
}
