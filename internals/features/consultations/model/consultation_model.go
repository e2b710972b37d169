package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusClosed    = "closed"
)

type ConsultationModel struct {
	ConsultationID            uuid.UUID  `gorm:"column:consultation_id;type:uuid;primaryKey" json:"consultation_id"`
	ConsultationName          string     `gorm:"column:consultation_name;size:120;not null" json:"consultation_name"`
	ConsultationEmail         string     `gorm:"column:consultation_email;size:255;not null;index" json:"consultation_email"`
	ConsultationPhone         string     `gorm:"column:consultation_phone;size:32" json:"consultation_phone"`
	ConsultationCompany       string     `gorm:"column:consultation_company;size:200" json:"consultation_company"`
	ConsultationService       string     `gorm:"column:consultation_service;size:120" json:"consultation_service"`
	ConsultationMessage       string     `gorm:"column:consultation_message;type:text;not null" json:"consultation_message"`
	ConsultationPreferredDate *time.Time `gorm:"column:consultation_preferred_date" json:"consultation_preferred_date,omitempty"`
	ConsultationStatus        string     `gorm:"column:consultation_status;size:20;not null;default:new;index" json:"consultation_status"`

	ConsultationCreatedAt time.Time `gorm:"column:consultation_created_at;autoCreateTime;index" json:"consultation_created_at"`
	ConsultationUpdatedAt time.Time `gorm:"column:consultation_updated_at;autoUpdateTime" json:"consultation_updated_at"`
}

func (ConsultationModel) TableName() string { return "consultations" }

func (m *ConsultationModel) BeforeCreate(tx *gorm.DB) error {
	if m.ConsultationID == uuid.Nil {
		m.ConsultationID = uuid.New()
	}
	if m.ConsultationStatus == "" {
		m.ConsultationStatus = StatusNew
	}
	return nil
}
