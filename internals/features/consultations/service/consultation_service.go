package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abassolaiya/phibitechbackend/internals/features/consultations/model"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
	"github.com/abassolaiya/phibitechbackend/internals/helpers/mailer"
)

var ErrConsultationNotFound = fiber.NewError(fiber.StatusNotFound, "consultation not found")

type ListFilter struct {
	Status string
	Query  string
}

func Submit(ctx context.Context, db *gorm.DB, m model.ConsultationModel) (*model.ConsultationModel, error) {
	m.ConsultationStatus = model.StatusNew
	if err := db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ListConsultations returns newest first.
func ListConsultations(ctx context.Context, db *gorm.DB, f ListFilter, p helper.Paging) ([]model.ConsultationModel, int64, error) {
	q := db.WithContext(ctx).Model(&model.ConsultationModel{})
	if s := strings.ToLower(strings.TrimSpace(f.Status)); s != "" {
		q = q.Where("consultation_status = ?", s)
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(consultation_name) LIKE ? OR LOWER(consultation_email) LIKE ? OR LOWER(consultation_company) LIKE ?",
			like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.ConsultationModel
	if err := q.Order("consultation_created_at DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func GetConsultation(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.ConsultationModel, error) {
	var m model.ConsultationModel
	err := db.WithContext(ctx).First(&m, "consultation_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConsultationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateStatus moves freely between new, contacted and closed.
func UpdateStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, status string) (*model.ConsultationModel, error) {
	m, err := GetConsultation(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if m.ConsultationStatus == status {
		return m, nil
	}
	if err := db.WithContext(ctx).Model(m).Update("consultation_status", status).Error; err != nil {
		return nil, err
	}
	m.ConsultationStatus = status
	return m, nil
}

func DeleteConsultation(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	res := db.WithContext(ctx).Delete(&model.ConsultationModel{}, "consultation_id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConsultationNotFound
	}
	return nil
}

// AdminNotice builds the mail sent to the admin inbox; ok is false when no inbox is configured.
func AdminNotice(inbox string, m model.ConsultationModel) (mailer.Message, bool) {
	inbox = strings.TrimSpace(inbox)
	if inbox == "" {
		return mailer.Message{}, false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "New consultation request\r\n\r\n")
	fmt.Fprintf(&b, "Name: %s\r\nEmail: %s\r\n", m.ConsultationName, m.ConsultationEmail)
	if m.ConsultationPhone != "" {
		fmt.Fprintf(&b, "Phone: %s\r\n", m.ConsultationPhone)
	}
	if m.ConsultationCompany != "" {
		fmt.Fprintf(&b, "Company: %s\r\n", m.ConsultationCompany)
	}
	if m.ConsultationService != "" {
		fmt.Fprintf(&b, "Service: %s\r\n", m.ConsultationService)
	}
	if m.ConsultationPreferredDate != nil {
		fmt.Fprintf(&b, "Preferred date: %s\r\n", m.ConsultationPreferredDate.Format("2006-01-02 15:04 MST"))
	}
	fmt.Fprintf(&b, "\r\n%s\r\n\r\nReference: %s\r\n", m.ConsultationMessage, m.ConsultationID)

	subject := "Consultation request from " + m.ConsultationName
	if m.ConsultationService != "" {
		subject += " (" + m.ConsultationService + ")"
	}
	return mailer.Message{
		To:       []string{inbox},
		Subject:  subject,
		TextBody: b.String(),
	}, true
}
