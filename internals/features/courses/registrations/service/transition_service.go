package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	courseModel "github.com/abassolaiya/phibitechbackend/internals/features/courses/courses/model"
	"github.com/abassolaiya/phibitechbackend/internals/features/courses/registrations/model"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
)

func GetRegistration(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.RegistrationModel, error) {
	var r model.RegistrationModel
	if err := db.WithContext(ctx).Preload("Course").
		Where("registration_id = ?", id).
		First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return &r, nil
}

// ListForCourse returns a course's registrations, newest first. status filters when non-empty.
func ListForCourse(ctx context.Context, db *gorm.DB, courseID uuid.UUID, status string, p helper.Paging) ([]model.RegistrationModel, int64, error) {
	var exists int64
	if err := db.WithContext(ctx).Model(&courseModel.CourseModel{}).
		Where("course_id = ?", courseID).Count(&exists).Error; err != nil {
		return nil, 0, err
	}
	if exists == 0 {
		return nil, 0, ErrCourseNotFound
	}

	q := db.WithContext(ctx).Model(&model.RegistrationModel{}).Where("course_id = ?", courseID)
	if status != "" {
		q = q.Where("registration_status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.RegistrationModel
	if err := q.Order("registration_created_at DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// UpdateStatus overwrites the status. Moving into rejected frees the seat; moving out of
// rejected takes one again and fails with ErrSeatsUnavailable on a full course.
// Setting the current status again changes nothing.
func UpdateStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, status string) (*model.RegistrationModel, error) {
	var out model.RegistrationModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reg, err := lockRegistration(tx, id)
		if err != nil {
			return err
		}
		if reg.RegistrationStatus == status {
			out = *reg
			return nil
		}

		was, will := model.HoldsSeat(reg.RegistrationStatus), model.HoldsSeat(status)
		switch {
		case was && !will:
			if err := releaseSeat(tx, reg.RegistrationCourseID); err != nil {
				return err
			}
		case !was && will:
			if err := acquireSeat(tx, reg.RegistrationCourseID); err != nil {
				return err
			}
		}

		if err := updateRegistration(tx, reg.RegistrationID, map[string]any{"registration_status": status}); err != nil {
			return err
		}
		reg.RegistrationStatus = status
		out = *reg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePayment overwrites the payment status. Every move into paid stamps the payment date;
// repeating paid leaves it alone.
func UpdatePayment(ctx context.Context, db *gorm.DB, id uuid.UUID, paymentStatus string, now time.Time) (*model.RegistrationModel, error) {
	var out model.RegistrationModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reg, err := lockRegistration(tx, id)
		if err != nil {
			return err
		}
		if err := applyPayment(tx, reg, paymentStatus, now); err != nil {
			return err
		}
		out = *reg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePaymentByReference is UpdatePayment keyed by the gateway order id.
func UpdatePaymentByReference(ctx context.Context, db *gorm.DB, reference, paymentStatus string, now time.Time) (*model.RegistrationModel, error) {
	var r model.RegistrationModel
	if err := db.WithContext(ctx).
		Where("registration_payment_reference = ?", reference).
		First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return UpdatePayment(ctx, db, r.RegistrationID, paymentStatus, now)
}

// SetPaymentReference records the order id of a new checkout.
func SetPaymentReference(ctx context.Context, db *gorm.DB, id uuid.UUID, reference string) error {
	res := db.WithContext(ctx).Model(&model.RegistrationModel{}).
		Where("registration_id = ?", id).
		Update("registration_payment_reference", reference)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}

// DeleteRegistration removes a registration on explicit admin request, freeing its seat.
func DeleteRegistration(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.RegistrationModel, error) {
	var out model.RegistrationModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reg, err := lockRegistration(tx, id)
		if err != nil {
			return err
		}
		if model.HoldsSeat(reg.RegistrationStatus) {
			if err := releaseSeat(tx, reg.RegistrationCourseID); err != nil {
				return err
			}
		}
		if err := tx.Delete(&model.RegistrationModel{}, "registration_id = ?", reg.RegistrationID).Error; err != nil {
			return err
		}
		out = *reg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func applyPayment(tx *gorm.DB, reg *model.RegistrationModel, paymentStatus string, now time.Time) error {
	updates := map[string]any{}
	if reg.RegistrationPaymentStatus != paymentStatus {
		updates["registration_payment_status"] = paymentStatus
	}
	if paymentStatus == model.PaymentPaid && reg.RegistrationPaymentStatus != model.PaymentPaid {
		paidAt := now
		updates["registration_payment_date"] = paidAt
		reg.RegistrationPaymentDate = &paidAt
	}
	if len(updates) == 0 {
		return nil
	}
	if err := updateRegistration(tx, reg.RegistrationID, updates); err != nil {
		return err
	}
	reg.RegistrationPaymentStatus = paymentStatus
	return nil
}

func updateRegistration(tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
	return tx.Model(&model.RegistrationModel{}).
		Where("registration_id = ?", id).
		Updates(updates).Error
}

// lockRegistration locks the owning course first, then the registration, matching the
// order used by admission.
func lockRegistration(tx *gorm.DB, id uuid.UUID) (*model.RegistrationModel, error) {
	var ref model.RegistrationModel
	if err := tx.Select("registration_id", "course_id").
		Where("registration_id = ?", id).
		First(&ref).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}

	course, err := lockCourse(tx, ref.RegistrationCourseID)
	if err != nil {
		return nil, err
	}

	var reg model.RegistrationModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("registration_id = ?", id).
		First(&reg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	reg.Course = course
	return &reg, nil
}
