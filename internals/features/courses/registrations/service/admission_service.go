package service

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	courseModel "github.com/abassolaiya/phibitechbackend/internals/features/courses/courses/model"
	courseService "github.com/abassolaiya/phibitechbackend/internals/features/courses/courses/service"
	"github.com/abassolaiya/phibitechbackend/internals/features/courses/registrations/model"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
)

var (
	ErrCourseNotFound       = courseService.ErrCourseNotFound
	ErrRegistrationNotFound = fiber.NewError(fiber.StatusNotFound, "registration not found")
	ErrRegistrationClosed   = helper.NewCodedError(fiber.StatusBadRequest, "REGISTRATION_CLOSED", "registration for this course is closed")
	ErrSeatsUnavailable     = helper.NewCodedError(fiber.StatusBadRequest, "SEATS_UNAVAILABLE", "no seats available for this course")
)

// Registrant is the applicant's contact data. AuthorID is set when the caller is signed in.
type Registrant struct {
	Name       string
	Email      string
	Phone      string
	Motivation string
	AuthorID   *uuid.UUID
}

// EvaluateRegistration admits registrant to the course at now, or returns why not.
//
// The course row is locked for the whole decision and the seat counter only moves
// through acquireSeat, so concurrent callers can never push a course past its seats.
func EvaluateRegistration(ctx context.Context, db *gorm.DB, courseID uuid.UUID, r Registrant, now time.Time) (*model.RegistrationModel, error) {
	var out model.RegistrationModel

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		course, err := lockCourse(tx, courseID)
		if err != nil {
			return err
		}

		if !courseService.IsRegistrationOpen(now, *course) {
			return ErrRegistrationClosed
		}

		held, err := countSeatHolders(tx, course.CourseID)
		if err != nil {
			return err
		}
		if held >= int64(course.CourseSeats) {
			return ErrSeatsUnavailable
		}

		if err := acquireSeat(tx, course.CourseID); err != nil {
			return err
		}

		out = model.RegistrationModel{
			RegistrationCourseID:      course.CourseID,
			RegistrationAuthorID:      r.AuthorID,
			RegistrationName:          r.Name,
			RegistrationEmail:         r.Email,
			RegistrationPhone:         r.Phone,
			RegistrationMotivation:    r.Motivation,
			RegistrationStatus:        model.StatusPending,
			RegistrationPaymentStatus: model.PaymentUnpaid,
			RegistrationPaymentAmount: courseService.ChargedPrice(now, *course),
		}
		if err := tx.Create(&out).Error; err != nil {
			return err
		}
		out.Course = course
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// lockCourse reads the course with SELECT ... FOR UPDATE (no-op on SQLite, where
// the write transaction already serialises).
func lockCourse(tx *gorm.DB, courseID uuid.UUID) (*courseModel.CourseModel, error) {
	var c courseModel.CourseModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("course_id = ?", courseID).
		First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return &c, nil
}

func countSeatHolders(tx *gorm.DB, courseID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&model.RegistrationModel{}).
		Where("course_id = ? AND registration_status IN ?", courseID,
			[]string{model.StatusPending, model.StatusApproved}).
		Count(&n).Error
	return n, err
}

// acquireSeat is the compare-and-swap on the counter: it only succeeds while seats remain.
func acquireSeat(tx *gorm.DB, courseID uuid.UUID) error {
	res := tx.Model(&courseModel.CourseModel{}).
		Where("course_id = ? AND course_seats_taken < course_seats", courseID).
		UpdateColumn("course_seats_taken", gorm.Expr("course_seats_taken + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSeatsUnavailable
	}
	return nil
}

func releaseSeat(tx *gorm.DB, courseID uuid.UUID) error {
	return tx.Model(&courseModel.CourseModel{}).
		Where("course_id = ? AND course_seats_taken > 0", courseID).
		UpdateColumn("course_seats_taken", gorm.Expr("course_seats_taken - 1")).Error
}
