package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/abassolaiya/phibitechbackend/internals/features/courses/courses/dto"
	"github.com/abassolaiya/phibitechbackend/internals/features/courses/courses/model"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
)

const (
	slugMaxLen = 120

	// registrations live in their own package; only their count matters here
	registrationsTable = "course_registrations"
)

var (
	ErrCourseNotFound         = fiber.NewError(fiber.StatusNotFound, "course not found")
	ErrCourseHasRegistrations = helper.NewCodedError(fiber.StatusConflict, "COURSE_HAS_REGISTRATIONS", "course still has registrations")
)

// ListFilter narrows the catalogue listing.
type ListFilter struct {
	Query    string
	OpenOnly bool
	Level    string
}

func ListCourses(ctx context.Context, db *gorm.DB, f ListFilter, p helper.Paging, now time.Time) ([]dto.CourseView, int64, error) {
	q := db.WithContext(ctx).Model(&model.CourseModel{})
	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(course_title) LIKE ? OR LOWER(course_description) LIKE ?", like, like)
	}
	if f.Level != "" {
		q = q.Where("course_level = ?", f.Level)
	}
	if f.OpenOnly {
		q = q.Where("course_registration_start <= ? AND course_registration_end >= ?", now.UTC(), now.UTC())
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.CourseModel
	if err := q.Order("course_start_date ASC, course_created_at DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return BuildCourseViews(now, rows), total, nil
}

func FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*model.CourseModel, error) {
	var c model.CourseModel
	err := db.WithContext(ctx).
		Where("course_slug = ?", strings.ToLower(strings.TrimSpace(slug))).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DescribeCourse resolves a course by slug and derives its pricing/seat fields at now.
func DescribeCourse(ctx context.Context, db *gorm.DB, slug string, now time.Time) (dto.CourseView, error) {
	c, err := FindBySlug(ctx, db, slug)
	if err != nil {
		return dto.CourseView{}, err
	}
	return BuildCourseView(now, *c), nil
}

// CreateCourse derives a unique slug from the title; the slug never changes afterwards.
func CreateCourse(ctx context.Context, db *gorm.DB, m model.CourseModel) (*model.CourseModel, error) {
	if err := checkCourseInvariants(m); err != nil {
		return nil, err
	}
	slug, err := helper.EnsureUniqueSlug(ctx, db, "courses", "course_slug",
		helper.Slugify(m.CourseTitle, slugMaxLen), nil, slugMaxLen)
	if err != nil {
		return nil, err
	}
	m.CourseSlug = slug
	m.CourseSeatsTaken = 0

	if err := db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateCourse applies a partial update under a row lock so the seat cap
// cannot drop below the seats already held.
func UpdateCourse(ctx context.Context, db *gorm.DB, slug string, req dto.UpdateCourseRequest) (*model.CourseModel, error) {
	var out model.CourseModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("course_slug = ?", strings.ToLower(strings.TrimSpace(slug))).
			First(&out).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseNotFound
			}
			return err
		}

		req.ApplyTo(&out)
		if err := checkCourseInvariants(out); err != nil {
			return err
		}
		if out.CourseSeats < out.CourseSeatsTaken {
			return helper.NewCodedError(fiber.StatusBadRequest, "SEATS_BELOW_TAKEN",
				"seats cannot be lower than seats already taken")
		}
		return tx.Save(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SetCoverImage stores a new cover URL and returns the previous one.
func SetCoverImage(ctx context.Context, db *gorm.DB, slug, url string) (*model.CourseModel, string, error) {
	c, err := FindBySlug(ctx, db, slug)
	if err != nil {
		return nil, "", err
	}
	old := c.CourseCoverImage
	if err := db.WithContext(ctx).Model(c).Update("course_cover_image", url).Error; err != nil {
		return nil, "", err
	}
	c.CourseCoverImage = url
	return c, old, nil
}

// DeleteCourse refuses while any registration (whatever its status) references the course.
func DeleteCourse(ctx context.Context, db *gorm.DB, slug string) (*model.CourseModel, error) {
	var out model.CourseModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("course_slug = ?", strings.ToLower(strings.TrimSpace(slug))).
			First(&out).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseNotFound
			}
			return err
		}

		var n int64
		if err := tx.Table(registrationsTable).Where("course_id = ?", out.CourseID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrCourseHasRegistrations
		}
		return tx.Delete(&model.CourseModel{}, "course_id = ?", out.CourseID).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func checkCourseInvariants(m model.CourseModel) error {
	switch {
	case strings.TrimSpace(m.CourseTitle) == "":
		return helper.NewCodedError(fiber.StatusBadRequest, "VALIDATION_ERROR", "title is required")
	case m.CoursePrice > m.CourseOriginalPrice:
		return helper.NewCodedError(fiber.StatusBadRequest, "VALIDATION_ERROR", "price must not exceed original price")
	case m.CourseRegistrationEnd.Before(m.CourseRegistrationStart):
		return helper.NewCodedError(fiber.StatusBadRequest, "VALIDATION_ERROR", "registration end must not precede registration start")
	case m.CourseSeats < 1:
		return helper.NewCodedError(fiber.StatusBadRequest, "VALIDATION_ERROR", "seats must be at least 1")
	}
	return nil
}
