package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/abassolaiya/phibitechbackend/internals/features/careers/jobs/dto"
	"github.com/abassolaiya/phibitechbackend/internals/features/careers/jobs/model"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
)

const slugMaxLen = 150

var (
	ErrJobNotFound   = fiber.NewError(fiber.StatusNotFound, "job not found")
	ErrNoApplyMethod = helper.NewCodedError(fiber.StatusBadRequest, "VALIDATION_ERROR", "apply_url or apply_email is required")
)

type ListFilter struct {
	Query          string
	EmploymentType string
	Location       string
	// only honoured for admins; everyone else sees open jobs only
	IncludeClosed bool
}

func openScope(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("job_is_active = ? AND (job_deadline IS NULL OR job_deadline >= ?)", true, now.UTC())
	}
}

func ListJobs(ctx context.Context, db *gorm.DB, f ListFilter, p helper.Paging, now time.Time, admin bool) ([]dto.JobView, int64, error) {
	q := db.WithContext(ctx).Model(&model.JobModel{})
	if !admin || !f.IncludeClosed {
		q = q.Scopes(openScope(now))
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(job_title) LIKE ? OR LOWER(job_company) LIKE ? OR LOWER(job_description) LIKE ?", like, like, like)
	}
	if t := strings.ToLower(strings.TrimSpace(f.EmploymentType)); t != "" {
		q = q.Where("job_employment_type = ?", t)
	}
	if l := strings.TrimSpace(f.Location); l != "" {
		q = q.Where("LOWER(job_location) LIKE ?", "%"+strings.ToLower(l)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.JobModel
	if err := q.Order("job_created_at DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return dto.ToJobViews(now, rows), total, nil
}

// GetJob resolves by slug or id. Closed jobs are hidden from non-admins.
func GetJob(ctx context.Context, db *gorm.DB, key string, now time.Time, admin bool) (*model.JobModel, error) {
	key = strings.TrimSpace(key)
	q := db.WithContext(ctx)
	if !admin {
		q = q.Scopes(openScope(now))
	}
	if id, err := uuid.Parse(key); err == nil {
		q = q.Where("job_id = ?", id)
	} else {
		q = q.Where("job_slug = ?", strings.ToLower(key))
	}

	var j model.JobModel
	err := q.First(&j).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func CreateJob(ctx context.Context, db *gorm.DB, m model.JobModel) (*model.JobModel, error) {
	if m.JobApplyURL == "" && m.JobApplyEmail == "" {
		return nil, ErrNoApplyMethod
	}
	slug, err := helper.EnsureUniqueSlug(ctx, db, "jobs", "job_slug",
		helper.Slugify(m.JobTitle+" "+m.JobCompany, slugMaxLen), nil, slugMaxLen)
	if err != nil {
		return nil, err
	}
	m.JobSlug = slug

	// default:true would swallow an explicit false on insert
	active := m.JobIsActive
	if err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		if !active {
			m.JobIsActive = false
			return tx.Model(&m).Update("job_is_active", false).Error
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &m, nil
}

func UpdateJob(ctx context.Context, db *gorm.DB, id uuid.UUID, req dto.UpdateJobRequest) (*model.JobModel, error) {
	var out model.JobModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&out, "job_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrJobNotFound
			}
			return err
		}
		req.ApplyTo(&out)
		if out.JobApplyURL == "" && out.JobApplyEmail == "" {
			return ErrNoApplyMethod
		}
		return tx.Save(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func DeleteJob(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.JobModel, error) {
	var j model.JobModel
	if err := db.WithContext(ctx).First(&j, "job_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	if err := db.WithContext(ctx).Delete(&model.JobModel{}, "job_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &j, nil
}
