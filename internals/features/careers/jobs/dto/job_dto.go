package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/abassolaiya/phibitechbackend/internals/features/careers/jobs/model"
)

type CreateJobRequest struct {
	Title          string     `json:"title" validate:"required,max=200"`
	Company        string     `json:"company" validate:"required,max=200"`
	Location       string     `json:"location" validate:"max=200"`
	EmploymentType string     `json:"employment_type" validate:"required,oneof=full-time part-time contract internship remote"`
	WorkMode       string     `json:"work_mode" validate:"omitempty,oneof=remote on-site hybrid"`
	Description    string     `json:"description" validate:"required"`
	Requirements   []string   `json:"requirements" validate:"max=50,dive,required,max=300"`
	SalaryRange    string     `json:"salary_range" validate:"max=100"`
	ApplyURL       string     `json:"apply_url" validate:"omitempty,url"`
	ApplyEmail     string     `json:"apply_email" validate:"omitempty,email"`
	Deadline       *time.Time `json:"deadline"`
	IsActive       *bool      `json:"is_active"`
}

func (r *CreateJobRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Company = strings.TrimSpace(r.Company)
	r.Location = strings.TrimSpace(r.Location)
	r.EmploymentType = strings.ToLower(strings.TrimSpace(r.EmploymentType))
	r.WorkMode = strings.ToLower(strings.TrimSpace(r.WorkMode))
	r.ApplyURL = strings.TrimSpace(r.ApplyURL)
	r.ApplyEmail = strings.ToLower(strings.TrimSpace(r.ApplyEmail))
	r.Requirements = trimAll(r.Requirements)
}

func (r CreateJobRequest) ToModel() model.JobModel {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	m := model.JobModel{
		JobTitle:          r.Title,
		JobCompany:        r.Company,
		JobLocation:       r.Location,
		JobEmploymentType: r.EmploymentType,
		JobWorkMode:       r.WorkMode,
		JobDescription:    r.Description,
		JobRequirements:   datatypes.JSONSlice[string](r.Requirements),
		JobSalaryRange:    r.SalaryRange,
		JobApplyURL:       r.ApplyURL,
		JobApplyEmail:     r.ApplyEmail,
		JobIsActive:       active,
	}
	if r.Deadline != nil {
		d := r.Deadline.UTC()
		m.JobDeadline = &d
	}
	return m
}

// UpdateJobRequest is partial. ClearDeadline removes the deadline entirely.
type UpdateJobRequest struct {
	Title          *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Company        *string    `json:"company" validate:"omitempty,min=1,max=200"`
	Location       *string    `json:"location" validate:"omitempty,max=200"`
	EmploymentType *string    `json:"employment_type" validate:"omitempty,oneof=full-time part-time contract internship remote"`
	WorkMode       *string    `json:"work_mode" validate:"omitempty,oneof=remote on-site hybrid"`
	Description    *string    `json:"description" validate:"omitempty,min=1"`
	Requirements   *[]string  `json:"requirements" validate:"omitempty,max=50,dive,required,max=300"`
	SalaryRange    *string    `json:"salary_range" validate:"omitempty,max=100"`
	ApplyURL       *string    `json:"apply_url" validate:"omitempty,url"`
	ApplyEmail     *string    `json:"apply_email" validate:"omitempty,email"`
	Deadline       *time.Time `json:"deadline"`
	ClearDeadline  bool       `json:"clear_deadline"`
	IsActive       *bool      `json:"is_active"`
}

func (r UpdateJobRequest) ApplyTo(m *model.JobModel) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&m.JobTitle, r.Title)
	set(&m.JobCompany, r.Company)
	set(&m.JobLocation, r.Location)
	set(&m.JobDescription, r.Description)
	set(&m.JobSalaryRange, r.SalaryRange)
	set(&m.JobApplyURL, r.ApplyURL)
	if r.EmploymentType != nil {
		m.JobEmploymentType = strings.ToLower(strings.TrimSpace(*r.EmploymentType))
	}
	if r.WorkMode != nil {
		m.JobWorkMode = strings.ToLower(strings.TrimSpace(*r.WorkMode))
	}
	if r.ApplyEmail != nil {
		m.JobApplyEmail = strings.ToLower(strings.TrimSpace(*r.ApplyEmail))
	}
	if r.Requirements != nil {
		m.JobRequirements = datatypes.JSONSlice[string](trimAll(*r.Requirements))
	}
	switch {
	case r.ClearDeadline:
		m.JobDeadline = nil
	case r.Deadline != nil:
		d := r.Deadline.UTC()
		m.JobDeadline = &d
	}
	if r.IsActive != nil {
		m.JobIsActive = *r.IsActive
	}
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

type JobView struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	Company        string     `json:"company"`
	Location       string     `json:"location"`
	EmploymentType string     `json:"employment_type"`
	WorkMode       string     `json:"work_mode,omitempty"`
	Description    string     `json:"description"`
	Requirements   []string   `json:"requirements"`
	SalaryRange    string     `json:"salary_range,omitempty"`
	ApplyURL       string     `json:"apply_url,omitempty"`
	ApplyEmail     string     `json:"apply_email,omitempty"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	IsActive       bool       `json:"is_active"`
	IsOpen         bool       `json:"is_open"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func ToJobView(now time.Time, m model.JobModel) JobView {
	req := []string(m.JobRequirements)
	if req == nil {
		req = []string{}
	}
	return JobView{
		ID:             m.JobID,
		Title:          m.JobTitle,
		Slug:           m.JobSlug,
		Company:        m.JobCompany,
		Location:       m.JobLocation,
		EmploymentType: m.JobEmploymentType,
		WorkMode:       m.JobWorkMode,
		Description:    m.JobDescription,
		Requirements:   req,
		SalaryRange:    m.JobSalaryRange,
		ApplyURL:       m.JobApplyURL,
		ApplyEmail:     m.JobApplyEmail,
		Deadline:       m.JobDeadline,
		IsActive:       m.JobIsActive,
		IsOpen:         m.IsOpen(now),
		CreatedAt:      m.JobCreatedAt,
		UpdatedAt:      m.JobUpdatedAt,
	}
}

func ToJobViews(now time.Time, rows []model.JobModel) []JobView {
	out := make([]JobView, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToJobView(now, r))
	}
	return out
}
