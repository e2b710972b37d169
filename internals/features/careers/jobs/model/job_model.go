package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	EmploymentFullTime   = "full-time"
	EmploymentPartTime   = "part-time"
	EmploymentContract   = "contract"
	EmploymentInternship = "internship"
	EmploymentRemote     = "remote"
)

type JobModel struct {
	JobID             uuid.UUID                   `gorm:"column:job_id;type:uuid;primaryKey" json:"job_id"`
	JobTitle          string                      `gorm:"column:job_title;size:200;not null" json:"job_title"`
	JobSlug           string                      `gorm:"column:job_slug;size:160;not null;uniqueIndex:uq_jobs_slug" json:"job_slug"`
	JobCompany        string                      `gorm:"column:job_company;size:200;not null" json:"job_company"`
	JobLocation       string                      `gorm:"column:job_location;size:200" json:"job_location"`
	JobEmploymentType string                      `gorm:"column:job_employment_type;size:20;not null;index" json:"job_employment_type"`
	JobWorkMode       string                      `gorm:"column:job_work_mode;size:20" json:"job_work_mode"`
	JobDescription    string                      `gorm:"column:job_description;type:text;not null" json:"job_description"`
	JobRequirements   datatypes.JSONSlice[string] `gorm:"column:job_requirements" json:"job_requirements"`
	JobSalaryRange    string                      `gorm:"column:job_salary_range;size:100" json:"job_salary_range"`
	JobApplyURL       string                      `gorm:"column:job_apply_url;type:text" json:"job_apply_url"`
	JobApplyEmail     string                      `gorm:"column:job_apply_email;size:255" json:"job_apply_email"`
	JobDeadline       *time.Time                  `gorm:"column:job_deadline" json:"job_deadline,omitempty"`
	JobIsActive       bool                        `gorm:"column:job_is_active;not null;default:true;index" json:"job_is_active"`

	JobCreatedAt time.Time `gorm:"column:job_created_at;autoCreateTime;index" json:"job_created_at"`
	JobUpdatedAt time.Time `gorm:"column:job_updated_at;autoUpdateTime" json:"job_updated_at"`
}

func (JobModel) TableName() string { return "jobs" }

func (j *JobModel) BeforeCreate(tx *gorm.DB) error {
	if j.JobID == uuid.Nil {
		j.JobID = uuid.New()
	}
	if j.JobRequirements == nil {
		j.JobRequirements = datatypes.JSONSlice[string]{}
	}
	return nil
}

// IsOpen is false once the job is switched off or its deadline has passed.
func (j *JobModel) IsOpen(now time.Time) bool {
	if !j.JobIsActive {
		return false
	}
	return j.JobDeadline == nil || !now.After(*j.JobDeadline)
}
