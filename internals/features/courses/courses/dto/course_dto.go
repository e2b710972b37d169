package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abassolaiya/phibitechbackend/internals/features/courses/courses/model"
)

/* =========================
   Requests
========================= */

type CourseModuleRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	Lessons     []string `json:"lessons" validate:"dive,required,max=200"`
}

type CourseFeatureRequest struct {
	Icon string `json:"icon" validate:"max=100"`
	Text string `json:"text" validate:"required,max=200"`
}

type CreateCourseRequest struct {
	Title             string                 `json:"title" validate:"required,max=100"`
	Description       string                 `json:"description" validate:"required,max=1000"`
	CoverImage        string                 `json:"cover_image" validate:"omitempty,url"`
	Price             int64                  `json:"price" validate:"gte=0,ltefield=OriginalPrice"`
	OriginalPrice     int64                  `json:"original_price" validate:"gte=0"`
	DiscountEnd       time.Time              `json:"discount_end" validate:"required"`
	Duration          string                 `json:"duration" validate:"max=60"`
	Level             string                 `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Seats             int                    `json:"seats" validate:"required,min=1"`
	StartDate         time.Time              `json:"start_date" validate:"required"`
	RegistrationStart time.Time              `json:"registration_start" validate:"required"`
	RegistrationEnd   time.Time              `json:"registration_end" validate:"required,gtefield=RegistrationStart"`
	Modules           []CourseModuleRequest  `json:"modules" validate:"dive"`
	Features          []CourseFeatureRequest `json:"features" validate:"dive"`
}

func (r *CreateCourseRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.CoverImage = strings.TrimSpace(r.CoverImage)
}

func (r CreateCourseRequest) ToModel() model.CourseModel {
	return model.CourseModel{
		CourseTitle:             r.Title,
		CourseDescription:       r.Description,
		CourseCoverImage:        r.CoverImage,
		CoursePrice:             r.Price,
		CourseOriginalPrice:     r.OriginalPrice,
		CourseDiscountEnd:       r.DiscountEnd.UTC(),
		CourseDuration:          r.Duration,
		CourseLevel:             r.Level,
		CourseSeats:             r.Seats,
		CourseStartDate:         r.StartDate.UTC(),
		CourseRegistrationStart: r.RegistrationStart.UTC(),
		CourseRegistrationEnd:   r.RegistrationEnd.UTC(),
		CourseModules:           toModules(r.Modules),
		CourseFeatures:          toFeatures(r.Features),
	}
}

// UpdateCourseRequest is a partial update; nil fields are left untouched.
// The slug is never recomputed.
type UpdateCourseRequest struct {
	Title             *string                 `json:"title" validate:"omitempty,min=1,max=100"`
	Description       *string                 `json:"description" validate:"omitempty,min=1,max=1000"`
	CoverImage        *string                 `json:"cover_image" validate:"omitempty,url"`
	Price             *int64                  `json:"price" validate:"omitempty,gte=0"`
	OriginalPrice     *int64                  `json:"original_price" validate:"omitempty,gte=0"`
	DiscountEnd       *time.Time              `json:"discount_end"`
	Duration          *string                 `json:"duration" validate:"omitempty,max=60"`
	Level             *string                 `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Seats             *int                    `json:"seats" validate:"omitempty,min=1"`
	StartDate         *time.Time              `json:"start_date"`
	RegistrationStart *time.Time              `json:"registration_start"`
	RegistrationEnd   *time.Time              `json:"registration_end"`
	Modules           *[]CourseModuleRequest  `json:"modules" validate:"omitempty,dive"`
	Features          *[]CourseFeatureRequest `json:"features" validate:"omitempty,dive"`
}

// ApplyTo merges the request into m.
func (r UpdateCourseRequest) ApplyTo(m *model.CourseModel) {
	if r.Title != nil {
		m.CourseTitle = strings.TrimSpace(*r.Title)
	}
	if r.Description != nil {
		m.CourseDescription = strings.TrimSpace(*r.Description)
	}
	if r.CoverImage != nil {
		m.CourseCoverImage = strings.TrimSpace(*r.CoverImage)
	}
	if r.Price != nil {
		m.CoursePrice = *r.Price
	}
	if r.OriginalPrice != nil {
		m.CourseOriginalPrice = *r.OriginalPrice
	}
	if r.DiscountEnd != nil {
		m.CourseDiscountEnd = r.DiscountEnd.UTC()
	}
	if r.Duration != nil {
		m.CourseDuration = *r.Duration
	}
	if r.Level != nil {
		m.CourseLevel = *r.Level
	}
	if r.Seats != nil {
		m.CourseSeats = *r.Seats
	}
	if r.StartDate != nil {
		m.CourseStartDate = r.StartDate.UTC()
	}
	if r.RegistrationStart != nil {
		m.CourseRegistrationStart = r.RegistrationStart.UTC()
	}
	if r.RegistrationEnd != nil {
		m.CourseRegistrationEnd = r.RegistrationEnd.UTC()
	}
	if r.Modules != nil {
		m.CourseModules = toModules(*r.Modules)
	}
	if r.Features != nil {
		m.CourseFeatures = toFeatures(*r.Features)
	}
}

func toModules(in []CourseModuleRequest) []model.CourseModule {
	out := make([]model.CourseModule, 0, len(in))
	for _, m := range in {
		out = append(out, model.CourseModule{
			Title:       strings.TrimSpace(m.Title),
			Description: strings.TrimSpace(m.Description),
			Lessons:     m.Lessons,
		})
	}
	return out
}

func toFeatures(in []CourseFeatureRequest) []model.CourseFeature {
	out := make([]model.CourseFeature, 0, len(in))
	for _, f := range in {
		out = append(out, model.CourseFeature{Icon: f.Icon, Text: strings.TrimSpace(f.Text)})
	}
	return out
}

/* =========================
   Responses
========================= */

// CourseView is a course plus the values derived from the current time.
type CourseView struct {
	ID                uuid.UUID             `json:"id"`
	Title             string                `json:"title"`
	Slug              string                `json:"slug"`
	Description       string                `json:"description"`
	CoverImage        string                `json:"cover_image"`
	Price             int64                 `json:"price"`
	OriginalPrice     int64                 `json:"original_price"`
	DiscountEnd       time.Time             `json:"discount_end"`
	Duration          string                `json:"duration,omitempty"`
	Level             string                `json:"level,omitempty"`
	Seats             int                   `json:"seats"`
	SeatsTaken        int                   `json:"seats_taken"`
	StartDate         time.Time             `json:"start_date"`
	RegistrationStart time.Time             `json:"registration_start"`
	RegistrationEnd   time.Time             `json:"registration_end"`
	Modules           []model.CourseModule  `json:"modules"`
	Features          []model.CourseFeature `json:"features"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`

	IsDiscountActive     bool `json:"is_discount_active"`
	DiscountPercentage   int  `json:"discount_percentage"`
	DaysUntilDiscountEnd int  `json:"days_until_discount_end"`
	SeatsAvailable       int  `json:"seats_available"`
	IsRegistrationOpen   bool `json:"is_registration_open"`
}

// CourseBrief is embedded in registration responses.
type CourseBrief struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Slug  string    `json:"slug"`
}

func ToCourseBrief(m model.CourseModel) CourseBrief {
	return CourseBrief{ID: m.CourseID, Title: m.CourseTitle, Slug: m.CourseSlug}
}
