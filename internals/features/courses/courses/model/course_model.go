package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
)

type CourseModule struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Lessons     []string `json:"lessons,omitempty"`
}

type CourseFeature struct {
	Icon string `json:"icon,omitempty"`
	Text string `json:"text"`
}

// CourseModel is a catalogue entry with a seat cap and a registration window.
// CourseSeatsTaken counts registrations that currently hold a seat (pending or approved).
type CourseModel struct {
	CourseID          uuid.UUID `gorm:"column:course_id;type:uuid;primaryKey"`
	CourseTitle       string    `gorm:"column:course_title;size:100;not null"`
	CourseSlug        string    `gorm:"column:course_slug;size:120;not null;uniqueIndex:uq_courses_slug"`
	CourseDescription string    `gorm:"column:course_description;type:text;not null"`
	CourseCoverImage  string    `gorm:"column:course_cover_image;type:text"`

	CoursePrice         int64     `gorm:"column:course_price;not null"`
	CourseOriginalPrice int64     `gorm:"column:course_original_price;not null"`
	CourseDiscountEnd   time.Time `gorm:"column:course_discount_end;not null"`

	CourseDuration string `gorm:"column:course_duration;size:60"`
	CourseLevel    string `gorm:"column:course_level;size:20"`

	CourseSeats      int `gorm:"column:course_seats;not null"`
	CourseSeatsTaken int `gorm:"column:course_seats_taken;not null;default:0"`

	CourseStartDate         time.Time `gorm:"column:course_start_date;not null"`
	CourseRegistrationStart time.Time `gorm:"column:course_registration_start;not null"`
	CourseRegistrationEnd   time.Time `gorm:"column:course_registration_end;not null"`

	CourseModules  datatypes.JSONSlice[CourseModule]  `gorm:"column:course_modules"`
	CourseFeatures datatypes.JSONSlice[CourseFeature] `gorm:"column:course_features"`

	CourseCreatedAt time.Time `gorm:"column:course_created_at;autoCreateTime"`
	CourseUpdatedAt time.Time `gorm:"column:course_updated_at;autoUpdateTime"`
}

func (CourseModel) TableName() string { return "courses" }

func (c *CourseModel) BeforeCreate(tx *gorm.DB) error {
	if c.CourseID == uuid.Nil {
		c.CourseID = uuid.New()
	}
	return nil
}
