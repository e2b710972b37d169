package service

import (
	"math"
	"time"

	"github.com/abassolaiya/phibitechbackend/internals/features/courses/courses/dto"
	"github.com/abassolaiya/phibitechbackend/internals/features/courses/courses/model"
)

const dayLength = 24 * time.Hour

// IsDiscountActive is true strictly before the discount end.
func IsDiscountActive(now time.Time, c model.CourseModel) bool {
	return now.Before(c.CourseDiscountEnd)
}

// DiscountPercentage is the rounded markdown off the original price, 0 once the discount ended.
func DiscountPercentage(now time.Time, c model.CourseModel) int {
	if !IsDiscountActive(now, c) || c.CourseOriginalPrice <= 0 {
		return 0
	}
	off := float64(c.CourseOriginalPrice-c.CoursePrice) / float64(c.CourseOriginalPrice) * 100
	return int(math.Round(off))
}

// DaysUntilDiscountEnd counts partial days as whole ones.
func DaysUntilDiscountEnd(now time.Time, c model.CourseModel) int {
	if !IsDiscountActive(now, c) {
		return 0
	}
	return int(math.Ceil(float64(c.CourseDiscountEnd.Sub(now)) / float64(dayLength)))
}

// ChargedPrice is what a registration made at now pays.
func ChargedPrice(now time.Time, c model.CourseModel) int64 {
	if IsDiscountActive(now, c) {
		return c.CoursePrice
	}
	return c.CourseOriginalPrice
}

// IsRegistrationOpen is inclusive on both ends of the window.
func IsRegistrationOpen(now time.Time, c model.CourseModel) bool {
	return !now.Before(c.CourseRegistrationStart) && !now.After(c.CourseRegistrationEnd)
}

func SeatsAvailable(c model.CourseModel) int {
	if left := c.CourseSeats - c.CourseSeatsTaken; left > 0 {
		return left
	}
	return 0
}

// BuildCourseView attaches the time-derived fields to a stored course.
func BuildCourseView(now time.Time, c model.CourseModel) dto.CourseView {
	modules := []model.CourseModule(c.CourseModules)
	if modules == nil {
		modules = []model.CourseModule{}
	}
	features := []model.CourseFeature(c.CourseFeatures)
	if features == nil {
		features = []model.CourseFeature{}
	}

	return dto.CourseView{
		ID:                c.CourseID,
		Title:             c.CourseTitle,
		Slug:              c.CourseSlug,
		Description:       c.CourseDescription,
		CoverImage:        c.CourseCoverImage,
		Price:             c.CoursePrice,
		OriginalPrice:     c.CourseOriginalPrice,
		DiscountEnd:       c.CourseDiscountEnd,
		Duration:          c.CourseDuration,
		Level:             c.CourseLevel,
		Seats:             c.CourseSeats,
		SeatsTaken:        c.CourseSeatsTaken,
		StartDate:         c.CourseStartDate,
		RegistrationStart: c.CourseRegistrationStart,
		RegistrationEnd:   c.CourseRegistrationEnd,
		Modules:           modules,
		Features:          features,
		CreatedAt:         c.CourseCreatedAt,
		UpdatedAt:         c.CourseUpdatedAt,

		IsDiscountActive:     IsDiscountActive(now, c),
		DiscountPercentage:   DiscountPercentage(now, c),
		DaysUntilDiscountEnd: DaysUntilDiscountEnd(now, c),
		SeatsAvailable:       SeatsAvailable(c),
		IsRegistrationOpen:   IsRegistrationOpen(now, c),
	}
}

func BuildCourseViews(now time.Time, list []model.CourseModel) []dto.CourseView {
	out := make([]dto.CourseView, 0, len(list))
	for _, c := range list {
		out = append(out, BuildCourseView(now, c))
	}
	return out
}
