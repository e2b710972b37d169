package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	database "github.com/abassolaiya/phibitechbackend/internals/databases"
	"github.com/abassolaiya/phibitechbackend/internals/features/courses/courses/dto"
	"github.com/abassolaiya/phibitechbackend/internals/features/courses/courses/model"
	regModel "github.com/abassolaiya/phibitechbackend/internals/features/courses/registrations/model"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.CourseModel{}, &regModel.RegistrationModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })
	return db
}

func newCourse(title string) model.CourseModel {
	return model.CourseModel{
		CourseTitle:             title,
		CourseDescription:       "desc",
		CoursePrice:             80,
		CourseOriginalPrice:     100,
		CourseDiscountEnd:       fixedNow.Add(24 * time.Hour),
		CourseSeats:             5,
		CourseStartDate:         fixedNow.Add(30 * 24 * time.Hour),
		CourseRegistrationStart: fixedNow.Add(-time.Hour),
		CourseRegistrationEnd:   fixedNow.Add(time.Hour),
	}
}

func TestCreateCourseDerivesUniqueSlug(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a, err := CreateCourse(ctx, db, newCourse("Data Science & AI"))
	if err != nil {
		t.Fatalf("create a: %v", err)
	}
	b, err := CreateCourse(ctx, db, newCourse("Data Science & AI"))
	if err != nil {
		t.Fatalf("create b: %v", err)
	}
	if a.CourseSlug != "data-science-ai" {
		t.Fatalf("slug = %q", a.CourseSlug)
	}
	if b.CourseSlug != "data-science-ai-2" {
		t.Fatalf("second slug = %q", b.CourseSlug)
	}
}

func TestCreateCourseRejectsBrokenInvariants(t *testing.T) {
	db := newTestDB(t)
	cases := map[string]func(*model.CourseModel){
		"price above original": func(c *model.CourseModel) { c.CoursePrice = 200 },
		"window reversed":      func(c *model.CourseModel) { c.CourseRegistrationEnd = c.CourseRegistrationStart.Add(-time.Second) },
		"no seats":             func(c *model.CourseModel) { c.CourseSeats = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := newCourse("Broken " + name)
			mutate(&c)
			_, err := CreateCourse(context.Background(), db, c)
			var ce *helper.CodedError
			if !errors.As(err, &ce) || ce.Status != 400 {
				t.Fatalf("err = %v, want 400 coded error", err)
			}
		})
	}
}

func TestUpdateCourseKeepsSlugAndGuardsSeats(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	created, err := CreateCourse(ctx, db, newCourse("Cyber Security"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := db.Model(&model.CourseModel{}).
		Where("course_id = ?", created.CourseID).
		Update("course_seats_taken", 3).Error; err != nil {
		t.Fatalf("seed taken: %v", err)
	}

	title := "Cyber Security Bootcamp"
	updated, err := UpdateCourse(ctx, db, created.CourseSlug, dto.UpdateCourseRequest{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.CourseSlug != "cyber-security" || updated.CourseTitle != title {
		t.Fatalf("slug=%q title=%q", updated.CourseSlug, updated.CourseTitle)
	}

	seats := 2
	_, err = UpdateCourse(ctx, db, created.CourseSlug, dto.UpdateCourseRequest{Seats: &seats})
	var ce *helper.CodedError
	if !errors.As(err, &ce) || ce.Code != "SEATS_BELOW_TAKEN" {
		t.Fatalf("err = %v, want SEATS_BELOW_TAKEN", err)
	}

	if _, err := UpdateCourse(ctx, db, "nope", dto.UpdateCourseRequest{Title: &title}); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("missing course: err = %v", err)
	}
}

func TestDeleteCourseRefusedWithRegistrations(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	c, err := CreateCourse(ctx, db, newCourse("Product Design"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	reg := regModel.RegistrationModel{
		RegistrationCourseID:      c.CourseID,
		RegistrationName:          "Ada",
		RegistrationEmail:         "ada@example.com",
		RegistrationPhone:         "1",
		RegistrationMotivation:    "m",
		RegistrationPaymentAmount: 80,
		RegistrationStatus:        regModel.StatusRejected,
	}
	if err := db.Create(&reg).Error; err != nil {
		t.Fatalf("seed registration: %v", err)
	}

	if _, err := DeleteCourse(ctx, db, c.CourseSlug); !errors.Is(err, ErrCourseHasRegistrations) {
		t.Fatalf("err = %v, want ErrCourseHasRegistrations", err)
	}

	if err := db.Delete(&regModel.RegistrationModel{}, "registration_id = ?", reg.RegistrationID).Error; err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if _, err := DeleteCourse(ctx, db, c.CourseSlug); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := DescribeCourse(ctx, db, c.CourseSlug, fixedNow); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("describe deleted: err = %v", err)
	}
}

func TestDescribeCourse(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	c, err := CreateCourse(ctx, db, newCourse("Cloud Engineering"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	v, err := DescribeCourse(ctx, db, "Cloud-Engineering", fixedNow)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if v.ID != c.CourseID || !v.IsDiscountActive || v.DiscountPercentage != 20 || v.DaysUntilDiscountEnd != 1 {
		t.Fatalf("unexpected view %+v", v)
	}
	if v.SeatsAvailable != 5 || !v.IsRegistrationOpen {
		t.Fatalf("seats=%d open=%v", v.SeatsAvailable, v.IsRegistrationOpen)
	}
}
