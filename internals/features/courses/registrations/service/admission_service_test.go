package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	database "github.com/abassolaiya/phibitechbackend/internals/databases"
	courseModel "github.com/abassolaiya/phibitechbackend/internals/features/courses/courses/model"
	"github.com/abassolaiya/phibitechbackend/internals/features/courses/registrations/model"
)

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&courseModel.CourseModel{}, &model.RegistrationModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })
	return db
}

func seedCourse(t *testing.T, db *gorm.DB, seats int, mutate ...func(*courseModel.CourseModel)) courseModel.CourseModel {
	t.Helper()
	c := courseModel.CourseModel{
		CourseTitle:             "Cloud Fundamentals",
		CourseSlug:              "cloud-fundamentals",
		CourseDescription:       "Intro to cloud computing",
		CoursePrice:             80,
		CourseOriginalPrice:     100,
		CourseDiscountEnd:       testNow.Add(24 * time.Hour),
		CourseSeats:             seats,
		CourseStartDate:         testNow.Add(30 * 24 * time.Hour),
		CourseRegistrationStart: testNow.Add(-24 * time.Hour),
		CourseRegistrationEnd:   testNow.Add(7 * 24 * time.Hour),
	}
	for _, m := range mutate {
		m(&c)
	}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return c
}

func applicant(name string) Registrant {
	return Registrant{
		Name:       name,
		Email:      name + "@example.com",
		Phone:      "+2348000000000",
		Motivation: "I want to learn",
	}
}

func countHolders(t *testing.T, db *gorm.DB, c courseModel.CourseModel) int64 {
	t.Helper()
	n, err := countSeatHolders(db, c.CourseID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func seatsTaken(t *testing.T, db *gorm.DB, c courseModel.CourseModel) int {
	t.Helper()
	var got courseModel.CourseModel
	if err := db.First(&got, "course_id = ?", c.CourseID).Error; err != nil {
		t.Fatalf("reload course: %v", err)
	}
	return got.CourseSeatsTaken
}

func TestEvaluateRegistrationAdmits(t *testing.T) {
	db := newTestDB(t)
	c := seedCourse(t, db, 2)

	before := countHolders(t, db, c)
	reg, err := EvaluateRegistration(context.Background(), db, c.CourseID, applicant("ada"), testNow)
	if err != nil {
		t.Fatalf("EvaluateRegistration: %v", err)
	}

	if reg.RegistrationStatus != model.StatusPending || reg.RegistrationPaymentStatus != model.PaymentUnpaid {
		t.Fatalf("unexpected initial state %s/%s", reg.RegistrationStatus, reg.RegistrationPaymentStatus)
	}
	if reg.RegistrationPaymentAmount != 80 {
		t.Fatalf("payment amount = %d, want discounted 80", reg.RegistrationPaymentAmount)
	}
	if got := countHolders(t, db, c); got != before+1 {
		t.Fatalf("holders = %d, want %d", got, before+1)
	}
	if got := seatsTaken(t, db, c); got != 1 {
		t.Fatalf("seats taken = %d, want 1", got)
	}
}

func TestEvaluateRegistrationChargesOriginalPriceAfterDiscount(t *testing.T) {
	db := newTestDB(t)
	c := seedCourse(t, db, 2, func(c *courseModel.CourseModel) {
		c.CourseDiscountEnd = testNow.Add(-time.Minute)
	})

	reg, err := EvaluateRegistration(context.Background(), db, c.CourseID, applicant("bob"), testNow)
	if err != nil {
		t.Fatalf("EvaluateRegistration: %v", err)
	}
	if reg.RegistrationPaymentAmount != 100 {
		t.Fatalf("payment amount = %d, want 100", reg.RegistrationPaymentAmount)
	}
}

func TestEvaluateRegistrationRejections(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
		full bool
		want error
	}{
		{"before window", testNow.Add(-48 * time.Hour), false, ErrRegistrationClosed},
		{"after window", testNow.Add(8 * 24 * time.Hour), false, ErrRegistrationClosed},
		{"closed wins over full", testNow.Add(8 * 24 * time.Hour), true, ErrRegistrationClosed},
		{"full inside window", testNow, true, ErrSeatsUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := newTestDB(t)
			c := seedCourse(t, db, 1)
			if tc.full {
				if _, err := EvaluateRegistration(context.Background(), db, c.CourseID, applicant("first"), testNow); err != nil {
					t.Fatalf("fill seat: %v", err)
				}
			}
			before := countHolders(t, db, c)

			_, err := EvaluateRegistration(context.Background(), db, c.CourseID, applicant("late"), tc.now)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if got := countHolders(t, db, c); got != before {
				t.Fatalf("holders changed on rejection: %d -> %d", before, got)
			}
		})
	}
}

func TestEvaluateRegistrationUnknownCourse(t *testing.T) {
	db := newTestDB(t)
	seedCourse(t, db, 1)

	if _, err := EvaluateRegistration(context.Background(), db, uuid.New(), applicant("y"), testNow); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("err = %v, want ErrCourseNotFound", err)
	}
}

func TestEvaluateRegistrationConcurrentSingleSeat(t *testing.T) {
	db := newTestDB(t)
	c := seedCourse(t, db, 1)

	const workers = 100
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
		soldOut  int
		other    []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := EvaluateRegistration(context.Background(), db, c.CourseID, applicant("racer"), testNow)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				admitted++
			case errors.Is(err, ErrSeatsUnavailable):
				soldOut++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	if len(other) > 0 {
		t.Fatalf("unexpected errors: %v", other[0])
	}
	if admitted != 1 || soldOut != workers-1 {
		t.Fatalf("admitted=%d soldOut=%d, want 1/%d", admitted, soldOut, workers-1)
	}
	if got := countHolders(t, db, c); got != 1 {
		t.Fatalf("holders = %d, want 1", got)
	}
	if got := seatsTaken(t, db, c); got != 1 {
		t.Fatalf("seats taken = %d, want 1", got)
	}
}

func TestAcquireSeatRefusesFullCounter(t *testing.T) {
	db := newTestDB(t)
	c := seedCourse(t, db, 2)

	// the counter alone says full, even though no registration rows exist
	if err := db.Model(&courseModel.CourseModel{}).
		Where("course_id = ?", c.CourseID).
		Update("course_seats_taken", 2).Error; err != nil {
		t.Fatalf("fill counter: %v", err)
	}

	if err := acquireSeat(db, c.CourseID); !errors.Is(err, ErrSeatsUnavailable) {
		t.Fatalf("acquireSeat on full counter: err = %v, want ErrSeatsUnavailable", err)
	}
	if got := seatsTaken(t, db, c); got != 2 {
		t.Fatalf("seats taken = %d, want 2", got)
	}

	if err := releaseSeat(db, c.CourseID); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := acquireSeat(db, c.CourseID); err != nil {
		t.Fatalf("acquireSeat after release: %v", err)
	}
	if got := seatsTaken(t, db, c); got != 2 {
		t.Fatalf("seats taken = %d, want 2", got)
	}
}

func TestEvaluateRegistrationHonoursSeatCounter(t *testing.T) {
	db := newTestDB(t)
	c := seedCourse(t, db, 1)
	if err := db.Model(&courseModel.CourseModel{}).
		Where("course_id = ?", c.CourseID).
		Update("course_seats_taken", 1).Error; err != nil {
		t.Fatalf("fill counter: %v", err)
	}

	_, err := EvaluateRegistration(context.Background(), db, c.CourseID, applicant("late"), testNow)
	if !errors.Is(err, ErrSeatsUnavailable) {
		t.Fatalf("err = %v, want ErrSeatsUnavailable", err)
	}
	if got := countHolders(t, db, c); got != 0 {
		t.Fatalf("holders = %d, want 0", got)
	}
}
