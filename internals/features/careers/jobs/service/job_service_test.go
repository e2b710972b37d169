package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	database "github.com/abassolaiya/phibitechbackend/internals/databases"
	"github.com/abassolaiya/phibitechbackend/internals/features/careers/jobs/dto"
	"github.com/abassolaiya/phibitechbackend/internals/features/careers/jobs/model"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
)

var testNow = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

var firstPage = helper.Paging{Page: 1, PerPage: 20, Limit: 20}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.JobModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })
	return db
}

func newJob(title string, active bool, deadline *time.Time) model.JobModel {
	req := dto.CreateJobRequest{
		Title:          title,
		Company:        "Phibitech",
		Location:       "Lagos, Nigeria",
		EmploymentType: "full-time",
		Description:    "Build things",
		Requirements:   []string{" Go ", "", "SQL"},
		ApplyEmail:     "Jobs@Phibitech.com",
		Deadline:       deadline,
		IsActive:       &active,
	}
	req.Normalize()
	return req.ToModel()
}

func TestCreateJobSlugAndNormalisation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a, err := CreateJob(ctx, db, newJob("Backend Engineer", true, nil))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := CreateJob(ctx, db, newJob("Backend Engineer", true, nil))
	if err != nil {
		t.Fatalf("create twin: %v", err)
	}
	if a.JobSlug != "backend-engineer-phibitech" || b.JobSlug != "backend-engineer-phibitech-2" {
		t.Fatalf("slugs = %q, %q", a.JobSlug, b.JobSlug)
	}
	if len(a.JobRequirements) != 2 || a.JobApplyEmail != "jobs@phibitech.com" {
		t.Fatalf("normalised job = %+v", a)
	}

	noApply := newJob("Ghost", true, nil)
	noApply.JobApplyEmail = ""
	if _, err := CreateJob(ctx, db, noApply); !errors.Is(err, ErrNoApplyMethod) {
		t.Fatalf("missing apply method: err = %v", err)
	}
}

func TestListJobsHidesClosedFromPublic(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	past := testNow.Add(-time.Hour)
	future := testNow.Add(24 * time.Hour)

	open, _ := CreateJob(ctx, db, newJob("Open role", true, &future))
	inactive, err := CreateJob(ctx, db, newJob("Paused role", false, nil))
	if err != nil {
		t.Fatalf("create inactive: %v", err)
	}
	if inactive.JobIsActive {
		t.Fatal("explicit is_active=false was lost")
	}
	CreateJob(ctx, db, newJob("Expired role", true, &past))

	public, total, err := ListJobs(ctx, db, ListFilter{}, firstPage, testNow, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || public[0].ID != open.JobID || !public[0].IsOpen {
		t.Fatalf("public list = %+v", public)
	}

	// asking for closed jobs does nothing without admin rights
	_, total, _ = ListJobs(ctx, db, ListFilter{IncludeClosed: true}, firstPage, testNow, false)
	if total != 1 {
		t.Fatalf("non-admin include_closed total = %d", total)
	}
	all, total, _ := ListJobs(ctx, db, ListFilter{IncludeClosed: true}, firstPage, testNow, true)
	if total != 3 {
		t.Fatalf("admin total = %d", total)
	}
	closed := 0
	for _, j := range all {
		if !j.IsOpen {
			closed++
		}
	}
	if closed != 2 {
		t.Fatalf("closed jobs in admin view = %d, want 2", closed)
	}

	if _, err := GetJob(ctx, db, inactive.JobSlug, testNow, false); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("public get of inactive job: err = %v", err)
	}
	if _, err := GetJob(ctx, db, inactive.JobID.String(), testNow, true); err != nil {
		t.Fatalf("admin get by id: %v", err)
	}
}

func TestListJobsFilters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	CreateJob(ctx, db, newJob("Go Developer", true, nil))
	intern := newJob("Design Intern", true, nil)
	intern.JobEmploymentType = model.EmploymentInternship
	intern.JobLocation = "Remote"
	CreateJob(ctx, db, intern)

	byType, _, _ := ListJobs(ctx, db, ListFilter{EmploymentType: "Internship"}, firstPage, testNow, false)
	if len(byType) != 1 || byType[0].Title != "Design Intern" {
		t.Fatalf("type filter = %+v", byType)
	}
	byLocation, _, _ := ListJobs(ctx, db, ListFilter{Location: "lagos"}, firstPage, testNow, false)
	if len(byLocation) != 1 || byLocation[0].Title != "Go Developer" {
		t.Fatalf("location filter = %+v", byLocation)
	}
	byQuery, _, _ := ListJobs(ctx, db, ListFilter{Query: "developer"}, firstPage, testNow, false)
	if len(byQuery) != 1 {
		t.Fatalf("query filter = %+v", byQuery)
	}
}

func TestUpdateAndDeleteJob(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	deadline := testNow.Add(48 * time.Hour)

	j, _ := CreateJob(ctx, db, newJob("Data Analyst", true, &deadline))

	title := "Senior Data Analyst"
	off := false
	got, err := UpdateJob(ctx, db, j.JobID, dto.UpdateJobRequest{Title: &title, IsActive: &off, ClearDeadline: true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.JobSlug != j.JobSlug || got.JobTitle != title || got.JobIsActive || got.JobDeadline != nil {
		t.Fatalf("updated job = %+v", got)
	}

	empty := ""
	if _, err := UpdateJob(ctx, db, j.JobID, dto.UpdateJobRequest{ApplyEmail: &empty}); !errors.Is(err, ErrNoApplyMethod) {
		t.Fatalf("clearing the only apply method: err = %v", err)
	}
	if _, err := UpdateJob(ctx, db, uuid.New(), dto.UpdateJobRequest{Title: &title}); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("unknown job: err = %v", err)
	}

	if _, err := DeleteJob(ctx, db, j.JobID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := DeleteJob(ctx, db, j.JobID); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("delete twice: err = %v", err)
	}
}
