package controller

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	database "github.com/abassolaiya/phibitechbackend/internals/databases"
	"github.com/abassolaiya/phibitechbackend/internals/features/consultations/model"
	"github.com/abassolaiya/phibitechbackend/internals/helpers/mailer"
)

func newTestApp(t *testing.T, rec *mailer.Recorder) (*fiber.App, *gorm.DB) {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.ConsultationModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })

	ctl := NewConsultationController(db, rec, "ops@phibitech.com")
	app := fiber.New()
	app.Post("/consultations", ctl.Submit)
	app.Put("/consultations/:id/status", ctl.UpdateStatus)
	return app, db
}

func post(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.StatusCode, out
}

func TestSubmitNotifiesAdmin(t *testing.T) {
	rec := &mailer.Recorder{}
	app, db := newTestApp(t, rec)

	status, body := post(t, app, "POST", "/consultations",
		`{"name":"Ada","email":"ADA@example.com","message":"Need a website","service":"Web"}`)
	if status != fiber.StatusCreated || body["success"] != true {
		t.Fatalf("status=%d body=%v", status, body)
	}

	var stored model.ConsultationModel
	if err := db.First(&stored).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if stored.ConsultationEmail != "ada@example.com" {
		t.Fatalf("email = %q", stored.ConsultationEmail)
	}

	// the notice goes out on its own goroutine
	deadline := time.Now().Add(2 * time.Second)
	for len(rec.Messages()) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	msgs := rec.Messages()
	if len(msgs) != 1 || msgs[0].To[0] != "ops@phibitech.com" {
		t.Fatalf("mails = %+v", msgs)
	}
}

func TestSubmitValidation(t *testing.T) {
	app, _ := newTestApp(t, &mailer.Recorder{})

	status, body := post(t, app, "POST", "/consultations", `{"name":"Ada","email":"not-an-email"}`)
	if status != fiber.StatusBadRequest || body["success"] != false {
		t.Fatalf("status=%d body=%v", status, body)
	}
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	app, db := newTestApp(t, &mailer.Recorder{})
	m := model.ConsultationModel{ConsultationName: "Ada", ConsultationEmail: "ada@example.com", ConsultationMessage: "hi"}
	if err := db.Create(&m).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	path := "/consultations/" + m.ConsultationID.String() + "/status"

	if status, _ := post(t, app, "PUT", path, `{"status":"archived"}`); status != fiber.StatusBadRequest {
		t.Fatalf("unknown status accepted: %d", status)
	}
	status, body := post(t, app, "PUT", path, `{"status":"contacted"}`)
	if status != fiber.StatusOK {
		t.Fatalf("status=%d body=%v", status, body)
	}
	if data, _ := body["data"].(map[string]any); data["consultation_status"] != "contacted" {
		t.Fatalf("data = %v", body["data"])
	}
	if status, _ := post(t, app, "PUT", "/consultations/nope/status", `{"status":"closed"}`); status != fiber.StatusBadRequest {
		t.Fatalf("bad id: %d", status)
	}
}
