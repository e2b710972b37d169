package controller

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	database "github.com/abassolaiya/phibitechbackend/internals/databases"
	courseModel "github.com/abassolaiya/phibitechbackend/internals/features/courses/courses/model"
	regModel "github.com/abassolaiya/phibitechbackend/internals/features/courses/registrations/model"
	regService "github.com/abassolaiya/phibitechbackend/internals/features/courses/registrations/service"
	"github.com/abassolaiya/phibitechbackend/internals/features/finance/payments/model"
	"github.com/abassolaiya/phibitechbackend/internals/features/finance/payments/service"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
)

const serverKey = "SB-Mid-server-test"

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type fakeGateway struct {
	calls []service.CheckoutInput
}

func (g *fakeGateway) CreateCheckout(_ context.Context, in service.CheckoutInput) (*service.CheckoutResult, error) {
	g.calls = append(g.calls, in)
	return &service.CheckoutResult{OrderID: in.OrderID, Token: "snap-token", RedirectURL: "https://pay.example/" + in.OrderID}, nil
}

func (g *fakeGateway) VerifySignature(orderID, statusCode, grossAmount, signature string) bool {
	return service.VerifySignature(serverKey, orderID, statusCode, grossAmount, signature)
}

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
	gw  *fakeGateway
	reg regModel.RegistrationModel
	now time.Time
}

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB, *fakeGateway, regModel.RegistrationModel) {
	t.Helper()
	env := newTestEnv(t)
	return env.app, env.db, env.gw, env.reg
}

// newTestEnv wires the payment handlers behind a stand-in for the auth middleware
// that trusts the X-User-ID and X-User-Role headers.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{now: testNow}
	db, err := database.OpenSQLite(":memory:", &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&courseModel.CourseModel{}, &regModel.RegistrationModel{}, &model.PaymentOrderModel{}, &model.PaymentEventModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })

	course := courseModel.CourseModel{
		CourseTitle:             "Cloud Fundamentals",
		CourseSlug:              "cloud-fundamentals",
		CourseDescription:       "Intro",
		CoursePrice:             80000,
		CourseOriginalPrice:     100000,
		CourseDiscountEnd:       testNow.Add(24 * time.Hour),
		CourseSeats:             3,
		CourseStartDate:         testNow.Add(30 * 24 * time.Hour),
		CourseRegistrationStart: testNow.Add(-time.Hour),
		CourseRegistrationEnd:   testNow.Add(time.Hour),
	}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	reg, err := regService.EvaluateRegistration(context.Background(), db, course.CourseID, regService.Registrant{
		Name: "Ada Lovelace", Email: "ada@example.com", Phone: "+2348000000000", Motivation: "learn",
	}, testNow)
	if err != nil {
		t.Fatalf("seed registration: %v", err)
	}

	gw := &fakeGateway{}
	h := NewPaymentController(db, gw)
	h.Now = func() time.Time { return env.now }

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if id := c.Get("X-User-ID"); id != "" {
			c.Locals(helper.LocUserID, id)
			c.Locals(helper.LocUserRole, c.Get("X-User-Role"))
		}
		return c.Next()
	})
	app.Post("/registrations/:id/checkout", h.Checkout)
	app.Post("/payments/notification", h.MidtransWebhook)

	ev := NewPaymentEventController(db)
	app.Get("/payments/events", ev.ListEvents)
	app.Get("/payments/events/:id", ev.GetByID)

	env.app, env.db, env.gw, env.reg = app, db, gw, *reg
	return env
}

func call(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()
	return callAs(t, app, path, body, "", "")
}

func callAs(t *testing.T, app *fiber.App, path, body, userID, role string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
		req.Header.Set("X-User-Role", role)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.StatusCode, out
}

func notification(orderID, txStatus, amount string, signed bool) string {
	sig := "bogus"
	if signed {
		sig = service.SignatureKey(serverKey, orderID, "200", amount)
	}
	b, _ := json.Marshal(map[string]string{
		"order_id":           orderID,
		"status_code":        "200",
		"gross_amount":       amount,
		"transaction_status": txStatus,
		"transaction_id":     "tx-1",
		"signature_key":      sig,
	})
	return string(b)
}

func TestCheckoutThenSettlementMarksPaid(t *testing.T) {
	app, db, gw, reg := newTestApp(t)

	status, body := call(t, app, "/registrations/"+reg.RegistrationID.String()+"/checkout", `{}`)
	if status != fiber.StatusCreated {
		t.Fatalf("checkout status=%d body=%v", status, body)
	}
	if len(gw.calls) != 1 || gw.calls[0].Amount != 80000 || gw.calls[0].ItemName != "Cloud Fundamentals" {
		t.Fatalf("gateway calls = %+v", gw.calls)
	}
	orderID := gw.calls[0].OrderID

	status, body = call(t, app, "/payments/notification", notification(orderID, "settlement", "80000.00", true))
	if status != fiber.StatusOK {
		t.Fatalf("webhook status=%d body=%v", status, body)
	}
	data := body["data"].(map[string]any)
	if data["status"] != "ok" || data["payment_status"] != regModel.PaymentPaid {
		t.Fatalf("webhook data = %v", data)
	}

	var got regModel.RegistrationModel
	if err := db.First(&got, "registration_id = ?", reg.RegistrationID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.RegistrationPaymentStatus != regModel.PaymentPaid || got.RegistrationPaymentDate == nil {
		t.Fatalf("registration payment = %s / %v", got.RegistrationPaymentStatus, got.RegistrationPaymentDate)
	}

	var ev model.PaymentEventModel
	if err := db.First(&ev, "payment_event_order_id = ?", orderID).Error; err != nil {
		t.Fatalf("event: %v", err)
	}
	if ev.PaymentEventStatus != model.EventProcessed || ev.PaymentEventRegistrationID == nil {
		t.Fatalf("event = %+v", ev)
	}

	// paying twice is refused
	status, body = call(t, app, "/registrations/"+reg.RegistrationID.String()+"/checkout", `{}`)
	if status != fiber.StatusConflict || body["error_code"] != "ALREADY_PAID" {
		t.Fatalf("second checkout status=%d body=%v", status, body)
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	app, db, _, _ := newTestApp(t)

	status, _ := call(t, app, "/payments/notification", notification("REG-X-1", "settlement", "80000.00", false))
	if status != fiber.StatusUnauthorized {
		t.Fatalf("status = %d", status)
	}
	var n int64
	db.Model(&model.PaymentEventModel{}).Count(&n)
	if n != 0 {
		t.Fatalf("unsigned notification logged %d events", n)
	}
}

func TestWebhookIgnoresUnknownOrderAndPending(t *testing.T) {
	app, db, _, _ := newTestApp(t)

	status, body := call(t, app, "/payments/notification", notification("REG-UNKNOWN-1", "settlement", "1.00", true))
	if status != fiber.StatusOK || body["data"].(map[string]any)["status"] != "ignored" {
		t.Fatalf("unknown order: status=%d body=%v", status, body)
	}

	status, body = call(t, app, "/payments/notification", notification("REG-UNKNOWN-2", "pending", "1.00", true))
	if status != fiber.StatusOK || body["data"].(map[string]any)["status"] != "ignored" {
		t.Fatalf("pending: status=%d body=%v", status, body)
	}

	var ignored int64
	db.Model(&model.PaymentEventModel{}).Where("payment_event_status = ?", model.EventIgnored).Count(&ignored)
	if ignored != 2 {
		t.Fatalf("ignored events = %d, want 2", ignored)
	}
}

func get(t *testing.T, app *fiber.App, path string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.StatusCode, out
}

func TestPaymentEventLogListing(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	call(t, app, "/payments/notification", notification("REG-AAA-1", "settlement", "1.00", true))
	call(t, app, "/payments/notification", notification("REG-BBB-2", "pending", "1.00", true))

	status, body := get(t, app, "/payments/events?q=bbb")
	if status != fiber.StatusOK {
		t.Fatalf("status=%d body=%v", status, body)
	}
	rows := body["data"].([]any)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	first := rows[0].(map[string]any)
	if first["order_id"] != "REG-BBB-2" || first["status"] != model.EventIgnored {
		t.Fatalf("row = %v", first)
	}

	status, _ = get(t, app, "/payments/events/"+first["id"].(string))
	if status != fiber.StatusOK {
		t.Fatalf("detail status = %d", status)
	}
	status, _ = get(t, app, "/payments/events/00000000-0000-0000-0000-000000000001")
	if status != fiber.StatusNotFound {
		t.Fatalf("missing event status = %d", status)
	}
	status, _ = get(t, app, "/payments/events?start=yesterday")
	if status != fiber.StatusBadRequest {
		t.Fatalf("bad start status = %d", status)
	}
}

func TestSettlementForEarlierOrderStillMarksPaid(t *testing.T) {
	env := newTestEnv(t)
	path := "/registrations/" + env.reg.RegistrationID.String() + "/checkout"

	if status, body := call(t, env.app, path, `{}`); status != fiber.StatusCreated {
		t.Fatalf("first checkout status=%d body=%v", status, body)
	}
	env.now = env.now.Add(time.Minute)
	if status, body := call(t, env.app, path, `{}`); status != fiber.StatusCreated {
		t.Fatalf("second checkout status=%d body=%v", status, body)
	}
	if len(env.gw.calls) != 2 || env.gw.calls[0].OrderID == env.gw.calls[1].OrderID {
		t.Fatalf("gateway calls = %+v", env.gw.calls)
	}

	var orders int64
	env.db.Model(&model.PaymentOrderModel{}).
		Where("payment_order_registration_id = ?", env.reg.RegistrationID).
		Count(&orders)
	if orders != 2 {
		t.Fatalf("orders kept = %d, want 2", orders)
	}

	// the customer finished paying the first order
	first := env.gw.calls[0].OrderID
	status, body := call(t, env.app, "/payments/notification", notification(first, "settlement", "80000.00", true))
	if status != fiber.StatusOK {
		t.Fatalf("webhook status=%d body=%v", status, body)
	}
	if data := body["data"].(map[string]any); data["status"] != "ok" {
		t.Fatalf("webhook data = %v", data)
	}

	var got regModel.RegistrationModel
	if err := env.db.First(&got, "registration_id = ?", env.reg.RegistrationID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.RegistrationPaymentStatus != regModel.PaymentPaid {
		t.Fatalf("payment status = %s, want paid", got.RegistrationPaymentStatus)
	}
}

func TestCheckoutOfOwnedRegistration(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()
	if err := env.db.Model(&regModel.RegistrationModel{}).
		Where("registration_id = ?", env.reg.RegistrationID).
		Update("author_id", owner).Error; err != nil {
		t.Fatalf("bind owner: %v", err)
	}
	path := "/registrations/" + env.reg.RegistrationID.String() + "/checkout"

	cases := []struct {
		name   string
		userID string
		role   string
		want   int
	}{
		{"anonymous", "", "", fiber.StatusUnauthorized},
		{"someone else", uuid.NewString(), "author", fiber.StatusForbidden},
		{"owner", owner.String(), "author", fiber.StatusCreated},
		{"admin", uuid.NewString(), "admin", fiber.StatusCreated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env.now = env.now.Add(time.Second)
			status, body := callAs(t, env.app, path, `{}`, tc.userID, tc.role)
			if status != tc.want {
				t.Fatalf("status=%d body=%v, want %d", status, body, tc.want)
			}
		})
	}
	if len(env.gw.calls) != 2 {
		t.Fatalf("gateway calls = %d, want 2", len(env.gw.calls))
	}
}
