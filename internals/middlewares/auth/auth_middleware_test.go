package auth

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/abassolaiya/phibitechbackend/internals/constants"
	database "github.com/abassolaiya/phibitechbackend/internals/databases"
	authModel "github.com/abassolaiya/phibitechbackend/internals/features/users/auth/model"
	authorModel "github.com/abassolaiya/phibitechbackend/internals/features/users/authors/model"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
	helperAuth "github.com/abassolaiya/phibitechbackend/internals/helpers/auth"
)

const secret = "mw-test-secret"

func setup(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&authorModel.AuthorModel{}, &authModel.TokenBlacklist{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })

	a := &Authenticator{DB: db, JWTSecret: secret}
	whoami := func(c *fiber.Ctx) error {
		if id := helper.OptionalUserID(c); id != nil {
			return c.SendString(id.String() + "/" + helper.GetUserRole(c))
		}
		return c.SendString("anonymous")
	}

	app := fiber.New()
	app.Get("/private", a.AuthMiddleware(), whoami)
	app.Get("/optional", a.OptionalAuthMiddleware(), whoami)
	app.Get("/admin", a.AuthMiddleware(),
		OnlyRolesSlice(constants.RoleErrorAdmin("the dashboard"), constants.AdminOnly), whoami)
	return app, db
}

func seedAuthor(t *testing.T, db *gorm.DB, username, role string, active bool) authorModel.AuthorModel {
	t.Helper()
	a := authorModel.AuthorModel{
		AuthorFullName: username,
		AuthorUsername: username,
		AuthorEmail:    username + "@example.com",
		AuthorRole:     role,
		AuthorIsActive: true,
	}
	if err := db.Create(&a).Error; err != nil {
		t.Fatalf("seed author: %v", err)
	}
	if !active {
		if err := db.Model(&a).Update("author_is_active", false).Error; err != nil {
			t.Fatal(err)
		}
	}
	return a
}

func token(t *testing.T, a authorModel.AuthorModel, role string, ttl time.Duration) string {
	t.Helper()
	raw, err := helperAuth.Sign(helperAuth.BuildAccessClaims(a.AuthorID, role, a.AuthorUsername, time.Now(), ttl), secret)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func do(t *testing.T, app *fiber.App, path, bearer, cookie string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if cookie != "" {
		req.Header.Set("Cookie", helper.AccessTokenCookie+"="+cookie)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

func TestAuthMiddleware(t *testing.T) {
	app, db := setup(t)
	ada := seedAuthor(t, db, "ada", constants.RoleAuthor, true)
	banned := seedAuthor(t, db, "banned", constants.RoleAuthor, false)

	if status, _ := do(t, app, "/private", "", ""); status != fiber.StatusUnauthorized {
		t.Fatalf("no token: %d", status)
	}
	if status, body := do(t, app, "/private", token(t, ada, "author", time.Hour), ""); status != fiber.StatusOK || body != ada.AuthorID.String()+"/author" {
		t.Fatalf("bearer: %d %q", status, body)
	}
	if status, _ := do(t, app, "/private", "", token(t, ada, "author", time.Hour)); status != fiber.StatusOK {
		t.Fatalf("cookie: %d", status)
	}
	if status, _ := do(t, app, "/private", token(t, ada, "author", -time.Hour), ""); status != fiber.StatusUnauthorized {
		t.Fatalf("expired: %d", status)
	}
	if status, _ := do(t, app, "/private", token(t, banned, "author", time.Hour), ""); status != fiber.StatusForbidden {
		t.Fatalf("disabled account: %d", status)
	}

	revoked := token(t, ada, "author", time.Hour)
	if err := helperAuth.Add(context.Background(), db, revoked, secret, time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if status, _ := do(t, app, "/private", revoked, ""); status != fiber.StatusUnauthorized {
		t.Fatalf("blacklisted: %d", status)
	}
}

func TestRoleComesFromStoreNotToken(t *testing.T) {
	app, db := setup(t)
	ada := seedAuthor(t, db, "ada", constants.RoleAuthor, true)
	root := seedAuthor(t, db, "root", constants.RoleAdmin, true)

	// a forged admin claim does not elevate an author
	if status, _ := do(t, app, "/admin", token(t, ada, constants.RoleAdmin, time.Hour), ""); status != fiber.StatusForbidden {
		t.Fatalf("author on admin route: %d", status)
	}
	if status, _ := do(t, app, "/admin", token(t, root, constants.RoleAdmin, time.Hour), ""); status != fiber.StatusOK {
		t.Fatalf("admin: %d", status)
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	app, db := setup(t)
	ada := seedAuthor(t, db, "ada", constants.RoleAuthor, true)

	if status, body := do(t, app, "/optional", "", ""); status != fiber.StatusOK || body != "anonymous" {
		t.Fatalf("anonymous: %d %q", status, body)
	}
	if status, body := do(t, app, "/optional", "not-a-jwt", ""); status != fiber.StatusOK || body != "anonymous" {
		t.Fatalf("garbage token: %d %q", status, body)
	}
	if _, body := do(t, app, "/optional", token(t, ada, "author", time.Hour), ""); body != ada.AuthorID.String()+"/author" {
		t.Fatalf("signed in: %q", body)
	}
}
