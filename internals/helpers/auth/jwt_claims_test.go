package helper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	authModel "github.com/abassolaiya/phibitechbackend/internals/features/users/auth/model"
)

const testSecret = "unit-test-secret"

var now = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func TestAccessTokenRoundTrip(t *testing.T) {
	id := uuid.New()
	raw, err := Sign(BuildAccessClaims(id, "admin", "ada", now, time.Hour), testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	c, err := ParseToken(raw, testSecret, TokenTypeAccess, now.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.AuthorID != id || c.Role != "admin" || c.UserName != "ada" || c.Type != TokenTypeAccess {
		t.Fatalf("unexpected claims %+v", c)
	}
}

func TestParseTokenRejections(t *testing.T) {
	id := uuid.New()
	access, _ := Sign(BuildAccessClaims(id, "author", "ada", now, time.Hour), testSecret)
	refresh, _ := Sign(BuildRefreshClaims(id, now, time.Hour), testSecret)

	cases := []struct {
		name   string
		raw    string
		secret string
		typ    string
		at     time.Time
		want   error
	}{
		{"wrong secret", access, "other", TokenTypeAccess, now, ErrTokenInvalid},
		{"refresh used as access", refresh, testSecret, TokenTypeAccess, now, ErrTokenInvalid},
		{"expired", access, testSecret, TokenTypeAccess, now.Add(2 * time.Hour), ErrTokenExpired},
		{"empty", "", testSecret, TokenTypeAccess, now, ErrTokenInvalid},
		{"garbage", "a.b.c", testSecret, TokenTypeAccess, now, ErrTokenInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseToken(tc.raw, tc.secret, tc.typ, tc.at); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}

	// inside the skew window the token still passes
	if _, err := ParseToken(access, testSecret, TokenTypeAccess, now.Add(time.Hour+ExpirySkew/2)); err != nil {
		t.Fatalf("within skew: %v", err)
	}
}

func TestBlacklist(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormLogger.Default.LogMode(gormLogger.Silent)})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.AutoMigrate(&authModel.TokenBlacklist{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	ctx := context.Background()

	if err := Add(ctx, db, "tok-1", testSecret, now.Add(time.Hour)); err != nil {
		t.Fatalf("add: %v", err)
	}
	// a second logout only moves the expiry
	if err := Add(ctx, db, "tok-1", testSecret, now.Add(2*time.Hour)); err != nil {
		t.Fatalf("add again: %v", err)
	}

	if ok, err := IsBlacklisted(ctx, db, "tok-1", testSecret, now); err != nil || !ok {
		t.Fatalf("blacklisted = %v, %v", ok, err)
	}
	if ok, _ := IsBlacklisted(ctx, db, "tok-2", testSecret, now); ok {
		t.Fatal("unrelated token reported blacklisted")
	}

	var stored authModel.TokenBlacklist
	if err := db.First(&stored).Error; err != nil {
		t.Fatal(err)
	}
	if stored.Token == "tok-1" || stored.Token != HashToken("tok-1", testSecret) {
		t.Fatalf("stored token = %q, want its hash", stored.Token)
	}

	n, err := PurgeExpired(ctx, db, now.Add(3*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("purged %d, %v", n, err)
	}
}
