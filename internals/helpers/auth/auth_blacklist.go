package helper

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	authModel "github.com/abassolaiya/phibitechbackend/internals/features/users/auth/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HashToken is the hex HMAC-SHA256 of a raw token. Raw tokens never reach the database.
func HashToken(raw, secret string) string {
	m := hmac.New(sha256.New, []byte(secret))
	_, _ = m.Write([]byte(raw))
	return hex.EncodeToString(m.Sum(nil))
}

// Add blacklists rawAccessToken until expiresAt. Repeated calls only move the expiry.
func Add(ctx context.Context, db *gorm.DB, rawAccessToken, jwtSecret string, expiresAt time.Time) error {
	if db == nil || strings.TrimSpace(rawAccessToken) == "" || strings.TrimSpace(jwtSecret) == "" {
		return nil
	}
	row := authModel.TokenBlacklist{
		Token:     HashToken(rawAccessToken, jwtSecret),
		ExpiredAt: expiresAt.UTC(),
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token"}},
			DoUpdates: clause.AssignmentColumns([]string{"expired_at"}),
		}).
		Create(&row).Error
}

// IsBlacklisted reports whether an unexpired blacklist row exists for the token.
func IsBlacklisted(ctx context.Context, db *gorm.DB, rawAccessToken, jwtSecret string, now time.Time) (bool, error) {
	if db == nil || strings.TrimSpace(rawAccessToken) == "" || strings.TrimSpace(jwtSecret) == "" {
		return false, nil
	}
	var n int64
	err := db.WithContext(ctx).
		Model(&authModel.TokenBlacklist{}).
		Where("token = ? AND expired_at > ?", HashToken(rawAccessToken, jwtSecret), now.UTC()).
		Limit(1).
		Count(&n).Error
	return n > 0, err
}

// PurgeExpired hard-deletes rows whose token could no longer be used anyway.
func PurgeExpired(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("expired_at <= ?", now.UTC()).
		Delete(&authModel.TokenBlacklist{})
	return res.RowsAffected, res.Error
}
