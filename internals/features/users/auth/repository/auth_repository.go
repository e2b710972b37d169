package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	authModel "github.com/abassolaiya/phibitechbackend/internals/features/users/auth/model"
	authorModel "github.com/abassolaiya/phibitechbackend/internals/features/users/authors/model"
)

// ========================== AUTHORS ==========================

// FindAuthorByIdentifier matches either the e-mail or the username, case-insensitively.
func FindAuthorByIdentifier(ctx context.Context, db *gorm.DB, identifier string) (*authorModel.AuthorModel, error) {
	id := strings.ToLower(strings.TrimSpace(identifier))
	var a authorModel.AuthorModel
	if err := db.WithContext(ctx).
		Where("author_email = ? OR LOWER(author_username) = ?", id, id).
		First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func FindAuthorByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*authorModel.AuthorModel, error) {
	var a authorModel.AuthorModel
	if err := db.WithContext(ctx).First(&a, "author_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func FindAuthorByEmail(ctx context.Context, db *gorm.DB, email string) (*authorModel.AuthorModel, error) {
	var a authorModel.AuthorModel
	if err := db.WithContext(ctx).
		Where("author_email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func FindAuthorByGoogleID(ctx context.Context, db *gorm.DB, googleID string) (*authorModel.AuthorModel, error) {
	var a authorModel.AuthorModel
	if err := db.WithContext(ctx).Where("author_google_id = ?", googleID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func FindAuthorByResetHash(ctx context.Context, db *gorm.DB, hash string, now time.Time) (*authorModel.AuthorModel, error) {
	var a authorModel.AuthorModel
	if err := db.WithContext(ctx).
		Where("author_reset_token_hash = ? AND author_reset_expires_at > ?", hash, now.UTC()).
		First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// UsernameTaken is used to pick a free username for accounts created through Google.
func UsernameTaken(ctx context.Context, db *gorm.DB, username string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&authorModel.AuthorModel{}).
		Where("LOWER(author_username) = ?", strings.ToLower(username)).
		Count(&n).Error
	return n > 0, err
}

func CreateAuthor(ctx context.Context, db *gorm.DB, a *authorModel.AuthorModel) error {
	return db.WithContext(ctx).Create(a).Error
}

func UpdateAuthorColumns(ctx context.Context, db *gorm.DB, id uuid.UUID, cols map[string]any) error {
	return db.WithContext(ctx).Model(&authorModel.AuthorModel{}).
		Where("author_id = ?", id).
		Updates(cols).Error
}

// UpdateAuthorPassword also clears any pending reset token.
func UpdateAuthorPassword(ctx context.Context, db *gorm.DB, id uuid.UUID, hash string) error {
	return UpdateAuthorColumns(ctx, db, id, map[string]any{
		"author_password":         hash,
		"author_reset_token_hash": nil,
		"author_reset_expires_at": nil,
	})
}

// ========================== REFRESH TOKENS ==========================

func CreateRefreshToken(ctx context.Context, db *gorm.DB, rt *authModel.RefreshToken) error {
	return db.WithContext(ctx).Create(rt).Error
}

// FindActiveRefreshToken returns the unrevoked, unexpired row for hash.
func FindActiveRefreshToken(ctx context.Context, db *gorm.DB, hash string, now time.Time) (*authModel.RefreshToken, error) {
	var rt authModel.RefreshToken
	if err := db.WithContext(ctx).
		Where("token_hash = ? AND revoked_at IS NULL AND expires_at > ?", hash, now.UTC()).
		First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

// RevokeRefreshToken reports whether a live row was revoked; false means it was already used.
func RevokeRefreshToken(ctx context.Context, db *gorm.DB, hash string, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Model(&authModel.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", hash).
		Update("revoked_at", now.UTC())
	return res.RowsAffected > 0, res.Error
}

func RevokeAllRefreshTokens(ctx context.Context, db *gorm.DB, authorID uuid.UUID, now time.Time) error {
	return db.WithContext(ctx).Model(&authModel.RefreshToken{}).
		Where("author_id = ? AND revoked_at IS NULL", authorID).
		Update("revoked_at", now.UTC()).Error
}

// PurgeRefreshTokens deletes rows that can no longer be exchanged.
func PurgeRefreshTokens(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("expires_at <= ? OR revoked_at IS NOT NULL", now.UTC()).
		Delete(&authModel.RefreshToken{})
	return res.RowsAffected, res.Error
}
