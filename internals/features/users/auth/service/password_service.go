package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	authRepo "github.com/abassolaiya/phibitechbackend/internals/features/users/auth/repository"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
	"github.com/abassolaiya/phibitechbackend/internals/helpers/mailer"
)

const ResetTokenTTL = 10 * time.Minute

var (
	ErrWrongPassword     = helper.NewCodedError(fiber.StatusBadRequest, "WRONG_PASSWORD", "old password is incorrect")
	ErrSamePassword      = helper.NewCodedError(fiber.StatusBadRequest, "SAME_PASSWORD", "new password must differ from the old one")
	ErrResetTokenInvalid = helper.NewCodedError(fiber.StatusBadRequest, "RESET_TOKEN_INVALID", "reset token is invalid or has expired")
)

// ChangePassword verifies the old password (unless the account never had one) and
// signs out every other device by revoking all refresh tokens.
func (s *AuthService) ChangePassword(ctx context.Context, authorID uuid.UUID, oldPassword, newPassword string) error {
	a, err := authRepo.FindAuthorByID(ctx, s.DB, authorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAuthorNotFound
		}
		return err
	}
	if a.HasPassword() {
		if bcrypt.CompareHashAndPassword([]byte(a.AuthorPassword), []byte(oldPassword)) != nil {
			return ErrWrongPassword
		}
		if oldPassword == newPassword {
			return ErrSamePassword
		}
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := authRepo.UpdateAuthorPassword(ctx, tx, a.AuthorID, hash); err != nil {
			return err
		}
		return authRepo.RevokeAllRefreshTokens(ctx, tx, a.AuthorID, s.now())
	})
}

// ForgotPassword mails a one-time reset link. Unknown or disabled accounts are
// silently ignored so the endpoint cannot be used to discover registered e-mails.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	a, err := authRepo.FindAuthorByEmail(ctx, s.DB, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[INFO] forgot-password for unknown email")
			return nil
		}
		return err
	}
	if !a.AuthorIsActive {
		return nil
	}

	raw, err := newResetToken()
	if err != nil {
		return err
	}
	expires := s.now().Add(ResetTokenTTL)
	if err := authRepo.UpdateAuthorColumns(ctx, s.DB, a.AuthorID, map[string]any{
		"author_reset_token_hash": hashResetToken(raw),
		"author_reset_expires_at": expires,
	}); err != nil {
		return err
	}

	if s.Mailer == nil {
		return nil
	}
	msg := mailer.Message{
		To:      []string{a.AuthorEmail},
		Subject: "Reset your Phibitech password",
		TextBody: fmt.Sprintf(
			"Hi %s,\r\n\r\nUse the link below to choose a new password. It expires in %d minutes.\r\n\r\n%s\r\n\r\n"+
				"If you did not ask for this, ignore this e-mail.\r\n",
			a.AuthorFullName, int(ResetTokenTTL.Minutes()), s.resetLink(raw),
		),
	}
	if err := s.Mailer.Send(ctx, msg); err != nil {
		log.Printf("[WARN] reset mail to %s: %v", a.AuthorEmail, err)
	}
	return nil
}

// ResetPassword consumes the token; it cannot be used twice.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return ErrResetTokenInvalid
	}
	a, err := authRepo.FindAuthorByResetHash(ctx, s.DB, hashResetToken(rawToken), s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetTokenInvalid
		}
		return err
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := authRepo.UpdateAuthorPassword(ctx, tx, a.AuthorID, hash); err != nil {
			return err
		}
		return authRepo.RevokeAllRefreshTokens(ctx, tx, a.AuthorID, s.now())
	})
}

func (s *AuthService) resetLink(raw string) string {
	base := strings.TrimSpace(s.ResetURL)
	if base == "" {
		return raw
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "token=" + url.QueryEscape(raw)
}

func newResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
