package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	authModel "github.com/abassolaiya/phibitechbackend/internals/features/users/auth/model"
	authRepo "github.com/abassolaiya/phibitechbackend/internals/features/users/auth/repository"
	authorModel "github.com/abassolaiya/phibitechbackend/internals/features/users/authors/model"
	helperAuth "github.com/abassolaiya/phibitechbackend/internals/helpers/auth"
)

var ErrInvalidRefresh = fiber.NewError(fiber.StatusUnauthorized, "refresh token invalid or expired")

type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

func (s *AuthService) login(ctx context.Context, db *gorm.DB, a *authorModel.AuthorModel, ci ClientInfo) (*LoginResult, error) {
	pair, err := s.issueTokens(ctx, db, a, ci)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Author: a, Tokens: pair}, nil
}

// issueTokens signs a new access/refresh pair and stores the refresh token's HMAC.
func (s *AuthService) issueTokens(ctx context.Context, db *gorm.DB, a *authorModel.AuthorModel, ci ClientInfo) (TokenPair, error) {
	now := s.now()
	accessTTL, refreshTTL := s.JWT.AccessTTL, s.JWT.RefreshTTL
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}

	access, err := helperAuth.Sign(
		helperAuth.BuildAccessClaims(a.AuthorID, a.AuthorRole, a.AuthorUsername, now, accessTTL),
		s.JWT.Secret,
	)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := helperAuth.Sign(helperAuth.BuildRefreshClaims(a.AuthorID, now, refreshTTL), s.JWT.RefreshSecret)
	if err != nil {
		return TokenPair{}, err
	}

	if err := authRepo.CreateRefreshToken(ctx, db, &authModel.RefreshToken{
		AuthorID:  a.AuthorID,
		TokenHash: helperAuth.HashToken(refresh, s.JWT.RefreshSecret),
		ExpiresAt: now.Add(refreshTTL),
		UserAgent: strptr(ci.UserAgent),
		IP:        strptr(ci.IP),
	}); err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  now.Add(accessTTL),
		RefreshExpiresAt: now.Add(refreshTTL),
	}, nil
}

// ========================== REFRESH TOKEN ==========================

// Refresh rotates the refresh token: the presented one is revoked and a new pair issued.
// A token that was already rotated is refused.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string, ci ClientInfo) (*LoginResult, error) {
	now := s.now()
	claims, err := helperAuth.ParseToken(rawRefresh, s.JWT.RefreshSecret, helperAuth.TokenTypeRefresh, now)
	if err != nil {
		return nil, ErrInvalidRefresh
	}
	hash := helperAuth.HashToken(rawRefresh, s.JWT.RefreshSecret)

	var out *LoginResult
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rt, err := authRepo.FindActiveRefreshToken(ctx, tx, hash, now)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}
		if rt.AuthorID != claims.AuthorID {
			return ErrInvalidRefresh
		}
		revoked, err := authRepo.RevokeRefreshToken(ctx, tx, hash, now)
		if err != nil {
			return err
		}
		if !revoked {
			return ErrInvalidRefresh
		}

		a, err := authRepo.FindAuthorByID(ctx, tx, claims.AuthorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}
		if !a.AuthorIsActive {
			return ErrAccountDisabled
		}
		out, err = s.login(ctx, tx, a, ci)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ========================== LOGOUT ==========================

// Logout blacklists the access token until it expires and revokes the refresh token.
// Missing or already-invalid tokens are skipped so logout is always idempotent.
func (s *AuthService) Logout(ctx context.Context, rawAccess, rawRefresh string) {
	now := s.now()
	if rawAccess = strings.TrimSpace(rawAccess); rawAccess != "" {
		claims, err := helperAuth.ParseToken(rawAccess, s.JWT.Secret, helperAuth.TokenTypeAccess, now)
		if err == nil {
			if err := helperAuth.Add(ctx, s.DB, rawAccess, s.JWT.Secret, claims.ExpiresAt.Add(helperAuth.ExpirySkew)); err != nil {
				log.Printf("[WARN] failed to blacklist token: %v", err)
			}
		}
	} else {
		log.Println("[INFO] logout without access token, clearing cookies only")
	}

	if rawRefresh = strings.TrimSpace(rawRefresh); rawRefresh != "" {
		if _, err := authRepo.RevokeRefreshToken(ctx, s.DB, helperAuth.HashToken(rawRefresh, s.JWT.RefreshSecret), now); err != nil {
			log.Printf("[WARN] failed to revoke refresh token: %v", err)
		}
	}
}

func strptr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if len(s) > 512 {
		s = s[:512]
	}
	return &s
}
