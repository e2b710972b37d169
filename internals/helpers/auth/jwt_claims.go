package helper

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	// tolerated clock drift between issuer and verifier
	ExpirySkew = 30 * time.Second
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the decoded subset of a token the API relies on.
type Claims struct {
	AuthorID  uuid.UUID
	Role      string
	UserName  string
	Type      string
	ExpiresAt time.Time
}

func BuildAccessClaims(authorID uuid.UUID, role, userName string, now time.Time, ttl time.Duration) jwt.MapClaims {
	return jwt.MapClaims{
		"typ":       TokenTypeAccess,
		"sub":       authorID.String(),
		"id":        authorID.String(),
		"role":      role,
		"user_name": userName,
		"iat":       now.Unix(),
		"exp":       now.Add(ttl).Unix(),
	}
}

func BuildRefreshClaims(authorID uuid.UUID, now time.Time, ttl time.Duration) jwt.MapClaims {
	return jwt.MapClaims{
		"typ": TokenTypeRefresh,
		"sub": authorID.String(),
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
}

func Sign(claims jwt.MapClaims, secret string) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken verifies the HS256 signature, then checks typ and exp against now (with ExpirySkew).
func ParseToken(raw, secret, wantType string, now time.Time) (*Claims, error) {
	if strings.TrimSpace(raw) == "" || secret == "" {
		return nil, ErrTokenInvalid
	}
	claims := jwt.MapClaims{}
	parser := jwt.Parser{SkipClaimsValidation: true}
	if _, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	typ, _ := claims["typ"].(string)
	if wantType != "" && typ != wantType {
		return nil, ErrTokenInvalid
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, ErrTokenInvalid
	}
	expiresAt := time.Unix(int64(exp), 0)
	if now.After(expiresAt.Add(ExpirySkew)) {
		return nil, ErrTokenExpired
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		sub, _ = claims["id"].(string)
	}
	id, err := uuid.Parse(strings.TrimSpace(sub))
	if err != nil || id == uuid.Nil {
		return nil, ErrTokenInvalid
	}

	out := &Claims{AuthorID: id, Type: typ, ExpiresAt: expiresAt}
	out.Role, _ = claims["role"].(string)
	out.UserName, _ = claims["user_name"].(string)
	return out, nil
}
