package auth

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/sessions"
	"gorm.io/gorm"

	"github.com/abassolaiya/phibitechbackend/internals/configs"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
	helperAuth "github.com/abassolaiya/phibitechbackend/internals/helpers/auth"
)

var (
	errNoCredentials = errors.New("no credentials")
	errBlacklisted   = errors.New("token is blacklisted")
	errInactive      = errors.New("account disabled")
)

// Authenticator resolves the caller from a bearer token, the access_token cookie
// or the OAuth browser session, in that order.
type Authenticator struct {
	DB          *gorm.DB
	JWTSecret   string
	Sessions    sessions.Store
	SessionName string
	Now         func() time.Time
}

func NewAuthenticator(db *gorm.DB, cfg *configs.Config, store sessions.Store) *Authenticator {
	return &Authenticator{
		DB:          db,
		JWTSecret:   cfg.JWT.Secret,
		Sessions:    store,
		SessionName: cfg.Session.Name,
		Now:         time.Now,
	}
}

// AuthMiddleware rejects the request with 401/403 unless a valid principal is found.
func (a *Authenticator) AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := a.resolve(c)
		switch {
		case err == nil:
		case errors.Is(err, errNoCredentials):
			return helper.JsonError(c, fiber.StatusUnauthorized, "unauthorized - no token provided")
		case errors.Is(err, errBlacklisted):
			return helper.JsonError(c, fiber.StatusUnauthorized, "unauthorized - token has been revoked")
		case errors.Is(err, helperAuth.ErrTokenExpired):
			return helper.JsonError(c, fiber.StatusUnauthorized, "unauthorized - token expired")
		case errors.Is(err, helperAuth.ErrTokenInvalid), errors.Is(err, gorm.ErrRecordNotFound):
			return helper.JsonError(c, fiber.StatusUnauthorized, "unauthorized - invalid token")
		case errors.Is(err, errInactive):
			return helper.JsonError(c, fiber.StatusForbidden, "your account has been disabled")
		default:
			log.Printf("[ERROR] AuthMiddleware %s: %v", c.Path(), err)
			return helper.JsonError(c, fiber.StatusInternalServerError, "")
		}

		storePrincipal(c, p)
		return c.Next()
	}
}

func (a *Authenticator) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}
