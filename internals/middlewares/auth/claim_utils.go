package auth

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"

	authorModel "github.com/abassolaiya/phibitechbackend/internals/features/users/authors/model"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
	helperAuth "github.com/abassolaiya/phibitechbackend/internals/helpers/auth"
)

// SessionAuthorKey is the session value written by the OAuth callback.
const SessionAuthorKey = "author_id"

type principal struct {
	AuthorID uuid.UUID
	Role     string
	UserName string
	RawToken string
}

func (a *Authenticator) resolve(c *fiber.Ctx) (*principal, error) {
	ctx := c.UserContext()

	if raw := helper.GetRawAccessToken(c); raw != "" {
		bl, err := helperAuth.IsBlacklisted(ctx, a.DB, raw, a.JWTSecret, a.now())
		if err != nil {
			return nil, fmt.Errorf("check blacklist: %w", err)
		}
		if bl {
			return nil, errBlacklisted
		}
		claims, err := helperAuth.ParseToken(raw, a.JWTSecret, helperAuth.TokenTypeAccess, a.now())
		if err != nil {
			return nil, err
		}
		p, err := a.loadActive(c, claims.AuthorID)
		if err != nil {
			return nil, err
		}
		p.RawToken = raw
		return p, nil
	}

	if id, ok := a.sessionAuthorID(c); ok {
		return a.loadActive(c, id)
	}
	return nil, errNoCredentials
}

// loadActive reads role and username from the store so a demotion or a ban applies immediately.
func (a *Authenticator) loadActive(c *fiber.Ctx, id uuid.UUID) (*principal, error) {
	var row authorModel.AuthorModel
	if err := a.DB.WithContext(c.UserContext()).
		Select("author_id", "author_username", "author_role", "author_is_active").
		Where("author_id = ?", id).
		First(&row).Error; err != nil {
		return nil, err
	}
	if !row.AuthorIsActive {
		return nil, errInactive
	}
	return &principal{AuthorID: row.AuthorID, Role: row.AuthorRole, UserName: row.AuthorUsername}, nil
}

func (a *Authenticator) sessionAuthorID(c *fiber.Ctx) (uuid.UUID, bool) {
	if a.Sessions == nil || a.SessionName == "" || c.Cookies(a.SessionName) == "" {
		return uuid.Nil, false
	}
	req, err := adaptor.ConvertRequest(c, false)
	if err != nil {
		return uuid.Nil, false
	}
	sess, err := a.Sessions.Get(req, a.SessionName)
	if err != nil {
		return uuid.Nil, false
	}
	s, _ := sess.Values[SessionAuthorKey].(string)
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func storePrincipal(c *fiber.Ctx, p *principal) {
	c.Locals(helper.LocUserID, p.AuthorID.String())
	c.Locals(helper.LocUserRole, p.Role)
	c.Locals(helper.LocUserName, p.UserName)
	if p.RawToken != "" {
		helper.SetRawAccessToken(c, p.RawToken)
	}
}
