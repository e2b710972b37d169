package controller

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/abassolaiya/phibitechbackend/internals/features/users/auth/dto"
	"github.com/abassolaiya/phibitechbackend/internals/features/users/auth/service"
	authorDTO "github.com/abassolaiya/phibitechbackend/internals/features/users/authors/dto"
	authorService "github.com/abassolaiya/phibitechbackend/internals/features/users/authors/service"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
)

var validateAuth = validator.New()

type AuthController struct {
	DB           *gorm.DB
	Service      *service.AuthService
	CookieSecure bool
	SessionName  string
}

func NewAuthController(db *gorm.DB, svc *service.AuthService, cookieSecure bool, sessionName string) *AuthController {
	return &AuthController{DB: db, Service: svc, CookieSecure: cookieSecure, SessionName: sessionName}
}

func clientInfo(c *fiber.Ctx) service.ClientInfo {
	return service.ClientInfo{UserAgent: c.Get(fiber.HeaderUserAgent), IP: c.IP()}
}

/* ==========================
   REGISTER / LOGIN
========================== */

// POST /api/auth/register
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Normalize()
	if err := validateAuth.Struct(&req); err != nil {
		return helper.FromFiberError(c, err)
	}

	res, err := ac.Service.Register(c.UserContext(), req, clientInfo(c))
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	ac.setAuthCookies(c, res.Tokens)
	return helper.JsonCreated(c, "registration successful", loginResponse(res))
}

// POST /api/auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Identifier = strings.TrimSpace(req.Identifier)
	if err := validateAuth.Struct(&req); err != nil {
		return helper.FromFiberError(c, err)
	}

	res, err := ac.Service.Login(c.UserContext(), req.Identifier, req.Password, clientInfo(c))
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	ac.setAuthCookies(c, res.Tokens)
	return helper.JsonOK(c, "login successful", loginResponse(res))
}

// POST /api/auth/login-google
func (ac *AuthController) LoginGoogle(c *fiber.Ctx) error {
	var req dto.GoogleLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validateAuth.Struct(&req); err != nil {
		return helper.FromFiberError(c, err)
	}

	res, err := ac.Service.LoginGoogle(c.UserContext(), req.IDToken, clientInfo(c))
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	ac.setAuthCookies(c, res.Tokens)
	return helper.JsonOK(c, "login successful", loginResponse(res))
}

/* ==========================
   TOKEN LIFECYCLE
========================== */

// POST /api/auth/refresh-token
// Browsers send the refresh_token cookie (plus X-CSRF-Token); other clients post {"refresh_token": "..."}.
func (ac *AuthController) RefreshToken(c *fiber.Ctx) error {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if len(c.Body()) > 0 {
		_ = c.BodyParser(&body)
	}
	raw := strings.TrimSpace(body.RefreshToken)
	if raw == "" {
		raw = helper.GetRefreshTokenFromCookie(c)
		if raw == "" {
			return helper.JsonError(c, fiber.StatusUnauthorized, "refresh token missing")
		}
		if err := helper.CheckCSRFCookieHeader(c); err != nil {
			return helper.FromFiberError(c, err)
		}
	}

	res, err := ac.Service.Refresh(c.UserContext(), raw, clientInfo(c))
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	ac.setAuthCookies(c, res.Tokens)
	return helper.JsonOK(c, "token refreshed", loginResponse(res))
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	cookieAT := strings.TrimSpace(c.Cookies(helper.AccessTokenCookie))
	bearer := strings.HasPrefix(strings.TrimSpace(c.Get(fiber.HeaderAuthorization)), "Bearer ")
	if cookieAT != "" && !bearer {
		if err := helper.CheckCSRFCookieHeader(c); err != nil {
			return helper.FromFiberError(c, err)
		}
	}

	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if len(c.Body()) > 0 {
		_ = c.BodyParser(&body)
	}
	refresh := strings.TrimSpace(body.RefreshToken)
	if refresh == "" {
		refresh = helper.GetRefreshTokenFromCookie(c)
	}

	ac.Service.Logout(c.UserContext(), helper.GetRawAccessToken(c), refresh)
	ac.clearAuthCookies(c)
	return helper.JsonOK(c, "logout successful", nil)
}

/* ==========================
   PASSWORD
========================== */

// POST /api/auth/change-password
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	uid, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validateAuth.Struct(&req); err != nil {
		return helper.FromFiberError(c, err)
	}

	if err := ac.Service.ChangePassword(c.UserContext(), uid, req.OldPassword, req.NewPassword); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "password changed, other sessions were signed out", nil)
}

// POST /api/auth/forgot-password
func (ac *AuthController) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateAuth.Struct(&req); err != nil {
		return helper.FromFiberError(c, err)
	}

	if err := ac.Service.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "if the e-mail is registered, a reset link has been sent", nil)
}

// POST /api/auth/reset-password
func (ac *AuthController) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validateAuth.Struct(&req); err != nil {
		return helper.FromFiberError(c, err)
	}

	if err := ac.Service.ResetPassword(c.UserContext(), req.Token, req.NewPassword); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "password has been reset, please sign in", nil)
}

/* ==========================
   ME
========================== */

// GET /api/auth/me
func (ac *AuthController) Me(c *fiber.Ctx) error {
	uid, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	a, err := authorService.GetAuthor(c.UserContext(), ac.DB, uid)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "profile fetched", authorDTO.ToAuthorResponse(*a))
}

// PUT /api/auth/me
func (ac *AuthController) UpdateMe(c *fiber.Ctx) error {
	uid, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req authorDTO.UpdateMeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Normalize()
	if err := validateAuth.Struct(&req); err != nil {
		return helper.FromFiberError(c, err)
	}

	a, err := authorService.UpdateProfile(c.UserContext(), ac.DB, uid, req)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "profile updated", authorDTO.ToAuthorResponse(*a))
}

// PUT /api/auth/me/bank-details
func (ac *AuthController) UpdateBankDetails(c *fiber.Ctx) error {
	uid, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req authorDTO.BankDetailsRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Normalize()
	if err := validateAuth.Struct(&req); err != nil {
		return helper.FromFiberError(c, err)
	}

	a, err := authorService.SetBankDetails(c.UserContext(), ac.DB, uid, req)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "bank details saved", authorDTO.ToAuthorResponse(*a))
}

/* ==========================
   COOKIES
========================== */

func loginResponse(res *service.LoginResult) dto.LoginResponse {
	return dto.LoginResponse{
		User:             authorDTO.ToAuthorResponse(*res.Author),
		AccessToken:      res.Tokens.AccessToken,
		AccessExpiresAt:  res.Tokens.AccessExpiresAt,
		RefreshToken:     res.Tokens.RefreshToken,
		RefreshExpiresAt: res.Tokens.RefreshExpiresAt,
	}
}

func (ac *AuthController) sameSite() string {
	if ac.CookieSecure {
		return "None"
	}
	return "Lax"
}

func (ac *AuthController) setAuthCookies(c *fiber.Ctx, t service.TokenPair) {
	c.Cookie(&fiber.Cookie{
		Name:     helper.AccessTokenCookie,
		Value:    t.AccessToken,
		HTTPOnly: true,
		Secure:   ac.CookieSecure,
		SameSite: ac.sameSite(),
		Path:     "/",
		Expires:  t.AccessExpiresAt,
	})
	c.Cookie(&fiber.Cookie{
		Name:     helper.RefreshCookie,
		Value:    t.RefreshToken,
		HTTPOnly: true,
		Secure:   ac.CookieSecure,
		SameSite: ac.sameSite(),
		Path:     "/",
		Expires:  t.RefreshExpiresAt,
	})
	// double-submit token, readable by the SPA
	c.Cookie(&fiber.Cookie{
		Name:     helper.CSRFCookie,
		Value:    randomHex(16),
		HTTPOnly: false,
		Secure:   ac.CookieSecure,
		SameSite: ac.sameSite(),
		Path:     "/",
		Expires:  t.RefreshExpiresAt,
	})
}

func (ac *AuthController) clearAuthCookies(c *fiber.Ctx) {
	expired := time.Now().Add(-time.Hour)
	names := []string{helper.AccessTokenCookie, helper.RefreshCookie, helper.CSRFCookie}
	if ac.SessionName != "" {
		names = append(names, ac.SessionName)
	}
	for _, name := range names {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			HTTPOnly: name != helper.CSRFCookie,
			Secure:   ac.CookieSecure,
			SameSite: ac.sameSite(),
			Path:     "/",
			Expires:  expired,
			MaxAge:   -1,
		})
	}
}

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
