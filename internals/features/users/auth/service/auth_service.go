package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/abassolaiya/phibitechbackend/internals/configs"
	"github.com/abassolaiya/phibitechbackend/internals/constants"
	"github.com/abassolaiya/phibitechbackend/internals/features/users/auth/dto"
	authRepo "github.com/abassolaiya/phibitechbackend/internals/features/users/auth/repository"
	authorModel "github.com/abassolaiya/phibitechbackend/internals/features/users/authors/model"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
	"github.com/abassolaiya/phibitechbackend/internals/helpers/mailer"
)

var (
	ErrInvalidCredentials = fiber.NewError(fiber.StatusUnauthorized, "invalid identifier or password")
	ErrAccountDisabled    = fiber.NewError(fiber.StatusForbidden, "your account has been disabled, contact an admin")
	ErrInvalidGoogleToken = fiber.NewError(fiber.StatusUnauthorized, "invalid Google ID token")
	ErrGoogleDisabled     = fiber.NewError(fiber.StatusServiceUnavailable, "Google sign-in is not configured")
	ErrAuthorNotFound     = fiber.NewError(fiber.StatusNotFound, "author not found")

	ErrEmailTaken    = helper.NewCodedError(fiber.StatusConflict, "EMAIL_TAKEN", "email already registered")
	ErrUsernameTaken = helper.NewCodedError(fiber.StatusConflict, "USERNAME_TAKEN", "username already taken")
	ErrPhoneTaken    = helper.NewCodedError(fiber.StatusConflict, "PHONE_TAKEN", "phone number already registered")
)

// GoogleProfile is the identity asserted by Google, from an ID token or the userinfo endpoint.
type GoogleProfile struct {
	Sub     string
	Email   string
	Name    string
	Picture string
}

// IDTokenVerifier checks a Google ID token against our client id.
type IDTokenVerifier interface {
	Verify(idToken string) (*GoogleProfile, error)
}

type googleIDTokenVerifier struct {
	clientID string
}

func (v googleIDTokenVerifier) Verify(idToken string) (*GoogleProfile, error) {
	ver := googleAuthIDTokenVerifier.Verifier{}
	if err := ver.VerifyIDToken(idToken, []string{v.clientID}); err != nil {
		return nil, err
	}
	claimSet, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return nil, fmt.Errorf("decode id token: %w", err)
	}
	return &GoogleProfile{Sub: claimSet.Sub, Email: claimSet.Email, Name: claimSet.Name}, nil
}

// ClientInfo is stored next to each refresh token.
type ClientInfo struct {
	UserAgent string
	IP        string
}

type LoginResult struct {
	Author *authorModel.AuthorModel
	Tokens TokenPair
}

type AuthService struct {
	DB       *gorm.DB
	JWT      configs.JWTConfig
	Mailer   mailer.Mailer
	Verifier IDTokenVerifier // nil when GOOGLE_CLIENT_ID is unset
	ResetURL string
	Cost     int
	Now      func() time.Time
}

func NewAuthService(db *gorm.DB, cfg *configs.Config, m mailer.Mailer) *AuthService {
	s := &AuthService{
		DB:       db,
		JWT:      cfg.JWT,
		Mailer:   m,
		ResetURL: cfg.PasswordResetURL,
		Cost:     bcrypt.DefaultCost,
		Now:      time.Now,
	}
	if strings.TrimSpace(cfg.Google.ClientID) != "" {
		s.Verifier = googleIDTokenVerifier{clientID: cfg.Google.ClientID}
	}
	return s
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AuthService) hashPassword(pw string) (string, error) {
	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

/* ==========================
   REGISTER
========================== */

func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest, ci ClientInfo) (*LoginResult, error) {
	if err := s.checkAvailable(ctx, req.Email, req.Username, req.PhoneNumber); err != nil {
		return nil, err
	}
	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	a := authorModel.AuthorModel{
		AuthorFullName:    req.FullName,
		AuthorUsername:    req.Username,
		AuthorEmail:       req.Email,
		AuthorPhoneNumber: req.PhoneNumber,
		AuthorPassword:    hash,
		AuthorRole:        constants.RoleAuthor,
		AuthorIsActive:    true,
	}
	if err := authRepo.CreateAuthor(ctx, s.DB, &a); err != nil {
		// lost a race against another sign-up with the same identity
		if helper.IsUniqueViolation(err) {
			return nil, helper.NewCodedError(fiber.StatusConflict, "ACCOUNT_EXISTS", "account already exists")
		}
		return nil, err
	}
	log.Printf("[INFO] author %s registered (%s)", a.AuthorID, a.AuthorUsername)
	return s.login(ctx, s.DB, &a, ci)
}

func (s *AuthService) checkAvailable(ctx context.Context, email, username string, phone *string) error {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&authorModel.AuthorModel{}).
		Where("author_email = ?", email).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrEmailTaken
	}
	taken, err := authRepo.UsernameTaken(ctx, s.DB, username)
	if err != nil {
		return err
	}
	if taken {
		return ErrUsernameTaken
	}
	if phone != nil {
		if err := s.DB.WithContext(ctx).Model(&authorModel.AuthorModel{}).
			Where("author_phone_number = ?", *phone).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrPhoneTaken
		}
	}
	return nil
}

/* ==========================
   LOGIN (username/email + password)
========================== */

func (s *AuthService) Login(ctx context.Context, identifier, password string, ci ClientInfo) (*LoginResult, error) {
	a, err := authRepo.FindAuthorByIdentifier(ctx, s.DB, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	// Google-only accounts have no password to match
	if !a.HasPassword() {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.AuthorPassword), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !a.AuthorIsActive {
		return nil, ErrAccountDisabled
	}
	return s.login(ctx, s.DB, a, ci)
}

/* ==========================
   LOGIN GOOGLE
========================== */

func (s *AuthService) LoginGoogle(ctx context.Context, idToken string, ci ClientInfo) (*LoginResult, error) {
	if s.Verifier == nil {
		return nil, ErrGoogleDisabled
	}
	profile, err := s.Verifier.Verify(strings.TrimSpace(idToken))
	if err != nil {
		log.Printf("[INFO] google id token rejected: %v", err)
		return nil, ErrInvalidGoogleToken
	}
	a, err := s.UpsertGoogleAuthor(ctx, *profile)
	if err != nil {
		return nil, err
	}
	return s.login(ctx, s.DB, a, ci)
}

// UpsertGoogleAuthor finds the account by Google id, then links an existing
// account with the same e-mail, and otherwise creates a passwordless author.
func (s *AuthService) UpsertGoogleAuthor(ctx context.Context, p GoogleProfile) (*authorModel.AuthorModel, error) {
	p.Sub = strings.TrimSpace(p.Sub)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if p.Sub == "" || p.Email == "" {
		return nil, ErrInvalidGoogleToken
	}

	a, err := authRepo.FindAuthorByGoogleID(ctx, s.DB, p.Sub)
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		a, err = s.linkOrCreateGoogleAuthor(ctx, p)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if !a.AuthorIsActive {
		return nil, ErrAccountDisabled
	}
	return a, nil
}

func (s *AuthService) linkOrCreateGoogleAuthor(ctx context.Context, p GoogleProfile) (*authorModel.AuthorModel, error) {
	existing, err := authRepo.FindAuthorByEmail(ctx, s.DB, p.Email)
	if err == nil {
		cols := map[string]any{"author_google_id": p.Sub}
		if existing.AuthorAvatarURL == "" && p.Picture != "" {
			cols["author_avatar_url"] = p.Picture
		}
		if err := authRepo.UpdateAuthorColumns(ctx, s.DB, existing.AuthorID, cols); err != nil {
			return nil, err
		}
		return authRepo.FindAuthorByID(ctx, s.DB, existing.AuthorID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	username, err := s.freeUsername(ctx, p.Email)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = username
	}
	sub := p.Sub
	a := authorModel.AuthorModel{
		AuthorFullName:  name,
		AuthorUsername:  username,
		AuthorEmail:     p.Email,
		AuthorGoogleID:  &sub,
		AuthorAvatarURL: p.Picture,
		AuthorRole:      constants.RoleAuthor,
		AuthorIsActive:  true,
	}
	if err := authRepo.CreateAuthor(ctx, s.DB, &a); err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	log.Printf("[INFO] author %s created from Google account", a.AuthorID)
	return &a, nil
}

// freeUsername derives a username from the e-mail local part, suffixing -2, -3... on collision.
func (s *AuthService) freeUsername(ctx context.Context, email string) (string, error) {
	local := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		local = email[:i]
	}
	base := helper.Slugify(local, 40)
	if len(base) < 3 {
		base = "author"
	}
	candidate := base
	for i := 2; i < 1000; i++ {
		taken, err := authRepo.UsernameTaken(ctx, s.DB, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("no free username for %q", base)
}
