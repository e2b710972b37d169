package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abassolaiya/phibitechbackend/internals/features/users/authors/model"
)

// AuthorResponse is what the account owner sees about themselves.
type AuthorResponse struct {
	ID            uuid.UUID `json:"id"`
	FullName      string    `json:"full_name"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	PhoneNumber   *string   `json:"phone_number,omitempty"`
	AvatarURL     string    `json:"avatar_url"`
	CoverPhotoURL string    `json:"cover_photo_url"`
	Bio           string    `json:"bio"`
	BankCode      *string   `json:"bank_code,omitempty"`
	AccountNumber *string   `json:"account_number,omitempty"`
	Role          string    `json:"role"`
	IsActive      bool      `json:"is_active"`
	HasPassword   bool      `json:"has_password"`
	GoogleLinked  bool      `json:"google_linked"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func ToAuthorResponse(a model.AuthorModel) AuthorResponse {
	return AuthorResponse{
		ID:            a.AuthorID,
		FullName:      a.AuthorFullName,
		Username:      a.AuthorUsername,
		Email:         a.AuthorEmail,
		PhoneNumber:   a.AuthorPhoneNumber,
		AvatarURL:     a.AuthorAvatarURL,
		CoverPhotoURL: a.AuthorCoverPhotoURL,
		Bio:           a.AuthorBio,
		BankCode:      a.AuthorBankCode,
		AccountNumber: a.AuthorAccountNumber,
		Role:          a.AuthorRole,
		IsActive:      a.AuthorIsActive,
		HasPassword:   a.HasPassword(),
		GoogleLinked:  a.AuthorGoogleID != nil,
		CreatedAt:     a.AuthorCreatedAt,
		UpdatedAt:     a.AuthorUpdatedAt,
	}
}

// PublicAuthor is embedded in posts, comments and replies, and served by /authors/:username.
type PublicAuthor struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url"`
	Bio       string    `json:"bio,omitempty"`
}

func ToPublicAuthor(a *model.AuthorModel) *PublicAuthor {
	if a == nil {
		return nil
	}
	return &PublicAuthor{
		ID:        a.AuthorID,
		FullName:  a.AuthorFullName,
		Username:  a.AuthorUsername,
		AvatarURL: a.AuthorAvatarURL,
		Bio:       a.AuthorBio,
	}
}

// PublicProfile adds the author's published post count.
type PublicProfile struct {
	PublicAuthor
	CoverPhotoURL string    `json:"cover_photo_url,omitempty"`
	PostCount     int64     `json:"post_count"`
	JoinedAt      time.Time `json:"joined_at"`
}

// UpdateMeRequest is a partial profile update; nil fields are left alone.
type UpdateMeRequest struct {
	FullName    *string `json:"full_name" validate:"omitempty,min=2,max=120"`
	Bio         *string `json:"bio" validate:"omitempty,max=2000"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=32"`
}

func (r *UpdateMeRequest) Normalize() {
	for _, p := range []*string{r.FullName, r.Bio, r.PhoneNumber} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
}

// Columns maps the set fields onto author columns. An empty phone clears it.
func (r UpdateMeRequest) Columns() map[string]any {
	cols := map[string]any{}
	if r.FullName != nil {
		cols["author_full_name"] = *r.FullName
	}
	if r.Bio != nil {
		cols["author_bio"] = *r.Bio
	}
	if r.PhoneNumber != nil {
		if *r.PhoneNumber == "" {
			cols["author_phone_number"] = nil
		} else {
			cols["author_phone_number"] = *r.PhoneNumber
		}
	}
	return cols
}

// BankDetailsRequest sets where payouts go.
type BankDetailsRequest struct {
	BankCode      string `json:"bank_code" validate:"required,alphanum,min=3,max=10"`
	AccountNumber string `json:"account_number" validate:"required,numeric,min=6,max=20"`
}

func (r *BankDetailsRequest) Normalize() {
	r.BankCode = strings.ToUpper(strings.TrimSpace(r.BankCode))
	r.AccountNumber = strings.ReplaceAll(strings.TrimSpace(r.AccountNumber), " ", "")
}
