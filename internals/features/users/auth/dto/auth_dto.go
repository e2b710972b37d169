package dto

import (
	"strings"
	"time"

	authorDTO "github.com/abassolaiya/phibitechbackend/internals/features/users/authors/dto"
)

type RegisterRequest struct {
	FullName    string  `json:"full_name" validate:"required,min=2,max=120"`
	Username    string  `json:"username" validate:"required,min=3,max=50,excludesall= /@"`
	Email       string  `json:"email" validate:"required,email,max=255"`
	Password    string  `json:"password" validate:"required,min=8,max=72"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=32"`
}

func (r *RegisterRequest) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.PhoneNumber != nil {
		p := strings.TrimSpace(*r.PhoneNumber)
		if p == "" {
			r.PhoneNumber = nil
		} else {
			r.PhoneNumber = &p
		}
	}
}

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// LoginResponse mirrors the cookies so non-browser clients can use bearer auth.
type LoginResponse struct {
	User             authorDTO.AuthorResponse `json:"user"`
	AccessToken      string                   `json:"access_token"`
	AccessExpiresAt  time.Time                `json:"access_expires_at"`
	RefreshToken     string                   `json:"refresh_token,omitempty"`
	RefreshExpiresAt time.Time                `json:"refresh_expires_at"`
}
