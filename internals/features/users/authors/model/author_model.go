package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthorModel is an account that can write posts, comment and manage the catalogue (admins).
type AuthorModel struct {
	AuthorID          uuid.UUID `gorm:"column:author_id;type:uuid;primaryKey" json:"author_id"`
	AuthorFullName    string    `gorm:"column:author_full_name;size:120;not null" json:"author_full_name"`
	AuthorUsername    string    `gorm:"column:author_username;size:50;not null;uniqueIndex:uq_authors_username" json:"author_username"`
	AuthorEmail       string    `gorm:"column:author_email;size:255;not null;uniqueIndex:uq_authors_email" json:"author_email"`
	AuthorPhoneNumber *string   `gorm:"column:author_phone_number;size:32;uniqueIndex:uq_authors_phone" json:"author_phone_number,omitempty"`

	// empty for accounts that only sign in through Google
	AuthorPassword string  `gorm:"column:author_password;type:text" json:"-"`
	AuthorGoogleID *string `gorm:"column:author_google_id;size:255;uniqueIndex:uq_authors_google_id" json:"-"`

	AuthorAvatarURL     string `gorm:"column:author_avatar_url;type:text" json:"author_avatar_url"`
	AuthorCoverPhotoURL string `gorm:"column:author_cover_photo_url;type:text" json:"author_cover_photo_url"`
	AuthorBio           string `gorm:"column:author_bio;type:text" json:"author_bio"`

	// payout details, shown to the owner only
	AuthorBankCode      *string `gorm:"column:author_bank_code;size:10" json:"-"`
	AuthorAccountNumber *string `gorm:"column:author_account_number;size:20" json:"-"`
	AuthorRole          string  `gorm:"column:author_role;size:20;not null;default:author" json:"author_role"`
	AuthorIsActive      bool    `gorm:"column:author_is_active;not null;default:true" json:"author_is_active"`

	AuthorResetTokenHash *string    `gorm:"column:author_reset_token_hash;size:64;index" json:"-"`
	AuthorResetExpiresAt *time.Time `gorm:"column:author_reset_expires_at" json:"-"`

	AuthorCreatedAt time.Time `gorm:"column:author_created_at;autoCreateTime" json:"author_created_at"`
	AuthorUpdatedAt time.Time `gorm:"column:author_updated_at;autoUpdateTime" json:"author_updated_at"`
}

func (AuthorModel) TableName() string { return "authors" }

func (a *AuthorModel) BeforeCreate(tx *gorm.DB) error {
	if a.AuthorID == uuid.Nil {
		a.AuthorID = uuid.New()
	}
	if a.AuthorRole == "" {
		a.AuthorRole = "author"
	}
	return nil
}

// HasPassword is false for Google-only accounts.
func (a *AuthorModel) HasPassword() bool { return a.AuthorPassword != "" }
