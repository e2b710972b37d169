package service

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abassolaiya/phibitechbackend/internals/features/users/authors/dto"
	"github.com/abassolaiya/phibitechbackend/internals/features/users/authors/model"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
)

// posts live in the blogs feature, which itself depends on this package
const postsTable = "blog_posts"

var (
	ErrAuthorNotFound = fiber.NewError(fiber.StatusNotFound, "author not found")
	ErrPhoneTaken     = helper.NewCodedError(fiber.StatusConflict, "PHONE_TAKEN", "phone number already registered")
)

func GetAuthor(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.AuthorModel, error) {
	var a model.AuthorModel
	if err := db.WithContext(ctx).First(&a, "author_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuthorNotFound
		}
		return nil, err
	}
	return &a, nil
}

// PublicProfile resolves an active author by username; disabled accounts look like missing ones.
func PublicProfile(ctx context.Context, db *gorm.DB, username string) (*dto.PublicProfile, error) {
	var a model.AuthorModel
	err := db.WithContext(ctx).
		Where("LOWER(author_username) = ? AND author_is_active = ?", strings.ToLower(strings.TrimSpace(username)), true).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAuthorNotFound
	}
	if err != nil {
		return nil, err
	}

	var posts int64
	if err := db.WithContext(ctx).Table(postsTable).
		Where("blog_post_author_id = ? AND blog_post_is_published = ?", a.AuthorID, true).
		Count(&posts).Error; err != nil {
		return nil, err
	}
	return &dto.PublicProfile{
		PublicAuthor:  *dto.ToPublicAuthor(&a),
		CoverPhotoURL: a.AuthorCoverPhotoURL,
		PostCount:     posts,
		JoinedAt:      a.AuthorCreatedAt,
	}, nil
}

func UpdateProfile(ctx context.Context, db *gorm.DB, id uuid.UUID, req dto.UpdateMeRequest) (*model.AuthorModel, error) {
	if _, err := GetAuthor(ctx, db, id); err != nil {
		return nil, err
	}
	if cols := req.Columns(); len(cols) > 0 {
		if err := db.WithContext(ctx).Model(&model.AuthorModel{}).
			Where("author_id = ?", id).
			Updates(cols).Error; err != nil {
			if helper.IsUniqueViolation(err) {
				return nil, ErrPhoneTaken
			}
			return nil, err
		}
	}
	return GetAuthor(ctx, db, id)
}

// SetBankDetails overwrites the payout details.
func SetBankDetails(ctx context.Context, db *gorm.DB, id uuid.UUID, req dto.BankDetailsRequest) (*model.AuthorModel, error) {
	res := db.WithContext(ctx).Model(&model.AuthorModel{}).
		Where("author_id = ?", id).
		Updates(map[string]any{
			"author_bank_code":      req.BankCode,
			"author_account_number": req.AccountNumber,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrAuthorNotFound
	}
	return GetAuthor(ctx, db, id)
}

// SetAvatar stores the new URL and returns the previous one so the caller can delete it.
func SetAvatar(ctx context.Context, db *gorm.DB, id uuid.UUID, url string) (*model.AuthorModel, string, error) {
	return setImage(ctx, db, id, "author_avatar_url", url)
}

// SetCoverPhoto is SetAvatar for the profile cover.
func SetCoverPhoto(ctx context.Context, db *gorm.DB, id uuid.UUID, url string) (*model.AuthorModel, string, error) {
	return setImage(ctx, db, id, "author_cover_photo_url", url)
}

func setImage(ctx context.Context, db *gorm.DB, id uuid.UUID, column, url string) (*model.AuthorModel, string, error) {
	a, err := GetAuthor(ctx, db, id)
	if err != nil {
		return nil, "", err
	}
	var old string
	switch column {
	case "author_avatar_url":
		old, a.AuthorAvatarURL = a.AuthorAvatarURL, url
	case "author_cover_photo_url":
		old, a.AuthorCoverPhotoURL = a.AuthorCoverPhotoURL, url
	}
	if err := db.WithContext(ctx).Model(&model.AuthorModel{}).
		Where("author_id = ?", id).
		Update(column, url).Error; err != nil {
		return nil, "", err
	}
	return a, old, nil
}
