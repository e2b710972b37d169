package controller

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abassolaiya/phibitechbackend/internals/constants"
	"github.com/abassolaiya/phibitechbackend/internals/features/users/authors/dto"
	"github.com/abassolaiya/phibitechbackend/internals/features/users/authors/model"
	"github.com/abassolaiya/phibitechbackend/internals/features/users/authors/service"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
	helperOSS "github.com/abassolaiya/phibitechbackend/internals/helpers/oss"
)

type AuthorController struct {
	DB       *gorm.DB
	Uploader helperOSS.Uploader
}

func NewAuthorController(db *gorm.DB, up helperOSS.Uploader) *AuthorController {
	return &AuthorController{DB: db, Uploader: up}
}

// GET /api/authors/:username
func (ctl *AuthorController) GetPublicProfile(c *fiber.Ctx) error {
	p, err := service.PublicProfile(c.UserContext(), ctl.DB, c.Params("username"))
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "author fetched", p)
}

// PUT /api/authors/me/avatar (multipart: avatar|image|file)
func (ctl *AuthorController) UploadAvatar(c *fiber.Ctx) error {
	return ctl.replaceImage(c, "avatar", constants.MediaDirAvatars, service.SetAvatar)
}

// PUT /api/authors/me/cover (multipart: cover|image|file)
func (ctl *AuthorController) UploadCoverPhoto(c *fiber.Ctx) error {
	return ctl.replaceImage(c, "cover", constants.MediaDirAuthorCovers, service.SetCoverPhoto)
}

type imageSetter func(ctx context.Context, db *gorm.DB, id uuid.UUID, url string) (*model.AuthorModel, string, error)

// replaceImage uploads the new image, stores it and removes the one it replaced.
func (ctl *AuthorController) replaceImage(c *fiber.Ctx, field, dir string, set imageSetter) error {
	uid, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	fh, err := helperOSS.GetImageFile(c, field, "image", "file")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if fh == nil {
		return helper.JsonError(c, fiber.StatusBadRequest, field+" image is required")
	}
	if constants.DetectFileTypeFromExt(fh.Filename) != constants.FileTypeImage {
		return helper.JsonError(c, fiber.StatusBadRequest, field+" must be a jpg, png or webp image")
	}

	url, err := ctl.Uploader.UploadImage(c.UserContext(), fh, dir)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	a, old, err := set(c.UserContext(), ctl.DB, uid, url)
	if err != nil {
		_ = ctl.Uploader.DeleteByPublicURL(c.UserContext(), url)
		return helper.FromFiberError(c, err)
	}
	if old != "" && old != url {
		if err := ctl.Uploader.DeleteByPublicURL(c.UserContext(), old); err != nil {
			log.Printf("[WARN] delete previous %s of %s: %v", field, a.AuthorID, err)
		}
	}
	return helper.JsonUpdated(c, field+" updated", dto.ToAuthorResponse(*a))
}
