package controller

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/abassolaiya/phibitechbackend/internals/constants"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
	helperOSS "github.com/abassolaiya/phibitechbackend/internals/helpers/oss"
)

// folders a caller may target; anything else lands in the generic one
var uploadFolders = map[string]string{
	"posts":   constants.MediaDirPosts,
	"uploads": constants.MediaDirGeneric,
}

type MediaController struct {
	Uploader helperOSS.Uploader
}

func NewMediaController(up helperOSS.Uploader) *MediaController {
	return &MediaController{Uploader: up}
}

// POST /api/media (multipart: image|file, optional folder=posts|uploads)
func (ctl *MediaController) Upload(c *fiber.Ctx) error {
	fh, err := helperOSS.GetImageFile(c, "image", "file")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if fh == nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "image is required")
	}
	if constants.DetectFileTypeFromExt(fh.Filename) != constants.FileTypeImage {
		return helper.JsonError(c, fiber.StatusBadRequest, "only jpg, png or webp images are accepted")
	}

	dir, ok := uploadFolders[strings.ToLower(strings.TrimSpace(c.FormValue("folder")))]
	if !ok {
		dir = constants.MediaDirGeneric
	}

	url, err := ctl.Uploader.UploadImage(c.UserContext(), fh, dir)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if uid := helper.OptionalUserID(c); uid != nil {
		log.Printf("[INFO] media uploaded by %s: %s", uid, url)
	}
	return helper.JsonCreated(c, "image uploaded", fiber.Map{
		"url":      url,
		"folder":   dir,
		"filename": fh.Filename,
		"size":     fh.Size,
	})
}
