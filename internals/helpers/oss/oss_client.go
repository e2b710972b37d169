package helper

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/abassolaiya/phibitechbackend/internals/configs"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
)

var ErrMediaDisabled = fiber.NewError(fiber.StatusServiceUnavailable, "media hosting is not configured")

// Uploader stores images on the media host and returns their public URL.
type Uploader interface {
	UploadImage(ctx context.Context, fh *multipart.FileHeader, dir string) (string, error)
	DeleteByPublicURL(ctx context.Context, publicURL string) error
}

/* =======================================================================
   OSS Service
======================================================================= */

type OSSService struct {
	Bucket     *oss.Bucket
	Endpoint   string
	BucketName string
	PublicBase string
	MaxBytes   int64
	MaxWidth   int
	Quality    float32
}

// NewUploader returns the OSS uploader when configured, a disabled one otherwise.
func NewUploader(cfg configs.OSSConfig) (Uploader, error) {
	if !cfg.Enabled() {
		log.Println("[OSS] not configured, uploads disabled")
		return DisabledUploader{}, nil
	}
	return NewOSSService(cfg)
}

func NewOSSService(cfg configs.OSSConfig) (*OSSService, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	bkt, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}

	if loc, err := client.GetBucketLocation(cfg.Bucket); err != nil {
		var se oss.ServiceError
		if errors.As(err, &se) && se.StatusCode == http.StatusForbidden {
			log.Printf("[OSS] skip location check, access denied (bucket=%s)", cfg.Bucket)
		} else {
			return nil, fmt.Errorf("verify bucket: %w", err)
		}
	} else {
		log.Printf("[OSS] bucket %s location: %s", cfg.Bucket, loc)
	}

	maxMB := cfg.MaxUploadMB
	if maxMB <= 0 {
		maxMB = 5
	}
	return &OSSService{
		Bucket:     bkt,
		Endpoint:   cfg.Endpoint,
		BucketName: cfg.Bucket,
		PublicBase: strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/"),
		MaxBytes:   int64(maxMB) * 1024 * 1024,
		MaxWidth:   cfg.MaxWidth,
		Quality:    cfg.WebPQuality,
	}, nil
}

// UploadImage re-encodes the file as WebP (downscaled to MaxWidth) and uploads it under dir.
func (s *OSSService) UploadImage(ctx context.Context, fh *multipart.FileHeader, dir string) (string, error) {
	if fh == nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "file is required")
	}
	if s.MaxBytes > 0 && fh.Size > s.MaxBytes {
		return "", fiber.NewError(fiber.StatusRequestEntityTooLarge, fmt.Sprintf("file too large (max %d bytes)", s.MaxBytes))
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer src.Close()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(src); err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}

	data, err := ConvertToWebP(buf.Bytes(), fh.Filename, s.MaxWidth, s.Quality)
	if err != nil {
		return "", err
	}

	base := strings.TrimSuffix(fh.Filename, filepath.Ext(fh.Filename))
	key := BuildObjectKey(dir, base+".webp", time.Now())

	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType("image/webp"),
		oss.ContentDisposition("inline"),
		oss.CacheControl("public, max-age=31536000, immutable"),
	}
	if err := s.Bucket.PutObject(key, bytes.NewReader(data), opts...); err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return s.PublicURL(key), nil
}

// DeleteByPublicURL removes the object behind publicURL. URLs that point
// elsewhere (e.g. Google profile pictures) are left alone.
func (s *OSSService) DeleteByPublicURL(ctx context.Context, publicURL string) error {
	if !s.OwnsURL(publicURL) {
		return nil
	}
	key, err := ExtractKeyFromPublicURL(s.PublicBase, publicURL)
	if err != nil {
		return err
	}
	return s.Bucket.DeleteObject(key, oss.WithContext(ctx))
}

func (s *OSSService) OwnsURL(publicURL string) bool {
	if publicURL = strings.TrimSpace(publicURL); publicURL == "" {
		return false
	}
	if s.PublicBase != "" && strings.HasPrefix(publicURL, strings.TrimRight(s.PublicBase, "/")+"/") {
		return true
	}
	return strings.HasPrefix(publicURL, strings.TrimSuffix(s.PublicURL("x"), "x"))
}

func (s *OSSService) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	if s.PublicBase != "" {
		return s.PublicBase + "/" + key
	}
	end := strings.TrimPrefix(strings.TrimPrefix(s.Endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.BucketName, end, key)
}

// DisabledUploader answers 503 so the rest of the API keeps working without a media host.
type DisabledUploader struct{}

func (DisabledUploader) UploadImage(context.Context, *multipart.FileHeader, string) (string, error) {
	return "", ErrMediaDisabled
}

func (DisabledUploader) DeleteByPublicURL(context.Context, string) error { return nil }

/* =======================================================================
   Image pipeline
======================================================================= */

var errUnsupportedImage = fiber.NewError(fiber.StatusUnsupportedMediaType, "unsupported image format (use jpg/png/webp)")

func decodeImage(all []byte, filename string) (image.Image, error) {
	if len(all) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "empty file")
	}
	head := all
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)

	kind := ""
	switch {
	case strings.Contains(ct, "jpeg"):
		kind = "jpeg"
	case strings.Contains(ct, "png"):
		kind = "png"
	case strings.Contains(ct, "webp"):
		kind = "webp"
	default:
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".jpg", ".jpeg":
			kind = "jpeg"
		case ".png":
			kind = "png"
		case ".webp":
			kind = "webp"
		}
	}

	r := bytes.NewReader(all)
	switch kind {
	case "jpeg":
		return jpeg.Decode(r)
	case "png":
		return png.Decode(r)
	case "webp":
		return webp.Decode(r)
	default:
		return nil, errUnsupportedImage
	}
}

// Downscale keeps the aspect ratio and never upsizes. maxW <= 0 is a no-op.
func Downscale(img image.Image, maxW int) image.Image {
	if maxW <= 0 || img.Bounds().Dx() <= maxW {
		return img
	}
	return imaging.Resize(img, maxW, 0, imaging.CatmullRom)
}

// ConvertToWebP decodes jpeg/png/webp bytes and re-encodes them as lossy WebP.
func ConvertToWebP(all []byte, filename string, maxW int, quality float32) ([]byte, error) {
	img, err := decodeImage(all, filename)
	if err != nil {
		return nil, err
	}
	if quality <= 0 {
		quality = 80
	}
	out := new(bytes.Buffer)
	if err := webp.Encode(out, Downscale(img, maxW), &webp.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return out.Bytes(), nil
}

/* =======================================================================
   Key utils
======================================================================= */

// BuildObjectKey yields dir/<slug>_<yyyymmdd_hhmmss>_<rand><ext>.
func BuildObjectKey(dir, filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := slugifyName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	key := fmt.Sprintf("%s_%s_%s%s", base, now.Format("20060102_150405"), randHex(3), ext)
	if dir = strings.Trim(dir, "/"); dir != "" {
		key = dir + "/" + key
	}
	return key
}

func ExtractKeyFromPublicURL(publicBase, publicURL string) (string, error) {
	if strings.TrimSpace(publicURL) == "" {
		return "", errors.New("empty url")
	}
	if publicBase != "" {
		base := strings.TrimRight(publicBase, "/") + "/"
		if strings.HasPrefix(publicURL, base) {
			return strings.TrimPrefix(publicURL, base), nil
		}
	}
	u := publicURL
	if i := strings.Index(u, "://"); i >= 0 {
		u = u[i+3:]
	}
	if i := strings.Index(u, "/"); i >= 0 && i < len(u)-1 {
		return u[i+1:], nil
	}
	return "", fmt.Errorf("cannot extract key from url: %s", publicURL)
}

func slugifyName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "-", "_", "-").Replace(s)
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return -1
	}, s)
	if s == "" {
		return "file"
	}
	return s
}

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

/* =======================================================================
   Fiber helpers
======================================================================= */

func IsMultipart(c *fiber.Ctx) bool {
	ct := strings.ToLower(strings.TrimSpace(c.Get(fiber.HeaderContentType)))
	return strings.HasPrefix(ct, "multipart/form-data")
}

var defaultImageFields = []string{"image", "file", "photo", "cover", "avatar"}

// GetImageFile finds the first form file among fieldNames. (nil, nil) when none was sent.
func GetImageFile(c *fiber.Ctx, fieldNames ...string) (*multipart.FileHeader, error) {
	if !IsMultipart(c) {
		return nil, fiber.NewError(fiber.StatusBadRequest, "use multipart/form-data")
	}
	names := fieldNames
	if len(names) == 0 {
		names = defaultImageFields
	}
	for _, fn := range names {
		if fh, err := c.FormFile(fn); err == nil && fh != nil {
			return fh, nil
		}
	}
	return nil, nil
}
