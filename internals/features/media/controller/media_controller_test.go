package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/abassolaiya/phibitechbackend/internals/constants"
	helperOSS "github.com/abassolaiya/phibitechbackend/internals/helpers/oss"
)

type fakeUploader struct {
	dirs []string
}

func (f *fakeUploader) UploadImage(_ context.Context, fh *multipart.FileHeader, dir string) (string, error) {
	f.dirs = append(f.dirs, dir)
	return "https://cdn.example.com/" + dir + "/" + fh.Filename, nil
}

func (f *fakeUploader) DeleteByPublicURL(context.Context, string) error { return nil }

func multipartBody(t *testing.T, field, filename, folder string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if folder != "" {
		_ = w.WriteField("folder", folder)
	}
	if field != "" {
		fw, err := w.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		fw.Write([]byte("not really an image"))
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func upload(t *testing.T, up helperOSS.Uploader, field, filename, folder string) (int, map[string]any) {
	t.Helper()
	app := fiber.New()
	app.Post("/media", NewMediaController(up).Upload)

	body, ct := multipartBody(t, field, filename, folder)
	req := httptest.NewRequest("POST", "/media", body)
	req.Header.Set("Content-Type", ct)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	defer resp.Body.Close()
	var out map[string]any
	json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestUploadFolders(t *testing.T) {
	cases := []struct {
		folder string
		want   string
	}{
		{"", constants.MediaDirGeneric},
		{"Posts", constants.MediaDirPosts},
		{"../secrets", constants.MediaDirGeneric},
	}
	for _, tc := range cases {
		t.Run(tc.folder, func(t *testing.T) {
			up := &fakeUploader{}
			status, body := upload(t, up, "image", "diagram.png", tc.folder)
			if status != fiber.StatusCreated {
				t.Fatalf("status = %d body=%v", status, body)
			}
			if len(up.dirs) != 1 || up.dirs[0] != tc.want {
				t.Fatalf("uploaded to %v, want %s", up.dirs, tc.want)
			}
		})
	}
}

func TestUploadRejectsBadInput(t *testing.T) {
	up := &fakeUploader{}
	if status, _ := upload(t, up, "file", "notes.pdf", ""); status != fiber.StatusBadRequest {
		t.Fatalf("pdf accepted: %d", status)
	}
	if status, _ := upload(t, up, "", "", "posts"); status != fiber.StatusBadRequest {
		t.Fatalf("missing file accepted: %d", status)
	}
	if len(up.dirs) != 0 {
		t.Fatalf("uploader called for rejected input: %v", up.dirs)
	}
}

func TestUploadWithoutMediaHost(t *testing.T) {
	status, body := upload(t, helperOSS.DisabledUploader{}, "image", "a.jpg", "")
	if status != fiber.StatusServiceUnavailable || body["success"] != false {
		t.Fatalf("status=%d body=%v", status, body)
	}
}
