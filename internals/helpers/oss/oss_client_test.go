package helper

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func TestBuildObjectKey(t *testing.T) {
	at := time.Date(2025, 4, 1, 8, 30, 0, 0, time.UTC)
	key := BuildObjectKey("/courses/covers/", "My Cover_Final!.PNG", at)
	re := regexp.MustCompile(`^courses/covers/my-cover-final_20250401_083000_[0-9a-f]{6}\.png$`)
	if !re.MatchString(key) {
		t.Fatalf("key = %q", key)
	}
	if k := BuildObjectKey("", "???.jpg", at); !strings.HasPrefix(k, "file_") {
		t.Fatalf("nameless key = %q", k)
	}
}

func TestExtractKeyFromPublicURL(t *testing.T) {
	cases := []struct {
		base, url, want string
		ok              bool
	}{
		{"https://cdn.phibitech.io", "https://cdn.phibitech.io/posts/a.webp", "posts/a.webp", true},
		{"", "https://bucket.oss-ap.aliyuncs.com/uploads/b.webp", "uploads/b.webp", true},
		{"", "", "", false},
		{"", "https://host.only/", "", false},
	}
	for _, tc := range cases {
		got, err := ExtractKeyFromPublicURL(tc.base, tc.url)
		if (err == nil) != tc.ok || got != tc.want {
			t.Errorf("%q: got %q, err %v", tc.url, got, err)
		}
	}
}

func TestOwnsURL(t *testing.T) {
	s := &OSSService{Endpoint: "https://oss-ap-southeast-1.aliyuncs.com", BucketName: "phibi"}
	if !s.OwnsURL("https://phibi.oss-ap-southeast-1.aliyuncs.com/avatars/x.webp") {
		t.Fatal("own bucket url not recognised")
	}
	if s.OwnsURL("https://lh3.googleusercontent.com/a/photo.jpg") {
		t.Fatal("foreign url claimed")
	}

	s.PublicBase = "https://cdn.phibitech.io"
	if !s.OwnsURL("https://cdn.phibitech.io/posts/y.webp") {
		t.Fatal("cdn url not recognised")
	}
	if s.PublicURL("posts/y.webp") != "https://cdn.phibitech.io/posts/y.webp" {
		t.Fatalf("public url = %q", s.PublicURL("posts/y.webp"))
	}
}

func TestGetImageFile(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		fh, err := GetImageFile(c, "cover")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).SendString(err.Error())
		}
		if fh == nil {
			return c.SendString("none")
		}
		return c.SendString(fh.Filename)
	})

	send := func(body *bytes.Buffer, ct string) string {
		t.Helper()
		req := httptest.NewRequest("POST", "/", body)
		req.Header.Set("Content-Type", ct)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		var out bytes.Buffer
		_, _ = out.ReadFrom(resp.Body)
		return out.String()
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, _ := w.CreateFormFile("cover", "cover.png")
	_, _ = fw.Write([]byte("png-bytes"))
	_ = w.Close()
	if got := send(&buf, w.FormDataContentType()); got != "cover.png" {
		t.Fatalf("got %q", got)
	}

	buf.Reset()
	w = multipart.NewWriter(&buf)
	_ = w.WriteField("title", "x")
	_ = w.Close()
	if got := send(&buf, w.FormDataContentType()); got != "none" {
		t.Fatalf("no file: got %q", got)
	}

	if got := send(bytes.NewBufferString(`{}`), "application/json"); got != "use multipart/form-data" {
		t.Fatalf("json body: got %q", got)
	}
}
