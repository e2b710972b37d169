package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	commentDto "github.com/abassolaiya/phibitechbackend/internals/features/blogs/comments/dto"
	authorDto "github.com/abassolaiya/phibitechbackend/internals/features/users/authors/dto"
)

type CreatePostRequest struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Excerpt     string   `json:"excerpt" validate:"max=500"`
	Content     string   `json:"content" validate:"required"`
	CoverImage  string   `json:"cover_image" validate:"omitempty,url"`
	Tags        []string `json:"tags" validate:"max=20,dive,max=40"`
	IsPublished bool     `json:"is_published"`
}

func (r *CreatePostRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Excerpt = strings.TrimSpace(r.Excerpt)
	r.CoverImage = strings.TrimSpace(r.CoverImage)
	r.Tags = NormalizeTags(r.Tags)
}

// UpdatePostRequest is partial; nil fields stay untouched. The slug is never rewritten.
type UpdatePostRequest struct {
	Title       *string   `json:"title" validate:"omitempty,min=1,max=255"`
	Excerpt     *string   `json:"excerpt" validate:"omitempty,max=500"`
	Content     *string   `json:"content" validate:"omitempty,min=1"`
	CoverImage  *string   `json:"cover_image" validate:"omitempty,url"`
	Tags        *[]string `json:"tags" validate:"omitempty,max=20,dive,max=40"`
	IsPublished *bool     `json:"is_published"`
}

func (r *UpdatePostRequest) Normalize() {
	for _, p := range []*string{r.Title, r.Excerpt, r.CoverImage} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	if r.Tags != nil {
		t := NormalizeTags(*r.Tags)
		r.Tags = &t
	}
}

// NormalizeTags lowercases, trims and de-duplicates while keeping first-seen order.
func NormalizeTags(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

type PostView struct {
	ID           uuid.UUID               `json:"id"`
	Title        string                  `json:"title"`
	Slug         string                  `json:"slug"`
	Excerpt      string                  `json:"excerpt"`
	Content      string                  `json:"content,omitempty"`
	CoverImage   string                  `json:"cover_image"`
	Tags         []string                `json:"tags"`
	IsPublished  bool                    `json:"is_published"`
	PublishedAt  *time.Time              `json:"published_at,omitempty"`
	Author       *authorDto.PublicAuthor `json:"author"`
	LikeCount    int64                   `json:"like_count"`
	CommentCount int64                   `json:"comment_count"`
	LikedByMe    bool                    `json:"liked_by_me"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

type PostDetail struct {
	PostView
	Comments []commentDto.CommentView `json:"comments"`
}
