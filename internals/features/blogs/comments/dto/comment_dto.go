package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	authorDto "github.com/abassolaiya/phibitechbackend/internals/features/users/authors/dto"
)

// ContentRequest is the body for creating or editing a comment or a reply.
type ContentRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

func (r *ContentRequest) Normalize() { r.Content = strings.TrimSpace(r.Content) }

type ReplyView struct {
	ID        uuid.UUID               `json:"id"`
	CommentID uuid.UUID               `json:"comment_id"`
	Content   string                  `json:"content"`
	Author    *authorDto.PublicAuthor `json:"author"`
	LikeCount int64                   `json:"like_count"`
	LikedByMe bool                    `json:"liked_by_me"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

type CommentView struct {
	ID         uuid.UUID               `json:"id"`
	PostID     uuid.UUID               `json:"post_id"`
	Content    string                  `json:"content"`
	Author     *authorDto.PublicAuthor `json:"author"`
	LikeCount  int64                   `json:"like_count"`
	LikedByMe  bool                    `json:"liked_by_me"`
	ReplyCount int                     `json:"reply_count"`
	Replies    []ReplyView             `json:"replies"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

// LikeResult answers every like toggle.
type LikeResult struct {
	TargetID  uuid.UUID `json:"target_id"`
	Liked     bool      `json:"liked"`
	LikeCount int64     `json:"like_count"`
}
