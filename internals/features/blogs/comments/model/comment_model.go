package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	authorModel "github.com/abassolaiya/phibitechbackend/internals/features/users/authors/model"
)

// CommentModel is a top-level comment on a blog post.
type CommentModel struct {
	CommentID       uuid.UUID `gorm:"column:comment_id;type:uuid;primaryKey" json:"comment_id"`
	CommentPostID   uuid.UUID `gorm:"column:comment_post_id;type:uuid;not null;index" json:"comment_post_id"`
	CommentAuthorID uuid.UUID `gorm:"column:comment_author_id;type:uuid;not null;index" json:"comment_author_id"`
	CommentContent  string    `gorm:"column:comment_content;type:text;not null" json:"comment_content"`

	Author  *authorModel.AuthorModel `gorm:"foreignKey:CommentAuthorID;references:AuthorID" json:"-"`
	Replies []ReplyModel             `gorm:"foreignKey:ReplyCommentID;references:CommentID" json:"-"`

	CommentCreatedAt time.Time `gorm:"column:comment_created_at;autoCreateTime" json:"comment_created_at"`
	CommentUpdatedAt time.Time `gorm:"column:comment_updated_at;autoUpdateTime" json:"comment_updated_at"`
}

func (CommentModel) TableName() string { return "blog_comments" }

func (m *CommentModel) BeforeCreate(tx *gorm.DB) error {
	if m.CommentID == uuid.Nil {
		m.CommentID = uuid.New()
	}
	return nil
}

// ReplyModel answers a comment. Replies do not nest further.
type ReplyModel struct {
	ReplyID        uuid.UUID `gorm:"column:reply_id;type:uuid;primaryKey" json:"reply_id"`
	ReplyCommentID uuid.UUID `gorm:"column:reply_comment_id;type:uuid;not null;index" json:"reply_comment_id"`
	ReplyAuthorID  uuid.UUID `gorm:"column:reply_author_id;type:uuid;not null;index" json:"reply_author_id"`
	ReplyContent   string    `gorm:"column:reply_content;type:text;not null" json:"reply_content"`

	Author *authorModel.AuthorModel `gorm:"foreignKey:ReplyAuthorID;references:AuthorID" json:"-"`

	ReplyCreatedAt time.Time `gorm:"column:reply_created_at;autoCreateTime" json:"reply_created_at"`
	ReplyUpdatedAt time.Time `gorm:"column:reply_updated_at;autoUpdateTime" json:"reply_updated_at"`
}

func (ReplyModel) TableName() string { return "blog_replies" }

func (m *ReplyModel) BeforeCreate(tx *gorm.DB) error {
	if m.ReplyID == uuid.Nil {
		m.ReplyID = uuid.New()
	}
	return nil
}
