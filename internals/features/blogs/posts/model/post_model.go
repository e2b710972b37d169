package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	authorModel "github.com/abassolaiya/phibitechbackend/internals/features/users/authors/model"
)

type BlogPostModel struct {
	BlogPostID          uuid.UUID                   `gorm:"column:blog_post_id;type:uuid;primaryKey" json:"blog_post_id"`
	BlogPostTitle       string                      `gorm:"column:blog_post_title;size:255;not null" json:"blog_post_title"`
	BlogPostSlug        string                      `gorm:"column:blog_post_slug;size:160;not null;uniqueIndex:uq_blog_posts_slug" json:"blog_post_slug"`
	BlogPostExcerpt     string                      `gorm:"column:blog_post_excerpt;type:text" json:"blog_post_excerpt"`
	BlogPostContent     string                      `gorm:"column:blog_post_content;type:text;not null" json:"blog_post_content"`
	BlogPostCoverImage  string                      `gorm:"column:blog_post_cover_image;type:text" json:"blog_post_cover_image"`
	BlogPostTags        datatypes.JSONSlice[string] `gorm:"column:blog_post_tags" json:"blog_post_tags"`
	BlogPostIsPublished bool                        `gorm:"column:blog_post_is_published;not null;default:false;index" json:"blog_post_is_published"`
	BlogPostPublishedAt *time.Time                  `gorm:"column:blog_post_published_at" json:"blog_post_published_at,omitempty"`

	BlogPostAuthorID uuid.UUID                `gorm:"column:blog_post_author_id;type:uuid;not null;index" json:"blog_post_author_id"`
	Author           *authorModel.AuthorModel `gorm:"foreignKey:BlogPostAuthorID;references:AuthorID;constraint:OnDelete:RESTRICT" json:"-"`

	BlogPostCreatedAt time.Time `gorm:"column:blog_post_created_at;autoCreateTime;index" json:"blog_post_created_at"`
	BlogPostUpdatedAt time.Time `gorm:"column:blog_post_updated_at;autoUpdateTime" json:"blog_post_updated_at"`
}

func (BlogPostModel) TableName() string { return "blog_posts" }

func (p *BlogPostModel) BeforeCreate(tx *gorm.DB) error {
	if p.BlogPostID == uuid.Nil {
		p.BlogPostID = uuid.New()
	}
	if p.BlogPostTags == nil {
		p.BlogPostTags = datatypes.JSONSlice[string]{}
	}
	return nil
}
