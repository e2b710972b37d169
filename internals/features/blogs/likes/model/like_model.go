package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TargetPost    = "post"
	TargetComment = "comment"
	TargetReply   = "reply"
)

// LikeModel keeps one row per (target, author); unliking flips LikeIsLiked instead of deleting.
type LikeModel struct {
	LikeID         uuid.UUID `gorm:"column:like_id;type:uuid;primaryKey" json:"like_id"`
	LikeTargetType string    `gorm:"column:like_target_type;size:16;not null;uniqueIndex:uq_likes_target_author,priority:1;index:idx_likes_target,priority:1" json:"like_target_type"`
	LikeTargetID   uuid.UUID `gorm:"column:like_target_id;type:uuid;not null;uniqueIndex:uq_likes_target_author,priority:2;index:idx_likes_target,priority:2" json:"like_target_id"`
	LikeAuthorID   uuid.UUID `gorm:"column:like_author_id;type:uuid;not null;uniqueIndex:uq_likes_target_author,priority:3" json:"like_author_id"`
	LikeIsLiked    bool      `gorm:"column:like_is_liked;not null;default:true" json:"like_is_liked"`

	LikeCreatedAt time.Time `gorm:"column:like_created_at;autoCreateTime" json:"like_created_at"`
	LikeUpdatedAt time.Time `gorm:"column:like_updated_at;autoUpdateTime" json:"like_updated_at"`
}

func (LikeModel) TableName() string { return "likes" }

func (m *LikeModel) BeforeCreate(tx *gorm.DB) error {
	if m.LikeID == uuid.Nil {
		m.LikeID = uuid.New()
	}
	return nil
}
