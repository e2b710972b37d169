package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/abassolaiya/phibitechbackend/internals/features/blogs/likes/model"
)

// Toggle flips the caller's like on a target and returns the new state with the fresh count.
// The first call inserts a liked row; later calls flip it in place, so concurrent toggles
// from the same author never produce a second row.
func Toggle(ctx context.Context, db *gorm.DB, targetType string, targetID, authorID uuid.UUID, now time.Time) (bool, int64, error) {
	var (
		row   model.LikeModel
		count int64
	)
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ins := model.LikeModel{
			LikeTargetType: targetType,
			LikeTargetID:   targetID,
			LikeAuthorID:   authorID,
			LikeIsLiked:    true,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "like_target_type"},
				{Name: "like_target_id"},
				{Name: "like_author_id"},
			},
			DoUpdates: clause.Assignments(map[string]any{
				"like_is_liked":   gorm.Expr("NOT likes.like_is_liked"),
				"like_updated_at": now.UTC(),
			}),
		}).Create(&ins).Error; err != nil {
			return err
		}

		if err := tx.Where("like_target_type = ? AND like_target_id = ? AND like_author_id = ?",
			targetType, targetID, authorID).First(&row).Error; err != nil {
			return err
		}
		return tx.Model(&model.LikeModel{}).
			Where("like_target_type = ? AND like_target_id = ? AND like_is_liked = ?", targetType, targetID, true).
			Count(&count).Error
	})
	if err != nil {
		return false, 0, err
	}
	return row.LikeIsLiked, count, nil
}

type countRow struct {
	TargetID uuid.UUID
	N        int64
}

// CountMany returns the active like count per target; targets without likes are absent.
func CountMany(ctx context.Context, db *gorm.DB, targetType string, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []countRow
	if err := db.WithContext(ctx).Model(&model.LikeModel{}).
		Select("like_target_id AS target_id, COUNT(*) AS n").
		Where("like_target_type = ? AND like_target_id IN ? AND like_is_liked = ?", targetType, ids, true).
		Group("like_target_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.TargetID] = r.N
	}
	return out, nil
}

// LikedBy reports which of ids the author currently likes. A nil author yields an empty set.
func LikedBy(ctx context.Context, db *gorm.DB, targetType string, ids []uuid.UUID, authorID *uuid.UUID) (map[uuid.UUID]bool, error) {
	out := map[uuid.UUID]bool{}
	if authorID == nil || len(ids) == 0 {
		return out, nil
	}
	var liked []uuid.UUID
	if err := db.WithContext(ctx).Model(&model.LikeModel{}).
		Where("like_target_type = ? AND like_target_id IN ? AND like_author_id = ? AND like_is_liked = ?",
			targetType, ids, *authorID, true).
		Pluck("like_target_id", &liked).Error; err != nil {
		return nil, err
	}
	for _, id := range liked {
		out[id] = true
	}
	return out, nil
}

// DeleteForTargets drops every like row (liked or not) of the given targets.
func DeleteForTargets(tx *gorm.DB, targetType string, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.Where("like_target_type = ? AND like_target_id IN ?", targetType, ids).
		Delete(&model.LikeModel{}).Error
}
