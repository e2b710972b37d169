package service

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abassolaiya/phibitechbackend/internals/features/blogs/comments/dto"
	"github.com/abassolaiya/phibitechbackend/internals/features/blogs/comments/model"
	likeModel "github.com/abassolaiya/phibitechbackend/internals/features/blogs/likes/model"
	likeService "github.com/abassolaiya/phibitechbackend/internals/features/blogs/likes/service"
	authorDto "github.com/abassolaiya/phibitechbackend/internals/features/users/authors/dto"
)

// posts import this package for the comment tree, so the post is read by table name
const postsTable = "blog_posts"

var (
	ErrPostNotFound    = fiber.NewError(fiber.StatusNotFound, "post not found")
	ErrCommentNotFound = fiber.NewError(fiber.StatusNotFound, "comment not found")
	ErrReplyNotFound   = fiber.NewError(fiber.StatusNotFound, "reply not found")
	ErrForbidden       = fiber.NewError(fiber.StatusForbidden, "you can only change your own content")
)

// Actor is the caller a write is checked against. Admins may touch anyone's content.
type Actor struct {
	ID    uuid.UUID
	Admin bool
}

func (a Actor) owns(owner uuid.UUID) bool { return a.Admin || a.ID == owner }

type postRef struct {
	BlogPostID          uuid.UUID
	BlogPostAuthorID    uuid.UUID
	BlogPostIsPublished bool
}

// visiblePost loads a post the viewer may read: published posts for everyone,
// drafts only for their author and admins.
func visiblePost(ctx context.Context, db *gorm.DB, postID uuid.UUID, viewer *uuid.UUID, admin bool) (*postRef, error) {
	var p postRef
	err := db.WithContext(ctx).Table(postsTable).
		Select("blog_post_id, blog_post_author_id, blog_post_is_published").
		Where("blog_post_id = ?", postID).
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	if !p.BlogPostIsPublished && !admin && (viewer == nil || *viewer != p.BlogPostAuthorID) {
		return nil, ErrPostNotFound
	}
	return &p, nil
}

/* ===============================
   Reads
=================================*/

// Tree returns the comments of a post oldest first, each with its replies and like counts.
func Tree(ctx context.Context, db *gorm.DB, postID uuid.UUID, viewer *uuid.UUID) ([]dto.CommentView, error) {
	var rows []model.CommentModel
	if err := db.WithContext(ctx).
		Preload("Author").
		Preload("Replies", func(q *gorm.DB) *gorm.DB { return q.Order("reply_created_at ASC") }).
		Preload("Replies.Author").
		Where("comment_post_id = ?", postID).
		Order("comment_created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	commentIDs := make([]uuid.UUID, 0, len(rows))
	var replyIDs []uuid.UUID
	for _, c := range rows {
		commentIDs = append(commentIDs, c.CommentID)
		for _, r := range c.Replies {
			replyIDs = append(replyIDs, r.ReplyID)
		}
	}

	cc, err := likeService.CountMany(ctx, db, likeModel.TargetComment, commentIDs)
	if err != nil {
		return nil, err
	}
	cm, err := likeService.LikedBy(ctx, db, likeModel.TargetComment, commentIDs, viewer)
	if err != nil {
		return nil, err
	}
	rc, err := likeService.CountMany(ctx, db, likeModel.TargetReply, replyIDs)
	if err != nil {
		return nil, err
	}
	rm, err := likeService.LikedBy(ctx, db, likeModel.TargetReply, replyIDs, viewer)
	if err != nil {
		return nil, err
	}

	out := make([]dto.CommentView, 0, len(rows))
	for _, c := range rows {
		v := toCommentView(c, cc[c.CommentID], cm[c.CommentID])
		for _, r := range c.Replies {
			v.Replies = append(v.Replies, toReplyView(r, rc[r.ReplyID], rm[r.ReplyID]))
		}
		v.ReplyCount = len(v.Replies)
		out = append(out, v)
	}
	return out, nil
}

// ListForPost is Tree behind the post visibility check.
func ListForPost(ctx context.Context, db *gorm.DB, postID uuid.UUID, viewer *uuid.UUID, admin bool) ([]dto.CommentView, error) {
	if _, err := visiblePost(ctx, db, postID, viewer, admin); err != nil {
		return nil, err
	}
	return Tree(ctx, db, postID, viewer)
}

// ListReplies returns the replies of one comment oldest first.
func ListReplies(ctx context.Context, db *gorm.DB, commentID uuid.UUID, viewer *uuid.UUID, admin bool) ([]dto.ReplyView, error) {
	c, err := findComment(ctx, db, commentID)
	if err != nil {
		return nil, err
	}
	if _, err := visiblePost(ctx, db, c.CommentPostID, viewer, admin); err != nil {
		return nil, err
	}

	var rows []model.ReplyModel
	if err := db.WithContext(ctx).Preload("Author").
		Where("reply_comment_id = ?", commentID).
		Order("reply_created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ReplyID)
	}
	counts, err := likeService.CountMany(ctx, db, likeModel.TargetReply, ids)
	if err != nil {
		return nil, err
	}
	mine, err := likeService.LikedBy(ctx, db, likeModel.TargetReply, ids, viewer)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ReplyView, 0, len(rows))
	for _, r := range rows {
		out = append(out, toReplyView(r, counts[r.ReplyID], mine[r.ReplyID]))
	}
	return out, nil
}

// CountForPosts returns the number of comments and replies per post.
func CountForPosts(ctx context.Context, db *gorm.DB, postIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	type row struct {
		PostID uuid.UUID
		N      int64
	}

	var comments []row
	if err := db.WithContext(ctx).Model(&model.CommentModel{}).
		Select("comment_post_id AS post_id, COUNT(*) AS n").
		Where("comment_post_id IN ?", postIDs).
		Group("comment_post_id").
		Scan(&comments).Error; err != nil {
		return nil, err
	}
	var replies []row
	if err := db.WithContext(ctx).Model(&model.ReplyModel{}).
		Select("blog_comments.comment_post_id AS post_id, COUNT(*) AS n").
		Joins("JOIN blog_comments ON blog_comments.comment_id = blog_replies.reply_comment_id").
		Where("blog_comments.comment_post_id IN ?", postIDs).
		Group("blog_comments.comment_post_id").
		Scan(&replies).Error; err != nil {
		return nil, err
	}

	for _, r := range comments {
		out[r.PostID] += r.N
	}
	for _, r := range replies {
		out[r.PostID] += r.N
	}
	return out, nil
}

/* ===============================
   Comments
=================================*/

func findComment(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.CommentModel, error) {
	var c model.CommentModel
	err := db.WithContext(ctx).First(&c, "comment_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func CreateComment(ctx context.Context, db *gorm.DB, postID uuid.UUID, actor Actor, content string) (dto.CommentView, error) {
	if _, err := visiblePost(ctx, db, postID, &actor.ID, actor.Admin); err != nil {
		return dto.CommentView{}, err
	}
	c := model.CommentModel{
		CommentPostID:   postID,
		CommentAuthorID: actor.ID,
		CommentContent:  content,
	}
	if err := db.WithContext(ctx).Create(&c).Error; err != nil {
		return dto.CommentView{}, err
	}
	if err := db.WithContext(ctx).Preload("Author").First(&c, "comment_id = ?", c.CommentID).Error; err != nil {
		return dto.CommentView{}, err
	}
	return toCommentView(c, 0, false), nil
}

func UpdateComment(ctx context.Context, db *gorm.DB, id uuid.UUID, actor Actor, content string) (dto.CommentView, error) {
	c, err := findComment(ctx, db, id)
	if err != nil {
		return dto.CommentView{}, err
	}
	if !actor.owns(c.CommentAuthorID) {
		return dto.CommentView{}, ErrForbidden
	}
	if err := db.WithContext(ctx).Model(c).Update("comment_content", content).Error; err != nil {
		return dto.CommentView{}, err
	}
	if err := db.WithContext(ctx).Preload("Author").First(c, "comment_id = ?", id).Error; err != nil {
		return dto.CommentView{}, err
	}
	counts, err := likeService.CountMany(ctx, db, likeModel.TargetComment, []uuid.UUID{id})
	if err != nil {
		return dto.CommentView{}, err
	}
	mine, err := likeService.LikedBy(ctx, db, likeModel.TargetComment, []uuid.UUID{id}, &actor.ID)
	if err != nil {
		return dto.CommentView{}, err
	}
	return toCommentView(*c, counts[id], mine[id]), nil
}

// DeleteComment removes the comment together with its replies and every like on them.
func DeleteComment(ctx context.Context, db *gorm.DB, id uuid.UUID, actor Actor) error {
	c, err := findComment(ctx, db, id)
	if err != nil {
		return err
	}
	if !actor.owns(c.CommentAuthorID) {
		return ErrForbidden
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteComments(tx, []uuid.UUID{id})
	})
}

// DeleteThreads drops every comment of the given posts; callers run it inside their transaction.
func DeleteThreads(tx *gorm.DB, postIDs []uuid.UUID) error {
	if len(postIDs) == 0 {
		return nil
	}
	var ids []uuid.UUID
	if err := tx.Model(&model.CommentModel{}).
		Where("comment_post_id IN ?", postIDs).
		Pluck("comment_id", &ids).Error; err != nil {
		return err
	}
	return deleteComments(tx, ids)
}

func deleteComments(tx *gorm.DB, commentIDs []uuid.UUID) error {
	if len(commentIDs) == 0 {
		return nil
	}
	var replyIDs []uuid.UUID
	if err := tx.Model(&model.ReplyModel{}).
		Where("reply_comment_id IN ?", commentIDs).
		Pluck("reply_id", &replyIDs).Error; err != nil {
		return err
	}
	if err := likeService.DeleteForTargets(tx, likeModel.TargetReply, replyIDs); err != nil {
		return err
	}
	if err := likeService.DeleteForTargets(tx, likeModel.TargetComment, commentIDs); err != nil {
		return err
	}
	if err := tx.Where("reply_comment_id IN ?", commentIDs).Delete(&model.ReplyModel{}).Error; err != nil {
		return err
	}
	return tx.Where("comment_id IN ?", commentIDs).Delete(&model.CommentModel{}).Error
}

func ToggleCommentLike(ctx context.Context, db *gorm.DB, id uuid.UUID, actor Actor, now time.Time) (dto.LikeResult, error) {
	c, err := findComment(ctx, db, id)
	if err != nil {
		return dto.LikeResult{}, err
	}
	if _, err := visiblePost(ctx, db, c.CommentPostID, &actor.ID, actor.Admin); err != nil {
		return dto.LikeResult{}, err
	}
	liked, n, err := likeService.Toggle(ctx, db, likeModel.TargetComment, id, actor.ID, now)
	if err != nil {
		return dto.LikeResult{}, err
	}
	return dto.LikeResult{TargetID: id, Liked: liked, LikeCount: n}, nil
}

/* ===============================
   Replies
=================================*/

func findReply(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.ReplyModel, error) {
	var r model.ReplyModel
	err := db.WithContext(ctx).First(&r, "reply_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReplyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func CreateReply(ctx context.Context, db *gorm.DB, commentID uuid.UUID, actor Actor, content string) (dto.ReplyView, error) {
	c, err := findComment(ctx, db, commentID)
	if err != nil {
		return dto.ReplyView{}, err
	}
	if _, err := visiblePost(ctx, db, c.CommentPostID, &actor.ID, actor.Admin); err != nil {
		return dto.ReplyView{}, err
	}
	r := model.ReplyModel{
		ReplyCommentID: commentID,
		ReplyAuthorID:  actor.ID,
		ReplyContent:   content,
	}
	if err := db.WithContext(ctx).Create(&r).Error; err != nil {
		return dto.ReplyView{}, err
	}
	if err := db.WithContext(ctx).Preload("Author").First(&r, "reply_id = ?", r.ReplyID).Error; err != nil {
		return dto.ReplyView{}, err
	}
	return toReplyView(r, 0, false), nil
}

func UpdateReply(ctx context.Context, db *gorm.DB, id uuid.UUID, actor Actor, content string) (dto.ReplyView, error) {
	r, err := findReply(ctx, db, id)
	if err != nil {
		return dto.ReplyView{}, err
	}
	if !actor.owns(r.ReplyAuthorID) {
		return dto.ReplyView{}, ErrForbidden
	}
	if err := db.WithContext(ctx).Model(r).Update("reply_content", content).Error; err != nil {
		return dto.ReplyView{}, err
	}
	if err := db.WithContext(ctx).Preload("Author").First(r, "reply_id = ?", id).Error; err != nil {
		return dto.ReplyView{}, err
	}
	counts, err := likeService.CountMany(ctx, db, likeModel.TargetReply, []uuid.UUID{id})
	if err != nil {
		return dto.ReplyView{}, err
	}
	mine, err := likeService.LikedBy(ctx, db, likeModel.TargetReply, []uuid.UUID{id}, &actor.ID)
	if err != nil {
		return dto.ReplyView{}, err
	}
	return toReplyView(*r, counts[id], mine[id]), nil
}

func DeleteReply(ctx context.Context, db *gorm.DB, id uuid.UUID, actor Actor) error {
	r, err := findReply(ctx, db, id)
	if err != nil {
		return err
	}
	if !actor.owns(r.ReplyAuthorID) {
		return ErrForbidden
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := likeService.DeleteForTargets(tx, likeModel.TargetReply, []uuid.UUID{id}); err != nil {
			return err
		}
		return tx.Delete(&model.ReplyModel{}, "reply_id = ?", id).Error
	})
}

func ToggleReplyLike(ctx context.Context, db *gorm.DB, id uuid.UUID, actor Actor, now time.Time) (dto.LikeResult, error) {
	r, err := findReply(ctx, db, id)
	if err != nil {
		return dto.LikeResult{}, err
	}
	c, err := findComment(ctx, db, r.ReplyCommentID)
	if err != nil {
		return dto.LikeResult{}, err
	}
	if _, err := visiblePost(ctx, db, c.CommentPostID, &actor.ID, actor.Admin); err != nil {
		return dto.LikeResult{}, err
	}
	liked, n, err := likeService.Toggle(ctx, db, likeModel.TargetReply, id, actor.ID, now)
	if err != nil {
		return dto.LikeResult{}, err
	}
	return dto.LikeResult{TargetID: id, Liked: liked, LikeCount: n}, nil
}

func toCommentView(c model.CommentModel, likes int64, mine bool) dto.CommentView {
	return dto.CommentView{
		ID:        c.CommentID,
		PostID:    c.CommentPostID,
		Content:   c.CommentContent,
		Author:    authorDto.ToPublicAuthor(c.Author),
		LikeCount: likes,
		LikedByMe: mine,
		Replies:   []dto.ReplyView{},
		CreatedAt: c.CommentCreatedAt,
		UpdatedAt: c.CommentUpdatedAt,
	}
}

func toReplyView(r model.ReplyModel, likes int64, mine bool) dto.ReplyView {
	return dto.ReplyView{
		ID:        r.ReplyID,
		CommentID: r.ReplyCommentID,
		Content:   r.ReplyContent,
		Author:    authorDto.ToPublicAuthor(r.Author),
		LikeCount: likes,
		LikedByMe: mine,
		CreatedAt: r.ReplyCreatedAt,
		UpdatedAt: r.ReplyUpdatedAt,
	}
}
