package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	commentDto "github.com/abassolaiya/phibitechbackend/internals/features/blogs/comments/dto"
	commentService "github.com/abassolaiya/phibitechbackend/internals/features/blogs/comments/service"
	likeModel "github.com/abassolaiya/phibitechbackend/internals/features/blogs/likes/model"
	likeService "github.com/abassolaiya/phibitechbackend/internals/features/blogs/likes/service"
	"github.com/abassolaiya/phibitechbackend/internals/features/blogs/posts/dto"
	"github.com/abassolaiya/phibitechbackend/internals/features/blogs/posts/model"
	authorDto "github.com/abassolaiya/phibitechbackend/internals/features/users/authors/dto"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
)

const slugMaxLen = 150

var (
	ErrPostNotFound = commentService.ErrPostNotFound
	ErrForbidden    = fiber.NewError(fiber.StatusForbidden, "you can only manage your own posts")
)

// Actor is shared with comments so ownership reads the same everywhere.
type Actor = commentService.Actor

// ListFilter narrows the post listing. Mine limits to the viewer's own posts, drafts included.
type ListFilter struct {
	Query  string
	Tag    string
	Author string
	Mine   bool
}

// visibleScope keeps drafts hidden from everyone but their author and admins.
func visibleScope(viewer *uuid.UUID, admin bool) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		switch {
		case admin:
			return q
		case viewer != nil:
			return q.Where("blog_posts.blog_post_is_published = ? OR blog_posts.blog_post_author_id = ?", true, *viewer)
		default:
			return q.Where("blog_posts.blog_post_is_published = ?", true)
		}
	}
}

func ListPosts(ctx context.Context, db *gorm.DB, f ListFilter, p helper.Paging, viewer *uuid.UUID, admin bool) ([]dto.PostView, int64, error) {
	q := db.WithContext(ctx).Model(&model.BlogPostModel{}).Scopes(visibleScope(viewer, admin))

	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(blog_posts.blog_post_title) LIKE ? OR LOWER(blog_posts.blog_post_excerpt) LIKE ?", like, like)
	}
	if tag := strings.ToLower(strings.TrimSpace(f.Tag)); tag != "" {
		// tags are stored as a JSON array of lowercase strings
		q = q.Where("CAST(blog_posts.blog_post_tags AS TEXT) LIKE ?", `%"`+tag+`"%`)
	}
	if u := strings.ToLower(strings.TrimSpace(f.Author)); u != "" {
		q = q.Joins("JOIN authors ON authors.author_id = blog_posts.blog_post_author_id").
			Where("LOWER(authors.author_username) = ?", u)
	}
	if f.Mine {
		if viewer == nil {
			return nil, 0, fiber.NewError(fiber.StatusUnauthorized, "not authenticated")
		}
		q = q.Where("blog_posts.blog_post_author_id = ?", *viewer)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.BlogPostModel
	if err := q.Preload("Author").
		Order("COALESCE(blog_posts.blog_post_published_at, blog_posts.blog_post_created_at) DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	views, err := buildViews(ctx, db, rows, viewer, false)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// FindPost resolves a post by uuid or slug, honouring draft visibility.
func FindPost(ctx context.Context, db *gorm.DB, key string, viewer *uuid.UUID, admin bool) (*model.BlogPostModel, error) {
	key = strings.TrimSpace(key)
	q := db.WithContext(ctx).Preload("Author").Scopes(visibleScope(viewer, admin))
	if id, err := uuid.Parse(key); err == nil {
		q = q.Where("blog_post_id = ?", id)
	} else {
		q = q.Where("blog_post_slug = ?", strings.ToLower(key))
	}

	var p model.BlogPostModel
	err := q.First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPostDetail returns the post with its full comment tree.
func GetPostDetail(ctx context.Context, db *gorm.DB, key string, viewer *uuid.UUID, admin bool) (dto.PostDetail, error) {
	p, err := FindPost(ctx, db, key, viewer, admin)
	if err != nil {
		return dto.PostDetail{}, err
	}
	views, err := buildViews(ctx, db, []model.BlogPostModel{*p}, viewer, true)
	if err != nil {
		return dto.PostDetail{}, err
	}
	tree, err := commentService.Tree(ctx, db, p.BlogPostID, viewer)
	if err != nil {
		return dto.PostDetail{}, err
	}
	if tree == nil {
		tree = []commentDto.CommentView{}
	}
	return dto.PostDetail{PostView: views[0], Comments: tree}, nil
}

func CreatePost(ctx context.Context, db *gorm.DB, authorID uuid.UUID, req dto.CreatePostRequest, now time.Time) (dto.PostView, error) {
	slug, err := helper.EnsureUniqueSlug(ctx, db, "blog_posts", "blog_post_slug",
		helper.Slugify(req.Title, slugMaxLen), nil, slugMaxLen)
	if err != nil {
		return dto.PostView{}, err
	}

	p := model.BlogPostModel{
		BlogPostTitle:       req.Title,
		BlogPostSlug:        slug,
		BlogPostExcerpt:     req.Excerpt,
		BlogPostContent:     req.Content,
		BlogPostCoverImage:  req.CoverImage,
		BlogPostTags:        datatypes.JSONSlice[string](req.Tags),
		BlogPostIsPublished: req.IsPublished,
		BlogPostAuthorID:    authorID,
	}
	if req.IsPublished {
		t := now.UTC()
		p.BlogPostPublishedAt = &t
	}
	if err := db.WithContext(ctx).Create(&p).Error; err != nil {
		return dto.PostView{}, err
	}
	return reload(ctx, db, p.BlogPostID, &authorID)
}

// UpdatePost applies a partial update. Publishing stamps published_at the first time only.
func UpdatePost(ctx context.Context, db *gorm.DB, id uuid.UUID, actor Actor, req dto.UpdatePostRequest, now time.Time) (dto.PostView, error) {
	p, err := findOwned(ctx, db, id, actor)
	if err != nil {
		return dto.PostView{}, err
	}

	cols := map[string]any{}
	if req.Title != nil {
		cols["blog_post_title"] = *req.Title
	}
	if req.Excerpt != nil {
		cols["blog_post_excerpt"] = *req.Excerpt
	}
	if req.Content != nil {
		cols["blog_post_content"] = *req.Content
	}
	if req.CoverImage != nil {
		cols["blog_post_cover_image"] = *req.CoverImage
	}
	if req.Tags != nil {
		cols["blog_post_tags"] = datatypes.JSONSlice[string](*req.Tags)
	}
	if req.IsPublished != nil {
		cols["blog_post_is_published"] = *req.IsPublished
		if *req.IsPublished && p.BlogPostPublishedAt == nil {
			cols["blog_post_published_at"] = now.UTC()
		}
	}
	if len(cols) > 0 {
		if err := db.WithContext(ctx).Model(&model.BlogPostModel{}).
			Where("blog_post_id = ?", id).
			Updates(cols).Error; err != nil {
			return dto.PostView{}, err
		}
	}
	return reload(ctx, db, id, &actor.ID)
}

// DeletePost removes the post with its comments, replies and every like on them.
func DeletePost(ctx context.Context, db *gorm.DB, id uuid.UUID, actor Actor) (*model.BlogPostModel, error) {
	p, err := findOwned(ctx, db, id, actor)
	if err != nil {
		return nil, err
	}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := commentService.DeleteThreads(tx, []uuid.UUID{id}); err != nil {
			return err
		}
		if err := likeService.DeleteForTargets(tx, likeModel.TargetPost, []uuid.UUID{id}); err != nil {
			return err
		}
		return tx.Delete(&model.BlogPostModel{}, "blog_post_id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SetCoverImage stores a new cover URL and returns the previous one.
func SetCoverImage(ctx context.Context, db *gorm.DB, id uuid.UUID, actor Actor, url string) (dto.PostView, string, error) {
	p, err := findOwned(ctx, db, id, actor)
	if err != nil {
		return dto.PostView{}, "", err
	}
	old := p.BlogPostCoverImage
	if err := db.WithContext(ctx).Model(&model.BlogPostModel{}).
		Where("blog_post_id = ?", id).
		Update("blog_post_cover_image", url).Error; err != nil {
		return dto.PostView{}, "", err
	}
	v, err := reload(ctx, db, id, &actor.ID)
	return v, old, err
}

// AuthorizeCover fails fast before a cover is uploaded for a post the actor cannot manage.
func AuthorizeCover(ctx context.Context, db *gorm.DB, id uuid.UUID, actor Actor) error {
	_, err := findOwned(ctx, db, id, actor)
	return err
}

func ToggleLike(ctx context.Context, db *gorm.DB, key string, actor Actor, now time.Time) (commentDto.LikeResult, error) {
	p, err := FindPost(ctx, db, key, &actor.ID, actor.Admin)
	if err != nil {
		return commentDto.LikeResult{}, err
	}
	liked, n, err := likeService.Toggle(ctx, db, likeModel.TargetPost, p.BlogPostID, actor.ID, now)
	if err != nil {
		return commentDto.LikeResult{}, err
	}
	return commentDto.LikeResult{TargetID: p.BlogPostID, Liked: liked, LikeCount: n}, nil
}

func findOwned(ctx context.Context, db *gorm.DB, id uuid.UUID, actor Actor) (*model.BlogPostModel, error) {
	var p model.BlogPostModel
	err := db.WithContext(ctx).First(&p, "blog_post_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	if actor.Admin || p.BlogPostAuthorID == actor.ID {
		return &p, nil
	}
	// other people's drafts do not exist as far as the caller can tell
	if !p.BlogPostIsPublished {
		return nil, ErrPostNotFound
	}
	return nil, ErrForbidden
}

func reload(ctx context.Context, db *gorm.DB, id uuid.UUID, viewer *uuid.UUID) (dto.PostView, error) {
	var p model.BlogPostModel
	if err := db.WithContext(ctx).Preload("Author").First(&p, "blog_post_id = ?", id).Error; err != nil {
		return dto.PostView{}, err
	}
	views, err := buildViews(ctx, db, []model.BlogPostModel{p}, viewer, true)
	if err != nil {
		return dto.PostView{}, err
	}
	return views[0], nil
}

// buildViews attaches like and comment counters in three queries regardless of page size.
func buildViews(ctx context.Context, db *gorm.DB, rows []model.BlogPostModel, viewer *uuid.UUID, withContent bool) ([]dto.PostView, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	for _, p := range rows {
		ids = append(ids, p.BlogPostID)
	}
	likes, err := likeService.CountMany(ctx, db, likeModel.TargetPost, ids)
	if err != nil {
		return nil, err
	}
	mine, err := likeService.LikedBy(ctx, db, likeModel.TargetPost, ids, viewer)
	if err != nil {
		return nil, err
	}
	comments, err := commentService.CountForPosts(ctx, db, ids)
	if err != nil {
		return nil, err
	}

	out := make([]dto.PostView, 0, len(rows))
	for _, p := range rows {
		tags := []string(p.BlogPostTags)
		if tags == nil {
			tags = []string{}
		}
		v := dto.PostView{
			ID:           p.BlogPostID,
			Title:        p.BlogPostTitle,
			Slug:         p.BlogPostSlug,
			Excerpt:      p.BlogPostExcerpt,
			CoverImage:   p.BlogPostCoverImage,
			Tags:         tags,
			IsPublished:  p.BlogPostIsPublished,
			PublishedAt:  p.BlogPostPublishedAt,
			Author:       authorDto.ToPublicAuthor(p.Author),
			LikeCount:    likes[p.BlogPostID],
			CommentCount: comments[p.BlogPostID],
			LikedByMe:    mine[p.BlogPostID],
			CreatedAt:    p.BlogPostCreatedAt,
			UpdatedAt:    p.BlogPostUpdatedAt,
		}
		if withContent {
			v.Content = p.BlogPostContent
		}
		out = append(out, v)
	}
	return out, nil
}
