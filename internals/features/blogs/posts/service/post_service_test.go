package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	database "github.com/abassolaiya/phibitechbackend/internals/databases"
	commentModel "github.com/abassolaiya/phibitechbackend/internals/features/blogs/comments/model"
	commentService "github.com/abassolaiya/phibitechbackend/internals/features/blogs/comments/service"
	likeModel "github.com/abassolaiya/phibitechbackend/internals/features/blogs/likes/model"
	"github.com/abassolaiya/phibitechbackend/internals/features/blogs/posts/dto"
	"github.com/abassolaiya/phibitechbackend/internals/features/blogs/posts/model"
	authorModel "github.com/abassolaiya/phibitechbackend/internals/features/users/authors/model"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
)

var testNow = time.Date(2025, 5, 4, 10, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&authorModel.AuthorModel{},
		&model.BlogPostModel{},
		&commentModel.CommentModel{},
		&commentModel.ReplyModel{},
		&likeModel.LikeModel{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })
	return db
}

func seedAuthor(t *testing.T, db *gorm.DB, username string) authorModel.AuthorModel {
	t.Helper()
	a := authorModel.AuthorModel{
		AuthorFullName: username,
		AuthorUsername: username,
		AuthorEmail:    username + "@example.com",
		AuthorIsActive: true,
	}
	if err := db.Create(&a).Error; err != nil {
		t.Fatalf("seed author: %v", err)
	}
	return a
}

func newPost(t *testing.T, db *gorm.DB, author uuid.UUID, title string, published bool, tags ...string) dto.PostView {
	t.Helper()
	req := dto.CreatePostRequest{Title: title, Content: "body of " + title, Tags: tags, IsPublished: published}
	req.Normalize()
	v, err := CreatePost(context.Background(), db, author, req, testNow)
	if err != nil {
		t.Fatalf("create %q: %v", title, err)
	}
	return v
}

var firstPage = helper.Paging{Page: 1, PerPage: 10, Limit: 10}

func TestListPostsHidesOtherPeoplesDrafts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := seedAuthor(t, db, "alice")
	bob := seedAuthor(t, db, "bob")

	newPost(t, db, alice.AuthorID, "Shipping Go services", true)
	newPost(t, db, alice.AuthorID, "Unfinished thoughts", false)
	newPost(t, db, bob.AuthorID, "Bob's draft", false)

	cases := []struct {
		name   string
		viewer *uuid.UUID
		admin  bool
		want   int64
	}{
		{"anonymous", nil, false, 1},
		{"alice", &alice.AuthorID, false, 2},
		{"bob", &bob.AuthorID, false, 2},
		{"admin", &bob.AuthorID, true, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, total, err := ListPosts(ctx, db, ListFilter{}, firstPage, tc.viewer, tc.admin)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if total != tc.want {
				t.Fatalf("total = %d, want %d", total, tc.want)
			}
		})
	}

	if _, _, err := ListPosts(ctx, db, ListFilter{Mine: true}, firstPage, nil, false); err == nil {
		t.Fatal("mine=true without a viewer must fail")
	}
	mine, _, err := ListPosts(ctx, db, ListFilter{Mine: true}, firstPage, &bob.AuthorID, false)
	if err != nil || len(mine) != 1 || mine[0].Title != "Bob's draft" {
		t.Fatalf("mine = %+v, err %v", mine, err)
	}
}

func TestListPostsFilters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := seedAuthor(t, db, "alice")
	bob := seedAuthor(t, db, "bob")

	newPost(t, db, alice.AuthorID, "Go generics", true, "Go", "backend")
	newPost(t, db, alice.AuthorID, "Design systems", true, "design")
	newPost(t, db, bob.AuthorID, "Go at scale", true, "go")

	byTag, _, err := ListPosts(ctx, db, ListFilter{Tag: "GO"}, firstPage, nil, false)
	if err != nil || len(byTag) != 2 {
		t.Fatalf("tag filter = %d posts, err %v", len(byTag), err)
	}
	// tags match whole, never by prefix
	partial, _, _ := ListPosts(ctx, db, ListFilter{Tag: "back"}, firstPage, nil, false)
	if len(partial) != 0 {
		t.Fatalf("partial tag matched %d posts", len(partial))
	}

	byAuthor, _, err := ListPosts(ctx, db, ListFilter{Author: "Bob"}, firstPage, nil, false)
	if err != nil || len(byAuthor) != 1 || byAuthor[0].Author.Username != "bob" {
		t.Fatalf("author filter = %+v, err %v", byAuthor, err)
	}

	byQuery, _, err := ListPosts(ctx, db, ListFilter{Query: "design"}, firstPage, nil, false)
	if err != nil || len(byQuery) != 1 {
		t.Fatalf("query filter = %d posts, err %v", len(byQuery), err)
	}
	if byQuery[0].Content != "" {
		t.Fatal("listing must not carry the post body")
	}
}

func TestCreatePostSlugAndPublishStamp(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := seedAuthor(t, db, "alice")

	a := newPost(t, db, alice.AuthorID, "Hello, World!", false)
	b := newPost(t, db, alice.AuthorID, "Hello World", true)
	if a.Slug != "hello-world" || b.Slug != "hello-world-2" {
		t.Fatalf("slugs = %q, %q", a.Slug, b.Slug)
	}
	if a.PublishedAt != nil || b.PublishedAt == nil {
		t.Fatalf("published_at draft=%v published=%v", a.PublishedAt, b.PublishedAt)
	}

	owner := Actor{ID: alice.AuthorID}
	title := "Hello again"
	publish := true
	later := testNow.Add(time.Hour)
	got, err := UpdatePost(ctx, db, a.ID, owner, dto.UpdatePostRequest{Title: &title, IsPublished: &publish}, later)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Slug != "hello-world" || got.Title != title {
		t.Fatalf("slug=%q title=%q", got.Slug, got.Title)
	}
	if got.PublishedAt == nil || !got.PublishedAt.Equal(later) {
		t.Fatalf("published_at = %v, want %v", got.PublishedAt, later)
	}

	// republishing keeps the first stamp
	again, err := UpdatePost(ctx, db, a.ID, owner, dto.UpdatePostRequest{IsPublished: &publish}, later.Add(time.Hour))
	if err != nil {
		t.Fatalf("republish: %v", err)
	}
	if !again.PublishedAt.Equal(later) {
		t.Fatalf("republish moved published_at to %v", again.PublishedAt)
	}
}

func TestUpdatePostOwnership(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := seedAuthor(t, db, "alice")
	bob := seedAuthor(t, db, "bob")

	pub := newPost(t, db, alice.AuthorID, "Public post", true)
	draft := newPost(t, db, alice.AuthorID, "Secret draft", false)
	title := "hijacked"

	if _, err := UpdatePost(ctx, db, pub.ID, Actor{ID: bob.AuthorID}, dto.UpdatePostRequest{Title: &title}, testNow); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger on published post: err = %v, want ErrForbidden", err)
	}
	if _, err := UpdatePost(ctx, db, draft.ID, Actor{ID: bob.AuthorID}, dto.UpdatePostRequest{Title: &title}, testNow); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("stranger on draft: err = %v, want ErrPostNotFound", err)
	}
	if _, err := UpdatePost(ctx, db, draft.ID, Actor{ID: bob.AuthorID, Admin: true}, dto.UpdatePostRequest{Title: &title}, testNow); err != nil {
		t.Fatalf("admin update: %v", err)
	}
}

func TestGetPostDetailCarriesTree(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := seedAuthor(t, db, "alice")
	bob := seedAuthor(t, db, "bob")
	post := newPost(t, db, alice.AuthorID, "Threads", true)

	asBob := commentService.Actor{ID: bob.AuthorID}
	c, err := commentService.CreateComment(ctx, db, post.ID, asBob, "nice")
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if _, err := commentService.CreateReply(ctx, db, c.ID, commentService.Actor{ID: alice.AuthorID}, "thanks"); err != nil {
		t.Fatalf("reply: %v", err)
	}
	if _, err := ToggleLike(ctx, db, post.Slug, asBob, testNow); err != nil {
		t.Fatalf("like: %v", err)
	}

	detail, err := GetPostDetail(ctx, db, post.Slug, &bob.AuthorID, false)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if detail.LikeCount != 1 || !detail.LikedByMe || detail.CommentCount != 2 {
		t.Fatalf("counters likes=%d mine=%v comments=%d", detail.LikeCount, detail.LikedByMe, detail.CommentCount)
	}
	if len(detail.Comments) != 1 || len(detail.Comments[0].Replies) != 1 {
		t.Fatalf("tree = %+v", detail.Comments)
	}
	if detail.Content == "" || detail.Comments[0].Author.Username != "bob" {
		t.Fatalf("detail missing content or comment author: %+v", detail)
	}

	byID, err := GetPostDetail(ctx, db, post.ID.String(), nil, false)
	if err != nil || byID.ID != post.ID || byID.LikedByMe {
		t.Fatalf("detail by id = %+v, err %v", byID.PostView, err)
	}
}

func TestDeletePostCascades(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := seedAuthor(t, db, "alice")
	bob := seedAuthor(t, db, "bob")
	post := newPost(t, db, alice.AuthorID, "Short lived", true)
	keep := newPost(t, db, alice.AuthorID, "Keeper", true)

	asBob := commentService.Actor{ID: bob.AuthorID}
	c, _ := commentService.CreateComment(ctx, db, post.ID, asBob, "first")
	r, _ := commentService.CreateReply(ctx, db, c.ID, asBob, "second")
	commentService.ToggleCommentLike(ctx, db, c.ID, asBob, testNow)
	commentService.ToggleReplyLike(ctx, db, r.ID, asBob, testNow)
	ToggleLike(ctx, db, post.ID.String(), asBob, testNow)
	ToggleLike(ctx, db, keep.ID.String(), asBob, testNow)

	if _, err := DeletePost(ctx, db, post.ID, asBob); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger delete: err = %v", err)
	}
	if _, err := DeletePost(ctx, db, post.ID, Actor{ID: alice.AuthorID}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var comments, replies, likes int64
	db.Model(&commentModel.CommentModel{}).Count(&comments)
	db.Model(&commentModel.ReplyModel{}).Count(&replies)
	db.Model(&likeModel.LikeModel{}).Count(&likes)
	if comments != 0 || replies != 0 || likes != 1 {
		t.Fatalf("left behind comments=%d replies=%d likes=%d", comments, replies, likes)
	}
	if _, err := FindPost(ctx, db, post.Slug, nil, true); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("deleted post still found: %v", err)
	}
}
