package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"blogcore/internal/apperr"
	"blogcore/internal/attachment"
	"blogcore/internal/models"
	"blogcore/internal/store"
)

type testEnv struct {
	svc    *Service
	posts  *memPosts
	cats   *memCategories
	files  *memAttachments
	tech   models.Category
	author models.Principal
	other  models.Principal
	admin  models.Principal
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		posts:  newMemPosts(),
		cats:   &memCategories{},
		files:  &memAttachments{},
		author: models.Principal{ID: uuid.New(), Role: models.RoleAuthor},
		other:  models.Principal{ID: uuid.New(), Role: models.RoleAuthor},
		admin:  models.Principal{ID: uuid.New(), Role: models.RoleAdmin},
	}
	env.tech = env.cats.add("Tech", "tech")
	env.svc = NewService(env.posts, env.cats, env.files)
	return env
}

func (e *testEnv) create(t *testing.T, title string) *models.Post {
	t.Helper()
	p, err := e.svc.Create(context.Background(), e.author, CreateInput{
		Title:    title,
		Content:  "Content of " + title,
		Category: "tech",
	}, nil)
	if err != nil {
		t.Fatalf("Create %q: %v", title, err)
	}
	return p
}

func strp(s string) *string { return &s }

func TestCreateDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p, err := env.svc.Create(ctx, env.author, CreateInput{
		Title:    "  Hello  ",
		Content:  "World",
		Category: env.tech.ID.String(),
		Tags:     "go, web",
	}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Title != "Hello" {
		t.Errorf("title: got %q, want trimmed", p.Title)
	}
	if !p.IsPublished {
		t.Error("posts are published by default")
	}
	if p.AuthorID != env.author.ID {
		t.Errorf("author: got %s, want %s", p.AuthorID, env.author.ID)
	}
	if p.CategoryID != env.tech.ID {
		t.Errorf("category: got %s, want %s", p.CategoryID, env.tech.ID)
	}
	if strings.Join(p.Tags, "|") != "go|web" {
		t.Errorf("tags: got %v", p.Tags)
	}
	if p.FeaturedImage != nil {
		t.Error("no upload means no featured image")
	}
}

func TestCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		in      CreateInput
		wantMsg string
	}{
		{"missing title", CreateInput{Content: "c", Category: "tech"}, "Title is required"},
		{"blank title", CreateInput{Title: "   ", Content: "c", Category: "tech"}, "Title is required"},
		{"long title", CreateInput{Title: strings.Repeat("é", 101), Content: "c", Category: "tech"}, "Title cannot exceed 100 characters"},
		{"missing content", CreateInput{Title: "t", Category: "tech"}, "Content is required"},
		{"long excerpt", CreateInput{Title: "t", Content: "c", Excerpt: strings.Repeat("x", 201), Category: "tech"}, "Excerpt cannot exceed 200 characters"},
		{"missing category", CreateInput{Title: "t", Content: "c"}, "Category is required"},
		{"unknown category slug", CreateInput{Title: "t", Content: "c", Category: "nope"}, "Category not found"},
		{"unknown category key", CreateInput{Title: "t", Content: "c", Category: uuid.NewString()}, "Category not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Create(ctx, env.author, tt.in, nil)
			ae, ok := apperr.As(err)
			if !ok || ae.Status != 400 {
				t.Fatalf("got %v, want a 400", err)
			}
			if ae.Message != tt.wantMsg {
				t.Errorf("message: got %q, want %q", ae.Message, tt.wantMsg)
			}
		})
	}

	if n, _ := env.posts.Count(ctx, store.PostFilter{}); n != 0 {
		t.Errorf("no post should have been stored, got %d", n)
	}
}

func TestCreateWithUpload(t *testing.T) {
	env := newTestEnv(t)
	up := &attachment.Upload{Name: "cover.png", ContentType: "image/png", Body: strings.NewReader("x")}

	p, err := env.svc.Create(context.Background(), env.author, CreateInput{
		Title: "Pic", Content: "c", Category: "tech", IsPublished: "false",
	}, up)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.FeaturedImage == nil || *p.FeaturedImage != "/uploads/cover.png" {
		t.Errorf("featured image: got %v", p.FeaturedImage)
	}
	if p.IsPublished {
		t.Error(`isPublished "false" should be honoured`)
	}
}

func TestGetIncrementsViewsByKeyAndSlug(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p := env.create(t, "Counted")
	env.posts.posts[p.ID].Slug = strp("counted")

	for i, token := range []string{p.ID.String(), "counted", p.ID.String()} {
		got, err := env.svc.Get(ctx, token)
		if err != nil {
			t.Fatalf("Get(%q): %v", token, err)
		}
		if got.ViewCount != int64(i+1) {
			t.Errorf("Get(%q) views: got %d, want %d", token, got.ViewCount, i+1)
		}
	}

	if _, err := env.svc.Get(ctx, "missing"); !apperr.IsNotFound(err) {
		t.Errorf("missing slug: got %v, want not found", err)
	}
	if _, err := env.svc.Get(ctx, uuid.NewString()); !apperr.IsNotFound(err) {
		t.Errorf("missing key: got %v, want not found", err)
	}
	if v := env.posts.posts[p.ID].ViewCount; v != 3 {
		t.Errorf("failed reads must not count, got %d", v)
	}
}

func TestGetFallsBackToSlugForKeyShapedToken(t *testing.T) {
	env := newTestEnv(t)
	p := env.create(t, "Odd slug")
	token := uuid.NewString()
	env.posts.posts[p.ID].Slug = &token

	got, err := env.svc.Get(context.Background(), token)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("got post %s, want %s", got.ID, p.ID)
	}
}

func TestListPaginationAndFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	other := env.cats.add("Life", "life")

	for i := 0; i < 23; i++ {
		env.create(t, fmt.Sprintf("Post %02d", i))
	}
	if _, err := env.svc.Create(ctx, env.other, CreateInput{Title: "Gopher diary", Content: "c", Category: "life"}, nil); err != nil {
		t.Fatalf("Create: %v", err)
	}

	res, err := env.svc.List(ctx, ListQuery{Category: "tech", Page: 3, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if res.Meta.Total != 23 || res.Meta.TotalPages != 3 || len(res.Posts) != 3 {
		t.Errorf("page 3: got meta %+v with %d posts", res.Meta, len(res.Posts))
	}

	res, _ = env.svc.List(ctx, ListQuery{Category: "tech", Page: 1, Limit: 10})
	if res.Posts[0].Title != "Post 22" {
		t.Errorf("newest first: got %q", res.Posts[0].Title)
	}

	res, _ = env.svc.List(ctx, ListQuery{Category: "tech", Page: 4, Limit: 10})
	if len(res.Posts) != 0 || res.Meta.TotalPages != 3 {
		t.Errorf("beyond last page: got %d posts, meta %+v", len(res.Posts), res.Meta)
	}

	res, _ = env.svc.List(ctx, ListQuery{Category: "no-such-category"})
	if res.Meta.Total != 0 || res.Meta.TotalPages != 1 || len(res.Posts) != 0 {
		t.Errorf("unknown category slug must match nothing, got %+v", res.Meta)
	}

	res, _ = env.svc.List(ctx, ListQuery{Category: other.ID.String()})
	if res.Meta.Total != 1 {
		t.Errorf("category by key: got %d", res.Meta.Total)
	}

	res, _ = env.svc.List(ctx, ListQuery{Author: env.other.ID.String()})
	if res.Meta.Total != 1 {
		t.Errorf("author filter: got %d", res.Meta.Total)
	}

	res, _ = env.svc.List(ctx, ListQuery{Author: "not-a-key"})
	if res.Meta.Total != 24 {
		t.Errorf("non-key author is ignored: got %d", res.Meta.Total)
	}

	res, _ = env.svc.List(ctx, ListQuery{Search: "GOPHER"})
	if res.Meta.Total != 1 {
		t.Errorf("search: got %d", res.Meta.Total)
	}
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		env.create(t, fmt.Sprintf("Match %d", i))
	}
	env.create(t, "Other")

	if _, err := env.svc.Search(ctx, ""); !apperr.IsValidation(err) {
		t.Errorf("empty q: got %v, want validation error", err)
	}

	got, err := env.svc.Search(ctx, "match")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != SearchLimit {
		t.Errorf("results: got %d, want %d", len(got), SearchLimit)
	}
}

func TestUpdateForbiddenLeavesPostUnchanged(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.create(t, "Mine")

	_, err := env.svc.Update(ctx, env.other, p.ID, UpdateInput{Title: strp("Hijacked")}, nil)
	if !apperr.IsForbidden(err) {
		t.Fatalf("got %v, want forbidden", err)
	}
	if err := env.svc.Delete(ctx, env.other, p.ID); !apperr.IsForbidden(err) {
		t.Fatalf("delete: got %v, want forbidden", err)
	}

	cur, _ := env.posts.FindByID(ctx, p.ID)
	if cur == nil || cur.Title != "Mine" {
		t.Errorf("post changed: %+v", cur)
	}
}

func TestUpdateByAuthorAndAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	life := env.cats.add("Life", "life")
	p := env.create(t, "Draft")

	got, err := env.svc.Update(ctx, env.author, p.ID, UpdateInput{
		Title:       strp(" Final "),
		Tags:        []any{"a", "b"},
		IsPublished: false,
		Category:    "life",
	}, nil)
	if err != nil {
		t.Fatalf("author update: %v", err)
	}
	if got.Title != "Final" || got.IsPublished || got.CategoryID != life.ID || len(got.Tags) != 2 {
		t.Errorf("update not applied: %+v", got)
	}
	if got.Content != p.Content {
		t.Error("absent fields must be left alone")
	}

	got, err = env.svc.Update(ctx, env.admin, p.ID, UpdateInput{Content: strp("Edited by admin")}, nil)
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if got.AuthorID != env.author.ID {
		t.Errorf("author reassigned to %s", got.AuthorID)
	}
}

func TestUpdateErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.create(t, "Target")

	if _, err := env.svc.Update(ctx, env.author, uuid.New(), UpdateInput{}, nil); !apperr.IsNotFound(err) {
		t.Errorf("missing post: got %v", err)
	}
	if _, err := env.svc.Update(ctx, env.author, p.ID, UpdateInput{Title: strp("")}, nil); !apperr.IsValidation(err) {
		t.Errorf("empty title: got %v", err)
	}
	if _, err := env.svc.Update(ctx, env.author, p.ID, UpdateInput{Excerpt: strp(strings.Repeat("x", 201))}, nil); !apperr.IsValidation(err) {
		t.Errorf("long excerpt: got %v", err)
	}
	if _, err := env.svc.Update(ctx, env.author, p.ID, UpdateInput{Category: "missing"}, nil); !apperr.IsValidation(err) {
		t.Errorf("unknown category: got %v", err)
	}
}

func TestUpdateReplacesAttachment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := &attachment.Upload{Name: "one.png", Body: strings.NewReader("1")}
	p, err := env.svc.Create(ctx, env.author, CreateInput{Title: "Pic", Content: "c", Category: "tech"}, first)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	second := &attachment.Upload{Name: "two.png", Body: strings.NewReader("2")}
	got, err := env.svc.Update(ctx, env.author, p.ID, UpdateInput{}, second)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.FeaturedImage == nil || *got.FeaturedImage != "/uploads/two.png" {
		t.Errorf("featured image: got %v", got.FeaturedImage)
	}
	if len(env.files.removed) != 1 || env.files.removed[0] != "/uploads/one.png" {
		t.Errorf("old image should be released, got %v", env.files.removed)
	}

	got, err = env.svc.Update(ctx, env.author, p.ID, UpdateInput{Title: strp("No file")}, nil)
	if err != nil {
		t.Fatalf("Update without file: %v", err)
	}
	if got.FeaturedImage == nil || *got.FeaturedImage != "/uploads/two.png" {
		t.Errorf("image must survive an update without upload, got %v", got.FeaturedImage)
	}
}

func TestUpdateFailureKeepsPreviousAttachment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := &attachment.Upload{Name: "one.png", Body: strings.NewReader("1")}
	p, err := env.svc.Create(ctx, env.author, CreateInput{Title: "Pic", Content: "c", Category: "tech"}, first)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	env.posts.updateErr = errors.New("connection reset")
	second := &attachment.Upload{Name: "two.png", Body: strings.NewReader("2")}
	if _, err := env.svc.Update(ctx, env.author, p.ID, UpdateInput{}, second); err == nil {
		t.Fatal("expected the store error")
	}

	if len(env.files.removed) != 1 || env.files.removed[0] != "/uploads/two.png" {
		t.Errorf("only the new file should be released, got %v", env.files.removed)
	}
	cur, _ := env.posts.FindByID(ctx, p.ID)
	if cur == nil || cur.FeaturedImage == nil || *cur.FeaturedImage != "/uploads/one.png" {
		t.Errorf("record should still reference the old image, got %+v", cur)
	}
}

func TestDeleteReleasesAttachment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	up := &attachment.Upload{Name: "gone.png", Body: strings.NewReader("x")}
	p, err := env.svc.Create(ctx, env.author, CreateInput{Title: "Bye", Content: "c", Category: "tech"}, up)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := env.svc.Delete(ctx, env.admin, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if cur, _ := env.posts.FindByID(ctx, p.ID); cur != nil {
		t.Error("post should be gone")
	}
	if len(env.files.removed) != 1 || env.files.removed[0] != "/uploads/gone.png" {
		t.Errorf("removed: got %v", env.files.removed)
	}
	if err := env.svc.Delete(ctx, env.admin, p.ID); !apperr.IsNotFound(err) {
		t.Errorf("second delete: got %v, want not found", err)
	}
}

func TestCommentsAppendInOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.create(t, "Discuss")

	bodies := []string{"first", "second", "third"}
	for i, b := range bodies {
		who := env.author
		if i%2 == 1 {
			who = env.other
		}
		c, err := env.svc.AddComment(ctx, who, p.ID, CommentInput{Content: "  " + b + "  "})
		if err != nil {
			t.Fatalf("AddComment: %v", err)
		}
		if c.Content != b || c.UserID != who.ID {
			t.Errorf("comment: got %+v", c)
		}
	}

	got, err := env.svc.Get(ctx, p.ID.String())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Comments) != len(bodies) {
		t.Fatalf("comments: got %d, want %d", len(got.Comments), len(bodies))
	}
	for i, b := range bodies {
		if got.Comments[i].Content != b {
			t.Errorf("comment %d: got %q, want %q", i, got.Comments[i].Content, b)
		}
	}

	if _, err := env.svc.AddComment(ctx, env.author, p.ID, CommentInput{Content: "   "}); !apperr.IsValidation(err) {
		t.Errorf("blank comment: got %v", err)
	}
	if _, err := env.svc.AddComment(ctx, env.author, uuid.New(), CommentInput{Content: "hi"}); !apperr.IsNotFound(err) {
		t.Errorf("missing post: got %v", err)
	}
}

func TestCommentsOnEveryPostResponse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.create(t, "Threaded")
	env.create(t, "Quiet")

	for _, b := range []string{"one", "two"} {
		if _, err := env.svc.AddComment(ctx, env.other, p.ID, CommentInput{Content: b}); err != nil {
			t.Fatalf("AddComment: %v", err)
		}
	}

	updated, err := env.svc.Update(ctx, env.author, p.ID, UpdateInput{Title: strp("Threaded again")}, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(updated.Comments) != 2 {
		t.Errorf("update: got %d comments, want 2", len(updated.Comments))
	}

	page, err := env.svc.List(ctx, ListQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	counts := map[string]int{}
	for _, it := range page.Posts {
		counts[it.Title] = len(it.Comments)
		if it.Comments == nil {
			t.Errorf("list: %q has nil comments", it.Title)
		}
	}
	if counts["Threaded again"] != 2 || counts["Quiet"] != 0 {
		t.Errorf("list: got %v", counts)
	}

	found, err := env.svc.Search(ctx, "threaded")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(found) != 1 || len(found[0].Comments) != 2 {
		t.Errorf("search: got %+v", found)
	}
}
