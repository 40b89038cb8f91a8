// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared fakes for the handler tests. Services are
// replaced with in-memory doubles so no database or Valkey is needed.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogcore/internal/apperr"
	"blogcore/internal/attachment"
	"blogcore/internal/categories"
	"blogcore/internal/middleware"
	"blogcore/internal/models"
	"blogcore/internal/pagination"
	"blogcore/internal/posts"
	"blogcore/internal/session"
)

// fakePosts records the calls made by the post handlers.
type fakePosts struct {
	listQuery posts.ListQuery
	listed    []models.Post
	total     int

	created   *posts.CreateInput
	updated   *posts.UpdateInput
	upload    *attachment.Upload
	deletedID uuid.UUID
	commentOn uuid.UUID
	who       models.Principal

	err error
}

func (f *fakePosts) List(_ context.Context, q posts.ListQuery) (*posts.ListResult, error) {
	f.listQuery = q
	if f.err != nil {
		return nil, f.err
	}
	return &posts.ListResult{Posts: f.listed, Meta: pagination.Paginate(f.total, q.Page, q.Limit)}, nil
}

func (f *fakePosts) Search(_ context.Context, q string) ([]models.Post, error) {
	if q == "" {
		return nil, apperr.Validation("Search query is required")
	}
	return f.listed, f.err
}

func (f *fakePosts) Get(_ context.Context, idOrSlug string) (*models.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.listed {
		if p.ID.String() == idOrSlug {
			return &p, nil
		}
	}
	return nil, apperr.NotFound("Post not found")
}

func (f *fakePosts) Create(_ context.Context, p models.Principal, in posts.CreateInput, up *attachment.Upload) (*models.Post, error) {
	f.who, f.created, f.upload = p, &in, up
	if f.err != nil {
		return nil, f.err
	}
	return &models.Post{ID: uuid.New(), Title: in.Title, Content: in.Content, AuthorID: p.ID}, nil
}

func (f *fakePosts) Update(_ context.Context, p models.Principal, id uuid.UUID, in posts.UpdateInput, up *attachment.Upload) (*models.Post, error) {
	f.who, f.updated, f.upload = p, &in, up
	if f.err != nil {
		return nil, f.err
	}
	return &models.Post{ID: id}, nil
}

func (f *fakePosts) Delete(_ context.Context, p models.Principal, id uuid.UUID) error {
	f.who, f.deletedID = p, id
	return f.err
}

func (f *fakePosts) AddComment(_ context.Context, p models.Principal, postID uuid.UUID, in posts.CommentInput) (*models.Comment, error) {
	f.who, f.commentOn = p, postID
	if f.err != nil {
		return nil, f.err
	}
	return &models.Comment{ID: uuid.New(), Content: in.Content}, nil
}

// fakeCategories is an in-memory CategoryService.
type fakeCategories struct {
	items []models.Category
}

func (f *fakeCategories) List(context.Context) ([]models.Category, error) {
	return f.items, nil
}

func (f *fakeCategories) Create(_ context.Context, in categories.CreateInput) (*models.Category, error) {
	if in.Name == "" {
		return nil, apperr.Validation("Category name is required")
	}
	for _, c := range f.items {
		if c.Name == in.Name {
			return nil, apperr.Conflict("Category already exists")
		}
	}
	c := models.Category{ID: uuid.New(), Name: in.Name, Slug: in.Name}
	f.items = append(f.items, c)
	return &c, nil
}

// asUser attaches a session for p to the request, as LoadSession would.
func asUser(r *http.Request, p models.Principal) *http.Request {
	data := &session.Data{UserID: p.ID, Role: p.Role}
	ctx := context.WithValue(r.Context(), middleware.SessionKey, data)
	ctx = context.WithValue(ctx, middleware.TokenKey, "test-token")
	return r.WithContext(ctx)
}

// postRouter mounts the post handlers on their API paths.
func postRouter(h *Posts) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/posts", h.List)
	r.Get("/api/posts/search", h.Search)
	r.Get("/api/posts/{idOrSlug}", h.Get)
	r.Post("/api/posts", h.Create)
	r.Put("/api/posts/{id}", h.Update)
	r.Delete("/api/posts/{id}", h.Delete)
	r.Post("/api/posts/{id}/comments", h.AddComment)
	return r
}

// envelope is the decoded response body.
type envelope struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message"`
	Data       json.RawMessage  `json:"data"`
	Pagination *pagination.Meta `json:"pagination"`
	Token      string           `json:"token"`
	User       *models.User     `json:"user"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return env
}
