// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON API: posts, comments, categories and
// the session endpoints. Handlers translate requests into service calls and
// service results into the response envelope.
package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogcore/internal/apperr"
	"blogcore/internal/attachment"
	"blogcore/internal/models"
	"blogcore/internal/posts"
	"blogcore/internal/respond"
)

// PostService is the post API the handlers drive. *posts.Service
// satisfies it.
type PostService interface {
	List(ctx context.Context, q posts.ListQuery) (*posts.ListResult, error)
	Search(ctx context.Context, q string) ([]models.Post, error)
	Get(ctx context.Context, idOrSlug string) (*models.Post, error)
	Create(ctx context.Context, p models.Principal, in posts.CreateInput, up *attachment.Upload) (*models.Post, error)
	Update(ctx context.Context, p models.Principal, id uuid.UUID, in posts.UpdateInput, up *attachment.Upload) (*models.Post, error)
	Delete(ctx context.Context, p models.Principal, id uuid.UUID) error
	AddComment(ctx context.Context, p models.Principal, postID uuid.UUID, in posts.CommentInput) (*models.Comment, error)
}

// Posts groups the post and comment handlers.
type Posts struct {
	svc    PostService
	limits attachment.Limits
}

// NewPosts creates the post handler group. limits bounds featured image
// uploads.
func NewPosts(svc PostService, limits attachment.Limits) *Posts {
	if limits.MaxBytes <= 0 {
		limits.MaxBytes = attachment.DefaultMaxBytes
	}
	return &Posts{svc: svc, limits: limits}
}

// List handles GET /api/posts.
func (h *Posts) List(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pageParams(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	q := r.URL.Query()
	res, err := h.svc.List(r.Context(), posts.ListQuery{
		Category: q.Get("category"),
		Author:   q.Get("author"),
		Search:   q.Get("search"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Page(w, res.Posts, res.Meta)
}

// Search handles GET /api/posts/search.
func (h *Posts) Search(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, http.StatusOK, items)
}

// Get handles GET /api/posts/{idOrSlug}.
func (h *Posts) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, http.StatusOK, p)
}

// Create handles POST /api/posts with a JSON or multipart body.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	who, err := principal(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var in posts.CreateInput
	var up *attachment.Upload
	done := func() {}

	if isMultipart(r) {
		form, cleanup, err := parseMultipart(w, r, h.limits.MaxBytes)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		defer cleanup()
		in.Title, _ = formValue(form, "title")
		in.Content, _ = formValue(form, "content")
		in.Excerpt, _ = formValue(form, "excerpt")
		in.Category, _ = formValue(form, "category")
		in.Tags = formTags(form)
		if v, ok := formValue(form, "isPublished"); ok {
			in.IsPublished = v
		}
		if up, done, err = formUpload(form, h.limits); err != nil {
			respond.Error(w, r, err)
			return
		}
	} else if err := decodeJSON(w, r, &in); err != nil {
		respond.Error(w, r, err)
		return
	}
	defer done()

	p, err := h.svc.Create(r.Context(), who, in, up)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, http.StatusCreated, p)
}

// Update handles PUT /api/posts/{id} with a JSON or multipart body.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	who, err := principal(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	id, err := postIDParam(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var in posts.UpdateInput
	var up *attachment.Upload
	done := func() {}

	if isMultipart(r) {
		form, cleanup, err := parseMultipart(w, r, h.limits.MaxBytes)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		defer cleanup()
		for key, dst := range map[string]**string{"title": &in.Title, "content": &in.Content, "excerpt": &in.Excerpt} {
			if v, ok := formValue(form, key); ok {
				*dst = &v
			}
		}
		in.Category, _ = formValue(form, "category")
		in.Tags = formTags(form)
		if v, ok := formValue(form, "isPublished"); ok {
			in.IsPublished = v
		}
		if up, done, err = formUpload(form, h.limits); err != nil {
			respond.Error(w, r, err)
			return
		}
	} else if err := decodeJSON(w, r, &in); err != nil {
		respond.Error(w, r, err)
		return
	}
	defer done()

	p, err := h.svc.Update(r.Context(), who, id, in, up)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, http.StatusOK, p)
}

// Delete handles DELETE /api/posts/{id}.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	who, err := principal(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	id, err := postIDParam(r)
	if err != nil {
		// No post can carry a malformed key.
		respond.Error(w, r, apperr.NotFound("Post not found"))
		return
	}

	if err := h.svc.Delete(r.Context(), who, id); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Message(w, http.StatusOK, "Post removed")
}

// AddComment handles POST /api/posts/{id}/comments.
func (h *Posts) AddComment(w http.ResponseWriter, r *http.Request) {
	who, err := principal(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	id, err := postIDParam(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var in posts.CommentInput
	if err := decodeJSON(w, r, &in); err != nil {
		respond.Error(w, r, err)
		return
	}

	c, err := h.svc.AddComment(r.Context(), who, id, in)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, http.StatusCreated, c)
}
