// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogcore/internal/apperr"
	"blogcore/internal/attachment"
	"blogcore/internal/middleware"
	"blogcore/internal/models"
	"blogcore/internal/pagination"
	"blogcore/internal/resolve"
)

const (
	// maxJSONBody bounds JSON request bodies.
	maxJSONBody = 1 << 20
	// multipartOverhead is the room left for form fields next to the file.
	multipartOverhead = 1 << 20
	// uploadField is the multipart field carrying the featured image.
	uploadField = "featuredImage"
)

// decodeJSON reads a JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.PayloadTooLarge("Request body too large")
		}
		return apperr.Validation("Invalid JSON body")
	}
	return nil
}

// isMultipart reports whether the request carries a multipart form.
func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// parseMultipart parses the form, keeping at most limit bytes of file data
// plus some room for fields. The returned cleanup removes any temporary
// files the parse spilled to disk and must be deferred by the caller.
func parseMultipart(w http.ResponseWriter, r *http.Request, limit int64) (*multipart.Form, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, func() {}, apperr.PayloadTooLarge("File too large. Maximum size is %d MB", limit>>20)
		}
		return nil, func() {}, apperr.Validation("Invalid multipart form")
	}

	form := r.MultipartForm
	return form, func() {
		if err := form.RemoveAll(); err != nil {
			slog.Warn("multipart cleanup failed", "error", err)
		}
	}, nil
}

// formValue returns the value of a multipart field and whether it was sent.
func formValue(form *multipart.Form, key string) (string, bool) {
	vals, ok := form.Value[key]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// formTags returns the tags field: a list when repeated, otherwise the
// single (possibly comma-separated) value. nil when absent.
func formTags(form *multipart.Form) any {
	vals, ok := form.Value["tags"]
	if !ok {
		vals, ok = form.Value["tags[]"]
	}
	switch {
	case !ok || len(vals) == 0:
		return nil
	case len(vals) == 1:
		return vals[0]
	default:
		return vals
	}
}

// formUpload inspects the featured image of a parsed multipart form.
// Returns nil when no file was sent. The returned closer must be called
// once the upload has been stored.
func formUpload(form *multipart.Form, lim attachment.Limits) (*attachment.Upload, func(), error) {
	headers := form.File[uploadField]
	if len(headers) == 0 {
		return nil, func() {}, nil
	}
	fh := headers[0]

	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, fmt.Errorf("open upload: %w", err)
	}
	closer := func() { f.Close() }

	up, err := attachment.Inspect(fh.Filename, fh.Size, f, lim)
	if err != nil {
		closer()
		return nil, func() {}, err
	}
	return up, closer, nil
}

// principal returns the authenticated principal of the request.
func principal(r *http.Request) (models.Principal, error) {
	p, ok := middleware.PrincipalFromCtx(r.Context())
	if !ok {
		return models.Principal{}, apperr.Unauthorized("Not authorized, no token provided")
	}
	return p, nil
}

// postIDParam parses the {id} route parameter, which must be a key.
func postIDParam(r *http.Request) (uuid.UUID, error) {
	id, ok := resolve.ParseID(chi.URLParam(r, "id"))
	if !ok {
		return uuid.Nil, apperr.Validation("Post ID must be a valid ID")
	}
	return id, nil
}

// pageParams validates the page and limit query parameters. Absent values
// fall back to the defaults.
func pageParams(r *http.Request) (page, limit int, err error) {
	q := r.URL.Query()
	page, limit = pagination.DefaultPage, pagination.DefaultLimit

	if v := q.Get("page"); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n < 1 {
			return 0, 0, apperr.Validation("Page must be a positive integer")
		}
		page = n
	}
	if v := q.Get("limit"); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n < 1 || n > pagination.MaxLimit {
			return 0, 0, apperr.Validation("Limit must be between 1 and %d", pagination.MaxLimit)
		}
		limit = n
	}
	return page, limit, nil
}
