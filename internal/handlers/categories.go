package handlers

import (
	"context"
	"net/http"

	"blogcore/internal/categories"
	"blogcore/internal/models"
	"blogcore/internal/respond"
)

// CategoryService is the category API the handlers drive.
type CategoryService interface {
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, in categories.CreateInput) (*models.Category, error)
}

// Categories groups the category handlers.
type Categories struct {
	svc CategoryService
}

// NewCategories creates the category handler group.
func NewCategories(svc CategoryService) *Categories {
	return &Categories{svc: svc}
}

// List handles GET /api/categories.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, http.StatusOK, items)
}

// Create handles POST /api/categories. Admin only; the router enforces it.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var in categories.CreateInput
	if err := decodeJSON(w, r, &in); err != nil {
		respond.Error(w, r, err)
		return
	}

	c, err := h.svc.Create(r.Context(), in)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, http.StatusCreated, c)
}
