// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package categories implements the category directory: a sorted listing
// served through a cache, and creation with a derived, collision-free slug.
package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"blogcore/internal/apperr"
	"blogcore/internal/models"
	"blogcore/internal/slug"
	"blogcore/internal/store"
	"blogcore/internal/validate"
)

// listKey is the cache key of the full listing.
const listKey = "categories:list"

// Store is the persistence the service needs. *store.CategoryStore
// satisfies it.
type Store interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByNameFold(ctx context.Context, name string) (*models.Category, error)
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
}

// Cache holds the listing between writes. *cache.JSON satisfies it.
type Cache interface {
	Get(ctx context.Context, key string, dst any) bool
	Set(ctx context.Context, key string, v any)
	Invalidate(ctx context.Context, key string)
}

// Service runs category operations.
type Service struct {
	store Store
	cache Cache
}

// NewService creates a category service. cache may be nil.
func NewService(s Store, c Cache) *Service {
	return &Service{store: s, cache: c}
}

// CreateInput is the body of a create request.
type CreateInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

var createMessages = validate.Messages{
	"Name.required": "Category name is required",
}

// List returns every category sorted by name.
func (s *Service) List(ctx context.Context) ([]models.Category, error) {
	var items []models.Category
	if s.cache != nil && s.cache.Get(ctx, listKey, &items) {
		return items, nil
	}

	items, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, listKey, items)
	}
	return items, nil
}

// Create adds a category. Names are unique ignoring case; the slug is
// derived from the name and suffixed until it is free.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := validate.Struct(in, createMessages); err != nil {
		return nil, err
	}

	existing, err := s.store.FindByNameFold(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("Category already exists")
	}

	sl, err := slug.Allocate(ctx, in.Name, func(ctx context.Context, candidate string) (bool, error) {
		return s.store.SlugExists(ctx, candidate, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("allocate category slug: %w", err)
	}

	c, err := s.store.Create(ctx, &models.Category{Name: in.Name, Slug: sl, Description: in.Description})
	if errors.Is(err, store.ErrDuplicate) {
		return nil, apperr.Conflict("Category already exists")
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, listKey)
	}
	return c, nil
}
