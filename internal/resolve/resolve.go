// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package resolve turns a user-supplied token that may be either a primary
// key or a slug into a record. Posts and categories share the same rules.
package resolve

import (
	"context"

	"github.com/google/uuid"
)

// ByID looks a record up by primary key. Returns (nil, nil) on a miss.
type ByID[T any] func(ctx context.Context, id uuid.UUID) (*T, error)

// BySlug looks a record up by slug. Returns (nil, nil) on a miss.
type BySlug[T any] func(ctx context.Context, slug string) (*T, error)

// ParseID reports whether token has the primary-key shape and returns the key.
func ParseID(token string) (uuid.UUID, bool) {
	id, err := uuid.Parse(token)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// IsID reports whether token has the primary-key shape.
func IsID(token string) bool {
	_, ok := ParseID(token)
	return ok
}

// Resolve finds the record a token denotes. A key-shaped token is looked up
// by key first and falls back to a slug lookup with the raw token when the
// key misses. Any other token goes straight to the slug lookup. A nil record
// with a nil error means neither lookup matched.
func Resolve[T any](ctx context.Context, token string, byID ByID[T], bySlug BySlug[T]) (*T, error) {
	if id, ok := ParseID(token); ok {
		rec, err := byID(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return rec, nil
		}
	}
	return bySlug(ctx, token)
}
