// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package pagination computes page windows and page-count metadata for
// listings.
package pagination

const (
	DefaultPage  = 1
	DefaultLimit = 10
	// MaxLimit is the largest page size accepted at the HTTP boundary.
	MaxLimit = 50
)

// Meta is the pagination block returned alongside a listing.
type Meta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// Normalize applies the defaults for unset or non-positive values.
func Normalize(page, limit int) (int, int) {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return page, limit
}

// Paginate builds the metadata for a filtered set of total items.
// An empty set still reports exactly one page.
func Paginate(total, page, limit int) Meta {
	page, limit = Normalize(page, limit)
	pages := (total + limit - 1) / limit
	if pages < 1 {
		pages = 1
	}
	return Meta{Total: total, Page: page, Limit: limit, TotalPages: pages}
}

// Offset is the number of items skipped before this page.
func (m Meta) Offset() int {
	return (m.Page - 1) * m.Limit
}

// Window returns the number of items that land on this page.
func (m Meta) Window() int {
	remaining := m.Total - m.Offset()
	switch {
	case remaining <= 0:
		return 0
	case remaining < m.Limit:
		return remaining
	default:
		return m.Limit
	}
}
