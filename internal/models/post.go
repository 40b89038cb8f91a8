// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Field limits for posts.
const (
	MaxTitleLen   = 100
	MaxExcerptLen = 200
)

// Post is a blog article. Comments are owned by the post and only ever
// appended to; AuthorID is fixed at creation.
type Post struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Slug          *string   `json:"slug,omitempty"`
	Excerpt       string    `json:"excerpt,omitempty"`
	Content       string    `json:"content"`
	CategoryID    uuid.UUID `json:"-"`
	AuthorID      uuid.UUID `json:"-"`
	Tags          []string  `json:"tags"`
	IsPublished   bool      `json:"isPublished"`
	FeaturedImage *string   `json:"featuredImage,omitempty"`
	ViewCount     int64     `json:"viewCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	// Expanded references, populated by store reads.
	Category *CategoryRef `json:"category"`
	Author   *UserRef     `json:"author"`
	Comments []Comment    `json:"comments"`
}

// AuthoredBy reports whether the given user created the post.
func (p *Post) AuthoredBy(userID uuid.UUID) bool {
	return p.AuthorID == userID
}

// Comment is an immutable entry in a post's comment list.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"-"`
	UserID    uuid.UUID `json:"-"`
	User      *UserRef  `json:"user"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
