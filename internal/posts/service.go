// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package posts implements the post operations: filtered listings, reads
// that count views, ownership-checked writes, featured image handling and
// the append-only comment list.
package posts

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"blogcore/internal/apperr"
	"blogcore/internal/attachment"
	"blogcore/internal/models"
	"blogcore/internal/pagination"
	"blogcore/internal/resolve"
	"blogcore/internal/store"
	"blogcore/internal/validate"
)

// SearchLimit caps the number of search results.
const SearchLimit = 20

// PostStore is the persistence the service needs. *store.PostStore
// satisfies it.
type PostStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	IncrementViews(ctx context.Context, id uuid.UUID) (int64, bool, error)
	List(ctx context.Context, f store.PostFilter, limit, offset int) ([]models.Post, error)
	Count(ctx context.Context, f store.PostFilter) (int, error)
	Comments(ctx context.Context, postIDs ...uuid.UUID) (map[uuid.UUID][]models.Comment, error)
	Create(ctx context.Context, p *models.Post) (*models.Post, error)
	Update(ctx context.Context, p *models.Post) (*models.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AppendComment(ctx context.Context, postID, userID uuid.UUID, content string) (*models.Comment, error)
}

// CategoryLookup resolves category references. *store.CategoryStore
// satisfies it.
type CategoryLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
}

// Attachments stores and releases featured images. *attachment.Manager
// satisfies it.
type Attachments interface {
	Store(ctx context.Context, up *attachment.Upload) (*string, error)
	Swap(previous, next *string)
	Remove(ref string)
}

// Service runs post operations.
type Service struct {
	posts       PostStore
	categories  CategoryLookup
	attachments Attachments
}

// NewService creates a post service.
func NewService(posts PostStore, categories CategoryLookup, attachments Attachments) *Service {
	return &Service{posts: posts, categories: categories, attachments: attachments}
}

// ListQuery holds the raw listing parameters. Category may be a key or a
// slug; Author is ignored unless it is a key.
type ListQuery struct {
	Category string
	Author   string
	Search   string
	Page     int
	Limit    int
}

// ListResult is one page of posts plus the pagination block computed over
// the whole filtered set.
type ListResult struct {
	Posts []models.Post
	Meta  pagination.Meta
}

// compileFilter resolves the category token and drops an author token that
// is not key-shaped.
func (s *Service) compileFilter(ctx context.Context, category, author, search string) (store.PostFilter, error) {
	f := store.PostFilter{Search: search}

	if category != "" {
		if id, ok := resolve.ParseID(category); ok {
			f.CategoryID = &id
		} else {
			c, err := s.categories.FindBySlug(ctx, category)
			if err != nil {
				return f, fmt.Errorf("resolve category filter: %w", err)
			}
			if c == nil {
				f.CategoryMissing = true
			} else {
				f.CategoryID = &c.ID
			}
		}
	}

	if id, ok := resolve.ParseID(author); ok {
		f.AuthorID = &id
	}
	return f, nil
}

// List returns one page of posts, newest first.
func (s *Service) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	f, err := s.compileFilter(ctx, q.Category, q.Author, q.Search)
	if err != nil {
		return nil, err
	}

	total, err := s.posts.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	meta := pagination.Paginate(total, q.Page, q.Limit)

	items := []models.Post{}
	if meta.Window() > 0 {
		items, err = s.posts.List(ctx, f, meta.Limit, meta.Offset())
		if err != nil {
			return nil, err
		}
		if err := s.withComments(ctx, items); err != nil {
			return nil, err
		}
	}
	return &ListResult{Posts: items, Meta: meta}, nil
}

// Search returns up to SearchLimit posts whose title, content or excerpt
// contains q, ignoring case.
func (s *Service) Search(ctx context.Context, q string) ([]models.Post, error) {
	if strings.TrimSpace(q) == "" {
		return nil, apperr.Validation("Search query is required")
	}
	items, err := s.posts.List(ctx, store.PostFilter{Search: q}, SearchLimit, 0)
	if err != nil {
		return nil, err
	}
	if err := s.withComments(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// withComments fills in the comment threads of items with one lookup.
func (s *Service) withComments(ctx context.Context, items []models.Post) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	comments, err := s.posts.Comments(ctx, ids...)
	if err != nil {
		return err
	}
	for i := range items {
		if c := comments[items[i].ID]; c != nil {
			items[i].Comments = c
		}
	}
	return nil
}

func (s *Service) withThread(ctx context.Context, p *models.Post) error {
	one := []models.Post{*p}
	if err := s.withComments(ctx, one); err != nil {
		return err
	}
	p.Comments = one[0].Comments
	return nil
}

// Get resolves a key or slug, counts the view and returns the post with its
// comments.
func (s *Service) Get(ctx context.Context, idOrSlug string) (*models.Post, error) {
	p, err := resolve.Resolve(ctx, idOrSlug, s.posts.FindByID, s.posts.FindBySlug)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("Post not found")
	}

	views, ok, err := s.posts.IncrementViews(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("Post not found")
	}
	p.ViewCount = views

	if err := s.withThread(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// resolveCategory maps a key or slug to a category id.
func (s *Service) resolveCategory(ctx context.Context, token string) (uuid.UUID, error) {
	c, err := resolve.Resolve(ctx, token, s.categories.FindByID, s.categories.FindBySlug)
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve category: %w", err)
	}
	if c == nil {
		return uuid.Nil, apperr.Validation("Category not found")
	}
	return c.ID, nil
}

// load fetches a post by key for a mutation and applies the ownership check.
func (s *Service) load(ctx context.Context, principal models.Principal, id uuid.UUID, verb string) (*models.Post, error) {
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("Post not found")
	}
	if !CanMutate(principal, p) {
		return nil, apperr.Forbidden("You do not have permission to %s this post", verb)
	}
	return p, nil
}

// Create stores a new post authored by the principal. When an upload is
// given it is stored first and becomes the featured image.
func (s *Service) Create(ctx context.Context, principal models.Principal, in CreateInput, up *attachment.Upload) (*models.Post, error) {
	in.normalize()
	if err := validate.Struct(in, createMessages); err != nil {
		return nil, err
	}

	categoryID, err := s.resolveCategory(ctx, in.Category)
	if err != nil {
		return nil, err
	}

	p := &models.Post{
		Title:       in.Title,
		Content:     in.Content,
		Excerpt:     in.Excerpt,
		CategoryID:  categoryID,
		AuthorID:    principal.ID,
		Tags:        ParseTags(in.Tags),
		IsPublished: ParseBool(in.IsPublished, true),
	}

	p.FeaturedImage, err = s.attachments.Store(ctx, up)
	if err != nil {
		return nil, fmt.Errorf("store featured image: %w", err)
	}

	created, err := s.posts.Create(ctx, p)
	if err != nil {
		if p.FeaturedImage != nil {
			s.attachments.Remove(*p.FeaturedImage)
		}
		return nil, err
	}
	return created, nil
}

// Update applies the present fields of in to the post. Only the author or
// an admin may update; the author itself never changes.
func (s *Service) Update(ctx context.Context, principal models.Principal, id uuid.UUID, in UpdateInput, up *attachment.Upload) (*models.Post, error) {
	p, err := s.load(ctx, principal, id, "update")
	if err != nil {
		return nil, err
	}

	in.normalize()
	if err := validate.Struct(in, updateMessages); err != nil {
		return nil, err
	}

	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.Excerpt != nil {
		p.Excerpt = *in.Excerpt
	}
	if in.IsPublished != nil {
		p.IsPublished = ParseBool(in.IsPublished, p.IsPublished)
	}
	if in.Tags != nil {
		p.Tags = ParseTags(in.Tags)
	}
	if in.Category != "" {
		if p.CategoryID, err = s.resolveCategory(ctx, in.Category); err != nil {
			return nil, err
		}
	}

	// The previous image stays referenced until the row is saved.
	previous := p.FeaturedImage
	next, err := s.attachments.Store(ctx, up)
	if err != nil {
		return nil, fmt.Errorf("store featured image: %w", err)
	}
	if next != nil {
		p.FeaturedImage = next
	}

	updated, err := s.posts.Update(ctx, p)
	if err == nil && updated == nil {
		err = apperr.NotFound("Post not found")
	}
	if err != nil {
		if next != nil {
			s.attachments.Remove(*next)
		}
		return nil, err
	}
	s.attachments.Swap(previous, next)

	if err := s.withThread(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the post and then releases its featured image.
func (s *Service) Delete(ctx context.Context, principal models.Principal, id uuid.UUID) error {
	p, err := s.load(ctx, principal, id, "delete")
	if err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, p.ID); err != nil {
		return err
	}
	if p.FeaturedImage != nil {
		s.attachments.Remove(*p.FeaturedImage)
	}
	return nil
}
