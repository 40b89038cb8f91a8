package posts

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"blogcore/internal/attachment"
	"blogcore/internal/models"
	"blogcore/internal/store"
)

// memPosts is an in-memory PostStore with the same ordering and filter
// semantics as the SQL store.
type memPosts struct {
	mu       sync.Mutex
	posts    map[uuid.UUID]*models.Post
	comments map[uuid.UUID][]models.Comment
	clock    time.Time

	updateErr error
}

func newMemPosts() *memPosts {
	return &memPosts{
		posts:    map[uuid.UUID]*models.Post{},
		comments: map[uuid.UUID][]models.Comment{},
		clock:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memPosts) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func clonePost(p *models.Post) *models.Post {
	c := *p
	c.Tags = append([]string{}, p.Tags...)
	c.Comments = []models.Comment{}
	return &c
}

func (m *memPosts) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.posts[id]; ok {
		return clonePost(p), nil
	}
	return nil, nil
}

func (m *memPosts) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.Slug != nil && *p.Slug == slug {
			return clonePost(p), nil
		}
	}
	return nil, nil
}

func (m *memPosts) IncrementViews(ctx context.Context, id uuid.UUID) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return 0, false, nil
	}
	p.ViewCount++
	return p.ViewCount, true, nil
}

func (m *memPosts) match(p *models.Post, f store.PostFilter) bool {
	if f.CategoryMissing {
		return false
	}
	if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
		return false
	}
	if f.AuthorID != nil && p.AuthorID != *f.AuthorID {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Title), q) &&
			!strings.Contains(strings.ToLower(p.Content), q) &&
			!strings.Contains(strings.ToLower(p.Excerpt), q) {
			return false
		}
	}
	return true
}

func (m *memPosts) filtered(f store.PostFilter) []models.Post {
	var out []models.Post
	for _, p := range m.posts {
		if m.match(p, f) {
			out = append(out, *clonePost(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() > out[j].ID.String()
	})
	return out
}

func (m *memPosts) List(ctx context.Context, f store.PostFilter, limit, offset int) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.filtered(f)
	if offset >= len(all) {
		return []models.Post{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memPosts) Count(ctx context.Context, f store.PostFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.filtered(f)), nil
}

func (m *memPosts) Comments(ctx context.Context, postIDs ...uuid.UUID) (map[uuid.UUID][]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[uuid.UUID][]models.Comment{}
	for _, id := range postIDs {
		if c := m.comments[id]; len(c) > 0 {
			out[id] = append([]models.Comment{}, c...)
		}
	}
	return out, nil
}

func (m *memPosts) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	m.mu.Lock()
	c := clonePost(p)
	c.ID = uuid.New()
	c.CreatedAt = m.tick()
	c.UpdatedAt = c.CreatedAt
	m.posts[c.ID] = c
	m.mu.Unlock()
	return m.FindByID(ctx, c.ID)
}

func (m *memPosts) Update(ctx context.Context, p *models.Post) (*models.Post, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	m.mu.Lock()
	cur, ok := m.posts[p.ID]
	if !ok {
		m.mu.Unlock()
		return nil, nil
	}
	author := cur.AuthorID
	next := clonePost(p)
	next.AuthorID = author
	next.CreatedAt = cur.CreatedAt
	next.ViewCount = cur.ViewCount
	next.UpdatedAt = m.tick()
	m.posts[p.ID] = next
	m.mu.Unlock()
	return m.FindByID(ctx, p.ID)
}

func (m *memPosts) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.posts, id)
	delete(m.comments, id)
	return nil
}

func (m *memPosts) AppendComment(ctx context.Context, postID, userID uuid.UUID, content string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[postID]; !ok {
		return nil, nil
	}
	c := models.Comment{
		ID:        uuid.New(),
		PostID:    postID,
		UserID:    userID,
		User:      &models.UserRef{ID: userID},
		Content:   content,
		CreatedAt: m.tick(),
	}
	m.comments[postID] = append(m.comments[postID], c)
	return &c, nil
}

// memCategories is an in-memory CategoryLookup.
type memCategories struct {
	items []models.Category
}

func (m *memCategories) add(name, slug string) models.Category {
	c := models.Category{ID: uuid.New(), Name: name, Slug: slug}
	m.items = append(m.items, c)
	return c
}

func (m *memCategories) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			return &m.items[i], nil
		}
	}
	return nil, nil
}

func (m *memCategories) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	for i := range m.items {
		if m.items[i].Slug == slug {
			return &m.items[i], nil
		}
	}
	return nil, nil
}

// memAttachments records the lifecycle calls it receives.
type memAttachments struct {
	mu      sync.Mutex
	stored  []string
	removed []string
}

func (m *memAttachments) Store(ctx context.Context, up *attachment.Upload) (*string, error) {
	if up == nil {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ref := "/uploads/" + up.Name
	m.stored = append(m.stored, ref)
	return &ref, nil
}

func (m *memAttachments) Swap(previous, next *string) {
	if next == nil || previous == nil || *previous == *next {
		return
	}
	m.Remove(*previous)
}

func (m *memAttachments) Remove(ref string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, ref)
}
