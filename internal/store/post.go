// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"blogcore/internal/models"
)

// PostStore handles all post and comment database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// postSelect reads a post together with its category and author display
// fields. Comments are loaded separately.
const postSelect = `
	SELECT p.id, p.title, p.slug, p.excerpt, p.content, p.category_id, p.author_id,
	       p.tags, p.is_published, p.featured_image, p.view_count, p.created_at, p.updated_at,
	       c.id, c.name, c.slug, u.id, u.name, u.email
	FROM posts p
	JOIN categories c ON c.id = p.category_id
	JOIN users u ON u.id = p.author_id`

// postOrder is the listing order. The id tie-break keeps pages stable when
// timestamps collide.
const postOrder = ` ORDER BY p.created_at DESC, p.id DESC`

func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var (
		p       models.Post
		cat     models.CategoryRef
		author  models.UserRef
		slug    sql.NullString
		feature sql.NullString
	)
	err := scanner.Scan(
		&p.ID, &p.Title, &slug, &p.Excerpt, &p.Content, &p.CategoryID, &p.AuthorID,
		pq.Array(&p.Tags), &p.IsPublished, &feature, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt,
		&cat.ID, &cat.Name, &cat.Slug, &author.ID, &author.Name, &author.Email,
	)
	if err != nil {
		return nil, err
	}
	if slug.Valid {
		p.Slug = &slug.String
	}
	if feature.Valid {
		p.FeaturedImage = &feature.String
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.Category = &cat
	p.Author = &author
	p.Comments = []models.Comment{}
	return &p, nil
}

func (s *PostStore) findOne(ctx context.Context, what, where string, arg any) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, postSelect+` WHERE `+where, arg)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by %s: %w", what, err)
	}
	return p, nil
}

// FindByID retrieves a post by ID without comments. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.findOne(ctx, "id", `p.id = $1`, id)
}

// FindBySlug retrieves a post by slug without comments. Returns nil if not found.
func (s *PostStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.findOne(ctx, "slug", `p.slug = $1`, slug)
}

// IncrementViews atomically adds one to the post's view count and returns
// the new value. ok is false when the post no longer exists.
func (s *PostStore) IncrementViews(ctx context.Context, id uuid.UUID) (count int64, ok bool, err error) {
	err = s.db.QueryRowContext(ctx,
		`UPDATE posts SET view_count = view_count + 1 WHERE id = $1 RETURNING view_count`, id,
	).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("increment post views: %w", err)
	}
	return count, true, nil
}

// List returns one window of posts matching the filter, newest first.
func (s *PostStore) List(ctx context.Context, f PostFilter, limit, offset int) ([]models.Post, error) {
	where, args := f.Compile()
	args = append(args, limit, offset)
	query := postSelect + where + postOrder +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// Count returns the number of posts matching the filter.
func (s *PostStore) Count(ctx context.Context, f PostFilter) (int, error) {
	where, args := f.Compile()
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts p`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

// Comments loads the comment lists of the given posts in append order,
// keyed by post ID. Posts without comments are absent from the map.
func (s *PostStore) Comments(ctx context.Context, postIDs ...uuid.UUID) (map[uuid.UUID][]models.Comment, error) {
	out := make(map[uuid.UUID][]models.Comment, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}

	ids := make([]string, len(postIDs))
	for i, id := range postIDs {
		ids[i] = id.String()
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT pc.id, pc.post_id, pc.user_id, pc.content, pc.created_at, u.id, u.name, u.email
		FROM post_comments pc
		JOIN users u ON u.id = pc.user_id
		WHERE pc.post_id = ANY($1::uuid[])
		ORDER BY pc.post_id, pc.seq ASC`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out[c.PostID] = append(out[c.PostID], *c)
	}
	return out, rows.Err()
}

func scanComment(scanner interface{ Scan(...any) error }) (*models.Comment, error) {
	var c models.Comment
	var u models.UserRef
	if err := scanner.Scan(&c.ID, &c.PostID, &c.UserID, &c.Content, &c.CreatedAt, &u.ID, &u.Name, &u.Email); err != nil {
		return nil, err
	}
	c.User = &u
	return &c, nil
}

// Create inserts a new post and returns it as read back from the database.
func (s *PostStore) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (title, slug, excerpt, content, category_id, author_id, tags, is_published, featured_image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		p.Title, p.Slug, p.Excerpt, p.Content, p.CategoryID, p.AuthorID,
		pq.Array(tagsOrEmpty(p.Tags)), p.IsPublished, p.FeaturedImage,
	).Scan(&id)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("create post: %w", ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return s.FindByID(ctx, id)
}

// Update writes the mutable fields of a post. The author is never changed.
// Returns nil if the post does not exist.
func (s *PostStore) Update(ctx context.Context, p *models.Post) (*models.Post, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE posts
		SET title = $2, excerpt = $3, content = $4, category_id = $5, tags = $6,
		    is_published = $7, featured_image = $8, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.Title, p.Excerpt, p.Content, p.CategoryID,
		pq.Array(tagsOrEmpty(p.Tags)), p.IsPublished, p.FeaturedImage,
	)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.FindByID(ctx, p.ID)
}

// Delete removes a post. Its comments go with it.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// AppendComment adds a comment at the end of the post's list in a single
// statement and returns it with the commenter expanded. Returns nil if the
// post does not exist.
func (s *PostStore) AppendComment(ctx context.Context, postID, userID uuid.UUID, content string) (*models.Comment, error) {
	row := s.db.QueryRowContext(ctx, `
		WITH ins AS (
			INSERT INTO post_comments (post_id, user_id, content)
			VALUES ($1, $2, $3)
			RETURNING id, post_id, user_id, content, created_at
		)
		SELECT ins.id, ins.post_id, ins.user_id, ins.content, ins.created_at, u.id, u.name, u.email
		FROM ins JOIN users u ON u.id = ins.user_id`,
		postID, userID, content,
	)
	c, err := scanComment(row)
	if isForeignKeyViolation(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("append comment: %w", err)
	}
	return c, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
