// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"blogcore/internal/database"
	"blogcore/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "blogcore")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "blogcore")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if _, err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanUsers removes test users by email. Call in t.Cleanup().
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM post_comments WHERE user_id IN (SELECT id FROM users WHERE email = $1)", email)
		db.Exec("DELETE FROM posts WHERE author_id IN (SELECT id FROM users WHERE email = $1)", email)
		db.Exec("DELETE FROM users WHERE email = $1", email)
	}
}

// cleanCategories removes test categories by slug. Call in t.Cleanup()
// after the posts referencing them are gone.
func cleanCategories(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, slug := range slugs {
		db.Exec("DELETE FROM posts WHERE category_id IN (SELECT id FROM categories WHERE slug = $1)", slug)
		db.Exec("DELETE FROM categories WHERE slug = $1", slug)
	}
}

// fixture creates a user and a category for post tests and registers
// their cleanup.
func fixture(t *testing.T, db *sql.DB, tag string) (*models.User, *models.Category) {
	t.Helper()
	ctx := context.Background()

	email := "post-" + tag + "@store-test.local"
	slug := "store-test-" + tag
	t.Cleanup(func() {
		cleanUsers(t, db, email)
		cleanCategories(t, db, slug)
	})

	u, err := NewUserStore(db).Create(ctx, "Store Tester", email, "testpass123", models.RoleAuthor)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	c, err := NewCategoryStore(db).Create(ctx, &models.Category{Name: "Store Test " + tag, Slug: slug})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	return u, c
}

func newPost(author uuid.UUID, category uuid.UUID, title string) *models.Post {
	return &models.Post{
		Title:       title,
		Content:     "Body of " + title,
		CategoryID:  category,
		AuthorID:    author,
		Tags:        []string{"go", "sql"},
		IsPublished: true,
	}
}
