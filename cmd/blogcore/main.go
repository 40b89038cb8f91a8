// Package main is the entry point for the blog API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogcore/internal/attachment"
	"blogcore/internal/cache"
	"blogcore/internal/categories"
	"blogcore/internal/config"
	"blogcore/internal/database"
	"blogcore/internal/handlers"
	"blogcore/internal/posts"
	"blogcore/internal/router"
	"blogcore/internal/session"
	"blogcore/internal/storage"
	"blogcore/internal/store"
)

func main() {
	// Load configuration from the environment and .env.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: JSON when LOG_FORMAT=json, text otherwise.
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.IsDev() {
		opts.Level = slog.LevelDebug
	}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"storage", cfg.StorageBackend,
	)

	// Connect to PostgreSQL.
	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStart()

	db, err := database.Connect(startCtx, cfg.DSN(), database.DefaultPool)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if _, err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(startCtx, db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (sessions + category listing cache).
	valkeyClient, err := cache.ConnectValkey(startCtx, cfg.ValkeyAddr(), cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	sessionStore := session.NewStore(valkeyClient, cfg.SessionTTL)

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	postStore := store.NewPostStore(db)

	// Featured images go to local disk or S3-compatible object storage.
	blobs, uploadDir, err := openBlobStore(cfg)
	if err != nil {
		slog.Error("failed to initialize upload storage", "error", err)
		os.Exit(1)
	}
	attachments := attachment.NewManager(attachment.Config{Store: blobs})

	// Services and handler groups.
	postService := posts.NewService(postStore, categoryStore, attachments)
	categoryService := categories.NewService(categoryStore, cache.NewJSON(valkeyClient, cache.DefaultTTL))

	limits := attachment.Limits{MaxBytes: cfg.UploadMaxBytes}
	r := router.New(
		router.Options{
			CORSOrigins:        cfg.CORSOrigins,
			RateLimitPerMinute: cfg.RateLimitPerMinute,
			TrustProxy:         cfg.TrustProxy,
			UploadDir:          uploadDir,
			UploadPrefix:       storage.DefaultPublicPrefix,
			Checks: map[string]func(context.Context) error{
				"postgres": database.Pinger(db),
				"valkey":   cache.Pinger(valkeyClient),
			},
		},
		sessionStore,
		handlers.NewPosts(postService, limits),
		handlers.NewCategories(categoryService),
		handlers.NewAuth(userStore, sessionStore),
	)

	// Create the HTTP server with sensible timeouts. ReadTimeout leaves
	// room for multipart uploads.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Let pending attachment deletions finish.
	attachments.Wait()

	slog.Info("server stopped gracefully")
}

// openBlobStore builds the configured upload backend. uploadDir is the
// directory to serve publicly, empty when files live in object storage.
func openBlobStore(cfg *config.Config) (attachment.BlobStore, string, error) {
	if cfg.StorageBackend == config.StorageS3 {
		s3, err := storage.NewS3(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3KeyPrefix, cfg.S3PublicURL,
		)
		if err != nil {
			return nil, "", err
		}
		if s3 == nil {
			return nil, "", errors.New("s3 storage is not configured")
		}
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		return s3, "", nil
	}

	local, err := storage.NewLocal(cfg.UploadDir, storage.DefaultPublicPrefix)
	if err != nil {
		return nil, "", err
	}
	slog.Info("local upload storage ready", "dir", local.Root())
	return local, local.Root(), nil
}
