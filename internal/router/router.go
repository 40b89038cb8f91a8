// Package router sets up all HTTP routes and middleware chains for the
// blog API. Reads are public; mutations sit behind the session middleware.
package router

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"blogcore/internal/handlers"
	"blogcore/internal/middleware"
	"blogcore/internal/respond"
	"blogcore/internal/storage"
)

// Options configures the edge of the router.
type Options struct {
	CORSOrigins        string
	RateLimitPerMinute int    // 0 disables rate limiting
	TrustProxy         bool   // take the client address from X-Real-IP / X-Forwarded-For
	UploadDir          string // served under UploadPrefix when set
	UploadPrefix       string

	// Checks are the readiness probes reported by /health, by name.
	Checks map[string]func(context.Context) error
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(opts Options, sessions middleware.SessionGetter, posts *handlers.Posts, categories *handlers.Categories, auth *handlers.Auth) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CORS(opts.CORSOrigins))
	r.Use(middleware.LoadSession(sessions))

	r.NotFound(notFoundHandler)
	r.MethodNotAllowed(notFoundHandler)

	r.Get("/", bannerHandler)
	r.Get("/health", healthHandler(opts.Checks))

	if opts.UploadDir != "" {
		prefix := opts.UploadPrefix
		if prefix == "" {
			prefix = storage.DefaultPublicPrefix
		}
		prefix = "/" + strings.Trim(prefix, "/")
		files := http.StripPrefix(prefix+"/", http.FileServer(http.Dir(opts.UploadDir)))
		r.Get(prefix+"/*", files.ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		if opts.RateLimitPerMinute > 0 {
			r.Use(middleware.RateLimit(opts.RateLimitPerMinute, time.Minute))
		}

		r.Get("/", bannerHandler)

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", posts.List)
			r.Get("/search", posts.Search)
			r.Get("/{idOrSlug}", posts.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/", posts.Create)
				r.Put("/{id}", posts.Update)
				r.Delete("/{id}", posts.Delete)
				r.Post("/{id}/comments", posts.AddComment)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categories.List)
			r.With(middleware.RequireAuth, middleware.RequireAdmin).Post("/", categories.Create)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", auth.Register)
			r.Post("/login", auth.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/me", auth.Me)
				r.Post("/logout", auth.Logout)
			})
		})
	})

	return r
}

// healthCheckTimeout bounds each readiness probe.
const healthCheckTimeout = 2 * time.Second

// healthHandler reports {"status":"ok"} when every check passes and 503
// with the failing checks otherwise.
func healthHandler(checks map[string]func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		failed := map[string]string{}
		for name, check := range checks {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			if err := check(ctx); err != nil {
				slog.Warn("health check failed", "check", name, "error", err)
				failed[name] = "unavailable"
			}
			cancel()
		}

		if len(failed) > 0 {
			respond.JSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "checks": failed})
			return
		}
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func bannerHandler(w http.ResponseWriter, r *http.Request) {
	respond.Message(w, http.StatusOK, "Blog API is running")
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	respond.Fail(w, http.StatusNotFound, "Route "+r.URL.Path+" not found")
}
