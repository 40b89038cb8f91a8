// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"blogcore/internal/apperr"
	"blogcore/internal/middleware"
	"blogcore/internal/models"
	"blogcore/internal/respond"
	"blogcore/internal/session"
	"blogcore/internal/store"
	"blogcore/internal/validate"
)

// UserStore is the subset of *store.UserStore the auth handlers need.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, name, email, password string, role models.Role) (*models.User, error)
	CheckPassword(user *models.User, password string) bool
}

// Sessions issues and revokes bearer sessions. *session.Store satisfies it.
type Sessions interface {
	Create(ctx context.Context, data *session.Data) (string, error)
	Destroy(ctx context.Context, token string) error
}

// Auth groups the session endpoints.
type Auth struct {
	users    UserStore
	sessions Sessions
}

// NewAuth creates the auth handler group.
func NewAuth(users UserStore, sessions Sessions) *Auth {
	return &Auth{users: users, sessions: sessions}
}

type registerInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

var registerMessages = validate.Messages{
	"Name.required":     "Name is required",
	"Email.required":    "Valid email is required",
	"Email.email":       "Valid email is required",
	"Password.required": "Password must be at least 6 characters",
	"Password.min":      "Password must be at least 6 characters",
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

var loginMessages = validate.Messages{
	"Email.required":    "Valid email is required",
	"Email.email":       "Valid email is required",
	"Password.required": "Password is required",
}

// authResponse is the body returned by register and login.
type authResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

// Register handles POST /api/auth/register.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var in registerInput
	if err := decodeJSON(w, r, &in); err != nil {
		respond.Error(w, r, err)
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate.Struct(in, registerMessages); err != nil {
		respond.Error(w, r, err)
		return
	}

	user, err := h.users.Create(r.Context(), in.Name, in.Email, in.Password, models.RoleAuthor)
	if errors.Is(err, store.ErrDuplicate) {
		respond.Error(w, r, apperr.Conflict("User already exists with this email"))
		return
	}
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	h.issue(w, r, http.StatusCreated, user)
}

// Login handles POST /api/auth/login.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := decodeJSON(w, r, &in); err != nil {
		respond.Error(w, r, err)
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	if err := validate.Struct(in, loginMessages); err != nil {
		respond.Error(w, r, err)
		return
	}

	user, err := h.users.FindByEmail(r.Context(), in.Email)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if user == nil || !h.users.CheckPassword(user, in.Password) {
		slog.Warn("failed login attempt", "email", in.Email, "ip", r.RemoteAddr)
		respond.Error(w, r, apperr.Unauthorized("Invalid email or password"))
		return
	}

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)
	h.issue(w, r, http.StatusOK, user)
}

// Me handles GET /api/auth/me.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	who, err := principal(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	user, err := h.users.FindByID(r.Context(), who.ID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if user == nil {
		respond.Error(w, r, apperr.NotFound("User not found"))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "user": user})
}

// Logout handles POST /api/auth/logout.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.TokenFromCtx(r.Context()); token != "" {
		if err := h.sessions.Destroy(r.Context(), token); err != nil {
			respond.Error(w, r, err)
			return
		}
	}
	respond.Message(w, http.StatusOK, "Logged out")
}

func (h *Auth) issue(w http.ResponseWriter, r *http.Request, status int, user *models.User) {
	token, err := h.sessions.Create(r.Context(), &session.Data{UserID: user.ID, Role: user.Role})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, status, authResponse{Success: true, Token: token, User: user})
}
