// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's permission level in the system.
type Role string

const (
	RoleAuthor Role = "author"
	// RoleAdmin is the elevated role: it bypasses ownership checks and may
	// create categories.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAuthor || r == RoleAdmin
}

// User represents an account that can author posts and comments.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Principal returns the identity this user acts as on authenticated requests.
func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Role: u.Role}
}

// Ref returns the display fields of the user.
func (u *User) Ref() *UserRef {
	return &UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserRef is the expanded form of a user reference inside posts and comments.
type UserRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID   uuid.UUID
	Role Role
}

// Elevated reports whether the principal may bypass ownership checks.
func (p Principal) Elevated() bool {
	return p.Role == RoleAdmin
}
