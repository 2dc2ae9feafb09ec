package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that can authenticate and hold tenant memberships.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	IsSuperuser  bool      `json:"is_superuser"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity is the request-scoped authentication result attached to the
// context by the middleware. It intentionally carries only what tenant
// resolution and handlers need, not the full user row.
type Identity struct {
	UserID    uuid.UUID
	Email     string
	Superuser bool
}
