package tenant

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Tenant is an isolated organization. Every business row carries a
// mandatory reference to exactly one tenant for its entire lifecycle.
type Tenant struct {
	ID           uuid.UUID      `json:"id"`
	Slug         string         `json:"slug"`
	Name         string         `json:"name"`
	Active       bool           `json:"active"`
	Trial        bool           `json:"trial"`
	ContactEmail string         `json:"contact_email,omitempty"`
	ContactPhone string         `json:"contact_phone,omitempty"`
	Settings     map[string]any `json:"settings,omitempty"`
	CreatedBy    *uuid.UUID     `json:"created_by,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Domain binds a fully-qualified hostname to a tenant for custom-domain
// routing. A tenant may have many domains but at most one primary.
type Domain struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Domain    string    `json:"domain"`
	Primary   bool      `json:"primary"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Membership associates a user with a tenant under a role. Removal
// deactivates the row rather than deleting it, preserving audit history.
type Membership struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Role     Role      `json:"role"`
	Active   bool      `json:"active"`
	JoinedAt time.Time `json:"joined_at"`
}

const maxSlugLength = 63

// Slugs double as subdomain labels, so they follow DNS label rules.
var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// ValidSlug reports whether s is usable as a tenant slug.
func ValidSlug(s string) bool {
	return s != "" && len(s) <= maxSlugLength && slugPattern.MatchString(s)
}
