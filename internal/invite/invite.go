package invite

import (
	"time"

	"github.com/google/uuid"

	"github.com/primecut/brokerage/internal/tenant"
)

// Status is the invitation lifecycle state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRevoked  Status = "revoked"
)

// Invite is a pending membership offer for an email address that may
// not have an account yet. The token travels in the acceptance link;
// it is never exposed through list endpoints.
type Invite struct {
	ID         uuid.UUID   `json:"id"`
	TenantID   uuid.UUID   `json:"tenant_id"`
	Email      string      `json:"email"`
	Role       tenant.Role `json:"role"`
	Token      string      `json:"-"`
	Status     Status      `json:"status"`
	InvitedBy  uuid.UUID   `json:"invited_by"`
	ExpiresAt  time.Time   `json:"expires_at"`
	CreatedAt  time.Time   `json:"created_at"`
	AcceptedAt *time.Time  `json:"accepted_at,omitempty"`
}

// Expired reports whether the invite can no longer be accepted.
func (i *Invite) Expired() bool {
	return time.Now().After(i.ExpiresAt)
}
