package claims

import (
	"time"

	"github.com/google/uuid"
)

// Status is the claim lifecycle state. A claim is raised open, gets a
// decision, and an accepted claim is settled when the money moves.
type Status string

const (
	StatusOpen     Status = "open"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusSettled  Status = "settled"
)

var transitions = map[Status][]Status{
	StatusOpen:     {StatusAccepted, StatusRejected},
	StatusAccepted: {StatusSettled},
}

// CanTransition reports whether moving from s to next is allowed.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Claim is a quality or quantity dispute against a delivered order.
// Amounts are in minor currency units.
type Claim struct {
	ID              uuid.UUID `json:"id"`
	TenantID        uuid.UUID `json:"tenant_id"`
	OrderID         uuid.UUID `json:"order_id"`
	Reference       string    `json:"reference"`
	Reason          string    `json:"reason"`
	QuantityKG      float64   `json:"quantity_kg"`
	AmountCents     int64     `json:"amount_cents"`
	Status          Status    `json:"status"`
	ResolutionNotes string    `json:"resolution_notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
