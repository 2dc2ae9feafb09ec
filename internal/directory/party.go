package directory

import (
	"time"

	"github.com/google/uuid"
)

// Party is a customer or supplier in a tenant's trading directory. Both
// sides of the brokerage share the same shape; they live in separate
// tables and are addressed through separate endpoints.
type Party struct {
	ID               uuid.UUID `json:"id"`
	TenantID         uuid.UUID `json:"tenant_id"`
	Code             string    `json:"code"`
	Name             string    `json:"name"`
	ContactName      string    `json:"contact_name,omitempty"`
	ContactEmail     string    `json:"contact_email,omitempty"`
	ContactPhone     string    `json:"contact_phone,omitempty"`
	PaymentTermsDays int       `json:"payment_terms_days"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
