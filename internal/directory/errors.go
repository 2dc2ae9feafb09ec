package directory

import "errors"

var (
	// ErrPartyNotFound is returned when no row matches within the scope.
	// Cross-tenant lookups surface this same error.
	ErrPartyNotFound = errors.New("party not found")

	// ErrCodeTaken is returned when the code is already used within the
	// tenant. Codes are only unique per tenant, never globally.
	ErrCodeTaken = errors.New("code already in use")
)
