package claims

import "errors"

var (
	// ErrClaimNotFound is returned when no claim matches within the scope.
	ErrClaimNotFound = errors.New("claim not found")

	// ErrReferenceTaken is returned when the claim reference is already
	// used within the tenant.
	ErrReferenceTaken = errors.New("claim reference already in use")

	// ErrInvalidTransition is returned for a disallowed status move.
	ErrInvalidTransition = errors.New("invalid claim transition")
)
