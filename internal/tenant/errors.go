package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when no tenant matches the identifier.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrInactiveTenant is returned when a deactivated tenant is addressed
	// explicitly.
	ErrInactiveTenant = errors.New("tenant is inactive")

	// ErrInvalidIdentifier is returned for a malformed explicit tenant
	// identifier (neither a UUID nor a valid slug).
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")

	// ErrMembershipRequired is returned when an explicit tenant header names
	// a tenant the authenticated user has no active membership in. Also used
	// for unknown tenants on the header path so existence is not revealed.
	ErrMembershipRequired = errors.New("no active membership for requested tenant")

	// ErrMembershipNotFound is returned by store lookups with no matching row.
	ErrMembershipNotFound = errors.New("membership not found")

	// ErrDomainNotFound is returned by domain lookups with no matching row.
	ErrDomainNotFound = errors.New("domain not found")

	// ErrNoTenantInContext is returned when a scope is requested from a
	// request that resolved no tenant.
	ErrNoTenantInContext = errors.New("no tenant in context")

	// ErrSlugTaken is returned when creating a tenant with a used slug.
	ErrSlugTaken = errors.New("tenant slug already taken")

	// ErrDomainTaken is returned when provisioning an already mapped domain.
	ErrDomainTaken = errors.New("domain already mapped")

	// ErrUnknownRole is returned for an unrecognized role value.
	ErrUnknownRole = errors.New("unknown role")
)
