package tenant

import (
	"context"

	"github.com/google/uuid"
)

// Scope is the proof that a tenant was resolved for the current request.
// Every tenant-owned store operation takes a Scope and filters by it, so
// a query without the tenant predicate cannot be written by accident: the
// only ways to obtain a Scope are a resolved tenant or the request context.
//
// There is no database-enforced row security behind this; the Scope
// discipline is the isolation mechanism.
type Scope struct {
	tenantID uuid.UUID
}

// NewScope derives a scope from a resolved tenant.
func NewScope(t *Tenant) (Scope, error) {
	if t == nil || t.ID == uuid.Nil {
		return Scope{}, ErrNoTenantInContext
	}
	return Scope{tenantID: t.ID}, nil
}

// ScopeFromContext derives a scope from the request context. Requests
// that resolved no tenant get ErrNoTenantInContext; callers decide
// between an empty result (reads) and a rejection (writes).
func ScopeFromContext(ctx context.Context) (Scope, error) {
	t, ok := FromContext(ctx)
	if !ok {
		return Scope{}, ErrNoTenantInContext
	}
	return NewScope(t)
}

// TenantID returns the tenant this scope is bound to.
func (s Scope) TenantID() uuid.UUID {
	return s.tenantID
}

// Valid reports whether the scope is bound to a tenant. The zero Scope
// is invalid and matches no rows.
func (s Scope) Valid() bool {
	return s.tenantID != uuid.Nil
}
