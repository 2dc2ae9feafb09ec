package tenant

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type tenantKey struct{}
type membershipKey struct{}

// WithTenant stores the resolved tenant in the context.
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, tenantKey{}, t)
}

// FromContext returns the resolved tenant, if any. The "no tenant" state
// is a first-class outcome that every handler must treat deliberately.
func FromContext(ctx context.Context) (*Tenant, bool) {
	t, ok := ctx.Value(tenantKey{}).(*Tenant)
	return t, ok && t != nil
}

// IDFromContext returns just the resolved tenant id.
func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	t, ok := FromContext(ctx)
	if !ok {
		return uuid.UUID{}, false
	}
	return t.ID, true
}

// WithMembership stores the acting user's membership for the resolved
// tenant. Only set when resolution ran through the explicit-header or
// default-membership paths.
func WithMembership(ctx context.Context, m *Membership) context.Context {
	return context.WithValue(ctx, membershipKey{}, m)
}

// MembershipFromContext returns the resolved membership, if any.
func MembershipFromContext(ctx context.Context) (*Membership, bool) {
	m, ok := ctx.Value(membershipKey{}).(*Membership)
	return m, ok && m != nil
}

// LoggerExtractor enriches log records with the resolved tenant id.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.String("tenant_id", id.String()), true
		}
		return slog.Attr{}, false
	}
}
