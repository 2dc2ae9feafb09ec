package tenant_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primecut/brokerage/internal/tenant"
)

func TestScope(t *testing.T) {
	t.Parallel()

	t.Run("derived from a resolved tenant", func(t *testing.T) {
		t.Parallel()

		tn := &tenant.Tenant{ID: uuid.New(), Slug: "acme", Active: true}
		scope, err := tenant.NewScope(tn)
		require.NoError(t, err)
		assert.True(t, scope.Valid())
		assert.Equal(t, tn.ID, scope.TenantID())
	})

	t.Run("nil tenant yields no scope", func(t *testing.T) {
		t.Parallel()

		_, err := tenant.NewScope(nil)
		assert.ErrorIs(t, err, tenant.ErrNoTenantInContext)
	})

	t.Run("zero scope is invalid", func(t *testing.T) {
		t.Parallel()

		var scope tenant.Scope
		assert.False(t, scope.Valid())
	})

	t.Run("context without tenant yields no scope", func(t *testing.T) {
		t.Parallel()

		_, err := tenant.ScopeFromContext(context.Background())
		assert.ErrorIs(t, err, tenant.ErrNoTenantInContext)
	})

	t.Run("context with tenant yields its scope", func(t *testing.T) {
		t.Parallel()

		tn := &tenant.Tenant{ID: uuid.New(), Slug: "acme", Active: true}
		ctx := tenant.WithTenant(context.Background(), tn)

		scope, err := tenant.ScopeFromContext(ctx)
		require.NoError(t, err)
		assert.Equal(t, tn.ID, scope.TenantID())
	})
}
