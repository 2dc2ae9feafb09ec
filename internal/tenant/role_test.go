package tenant_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primecut/brokerage/internal/tenant"
)

func TestRole_AtLeast(t *testing.T) {
	t.Parallel()

	assert.True(t, tenant.RoleOwner.AtLeast(tenant.RoleAdmin))
	assert.True(t, tenant.RoleOwner.AtLeast(tenant.RoleOwner))
	assert.True(t, tenant.RoleAdmin.AtLeast(tenant.RoleMember))
	assert.False(t, tenant.RoleMember.AtLeast(tenant.RoleAdmin))
	assert.False(t, tenant.RoleAdmin.AtLeast(tenant.RoleOwner))
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"member", "admin", "owner"} {
		role, err := tenant.ParseRole(name)
		require.NoError(t, err)
		assert.Equal(t, name, role.String())
	}

	_, err := tenant.ParseRole("manager")
	assert.ErrorIs(t, err, tenant.ErrUnknownRole)
}

func TestRole_MarshalText(t *testing.T) {
	t.Parallel()

	data, err := tenant.RoleAdmin.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "admin", string(data))

	_, err = tenant.Role(42).MarshalText()
	assert.ErrorIs(t, err, tenant.ErrUnknownRole)
}
