package bootstrap_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primecut/brokerage/internal/auth"
	"github.com/primecut/brokerage/internal/bootstrap"
	"github.com/primecut/brokerage/internal/tenant"
)

type fakeUsers struct {
	rows    map[string]*auth.User
	creates int
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	if u, ok := f.rows[strings.ToLower(email)]; ok {
		return u, nil
	}
	return nil, auth.ErrUserNotFound
}

func (f *fakeUsers) Create(_ context.Context, u *auth.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	f.rows[strings.ToLower(u.Email)] = u
	f.creates++
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, userID uuid.UUID, hash string) error {
	for _, u := range f.rows {
		if u.ID == userID {
			u.PasswordHash = hash
			return nil
		}
	}
	return auth.ErrUserNotFound
}

func (f *fakeUsers) EnsureSuperuser(_ context.Context, userID uuid.UUID) error {
	for _, u := range f.rows {
		if u.ID == userID {
			u.IsSuperuser = true
			u.Active = true
			return nil
		}
	}
	return auth.ErrUserNotFound
}

type fakeTenants struct {
	rows        map[string]*tenant.Tenant
	memberships map[string]*tenant.Membership
	creates     int
}

func (f *fakeTenants) FindTenantBySlug(_ context.Context, slug string) (*tenant.Tenant, error) {
	if t, ok := f.rows[slug]; ok {
		return t, nil
	}
	return nil, tenant.ErrTenantNotFound
}

func (f *fakeTenants) CreateTenant(_ context.Context, t *tenant.Tenant) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	f.rows[t.Slug] = t
	f.creates++
	return nil
}

func (f *fakeTenants) ActivateTenant(_ context.Context, id uuid.UUID) error {
	for _, t := range f.rows {
		if t.ID == id {
			t.Active = true
			return nil
		}
	}
	return tenant.ErrTenantNotFound
}

func (f *fakeTenants) UpsertMembership(_ context.Context, m *tenant.Membership) error {
	key := m.UserID.String() + "/" + m.TenantID.String()
	if existing, ok := f.memberships[key]; ok {
		existing.Role = m.Role
		existing.Active = m.Active
		return nil
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	f.memberships[key] = m
	return nil
}

func newService(t *testing.T) (*bootstrap.Service, *fakeUsers, *fakeTenants) {
	t.Helper()

	users := &fakeUsers{rows: make(map[string]*auth.User)}
	tenants := &fakeTenants{rows: make(map[string]*tenant.Tenant), memberships: make(map[string]*tenant.Membership)}
	svc := bootstrap.NewService(bootstrap.Config{
		AdminEmail:    "admin@example.com",
		AdminPassword: "bootstrap-secret",
		AdminName:     "Admin",
	}, users, tenants, nil)
	return svc, users, tenants
}

func TestService_Run(t *testing.T) {
	t.Parallel()

	t.Run("fresh database gets full provisioning", func(t *testing.T) {
		t.Parallel()

		svc, users, tenants := newService(t)
		require.NoError(t, svc.Run(t.Context()))

		root := tenants.rows["root"]
		require.NotNil(t, root)
		assert.True(t, root.Active)
		assert.False(t, root.Trial)

		guest := tenants.rows["guest"]
		require.NotNil(t, guest)
		assert.True(t, guest.Trial)

		admin := users.rows["admin@example.com"]
		require.NotNil(t, admin)
		assert.True(t, admin.IsSuperuser)
		assert.True(t, auth.VerifyPassword(admin.PasswordHash, "bootstrap-secret"))

		m := tenants.memberships[admin.ID.String()+"/"+root.ID.String()]
		require.NotNil(t, m)
		assert.Equal(t, tenant.RoleOwner, m.Role)
		assert.True(t, m.Active)
	})

	t.Run("rerun performs zero net creates", func(t *testing.T) {
		t.Parallel()

		svc, users, tenants := newService(t)
		require.NoError(t, svc.Run(t.Context()))
		require.NoError(t, svc.Run(t.Context()))

		assert.Equal(t, 1, users.creates)
		assert.Equal(t, 2, tenants.creates)
		assert.Len(t, tenants.memberships, 1)
	})

	t.Run("repairs a deactivated root tenant and demoted admin", func(t *testing.T) {
		t.Parallel()

		svc, users, tenants := newService(t)
		require.NoError(t, svc.Run(t.Context()))

		tenants.rows["root"].Active = false
		admin := users.rows["admin@example.com"]
		admin.IsSuperuser = false
		admin.Active = false

		require.NoError(t, svc.Run(t.Context()))
		assert.True(t, tenants.rows["root"].Active)
		assert.True(t, admin.IsSuperuser)
		assert.True(t, admin.Active)
	})

	t.Run("password rotation takes effect on rerun", func(t *testing.T) {
		t.Parallel()

		users := &fakeUsers{rows: make(map[string]*auth.User)}
		tenants := &fakeTenants{rows: make(map[string]*tenant.Tenant), memberships: make(map[string]*tenant.Membership)}

		first := bootstrap.NewService(bootstrap.Config{AdminEmail: "admin@example.com", AdminPassword: "old"}, users, tenants, nil)
		require.NoError(t, first.Run(t.Context()))

		second := bootstrap.NewService(bootstrap.Config{AdminEmail: "admin@example.com", AdminPassword: "new"}, users, tenants, nil)
		require.NoError(t, second.Run(t.Context()))

		admin := users.rows["admin@example.com"]
		assert.False(t, auth.VerifyPassword(admin.PasswordHash, "old"))
		assert.True(t, auth.VerifyPassword(admin.PasswordHash, "new"))
	})
}
