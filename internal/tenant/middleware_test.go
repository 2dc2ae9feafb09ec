package tenant_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primecut/brokerage/internal/auth"
	"github.com/primecut/brokerage/internal/tenant"
)

// fakeProvider serves tenants and memberships from memory and counts
// store hits so caching behavior can be asserted.
type fakeProvider struct {
	tenants     map[uuid.UUID]*tenant.Tenant
	domains     map[string]uuid.UUID
	memberships []tenant.Membership

	domainLookups int
	slugLookups   int
}

func (f *fakeProvider) FindTenantByID(_ context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	if t, ok := f.tenants[id]; ok {
		return t, nil
	}
	return nil, tenant.ErrTenantNotFound
}

func (f *fakeProvider) FindTenantBySlug(_ context.Context, slug string) (*tenant.Tenant, error) {
	f.slugLookups++
	for _, t := range f.tenants {
		if t.Slug == slug {
			return t, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (f *fakeProvider) FindTenantByDomain(_ context.Context, domain string) (*tenant.Tenant, error) {
	f.domainLookups++
	if id, ok := f.domains[domain]; ok {
		return f.tenants[id], nil
	}
	return nil, tenant.ErrDomainNotFound
}

func (f *fakeProvider) FindMembership(_ context.Context, userID, tenantID uuid.UUID) (*tenant.Membership, error) {
	for i := range f.memberships {
		if f.memberships[i].UserID == userID && f.memberships[i].TenantID == tenantID {
			return &f.memberships[i], nil
		}
	}
	return nil, tenant.ErrMembershipNotFound
}

func (f *fakeProvider) ListActiveMemberships(_ context.Context, userID uuid.UUID) ([]tenant.Membership, error) {
	var out []tenant.Membership
	for _, m := range f.memberships {
		if m.UserID == userID && m.Active {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Role != out[j].Role {
			return out[i].Role > out[j].Role
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out, nil
}

type fixture struct {
	provider *fakeProvider
	acme     *tenant.Tenant
	globex   *tenant.Tenant
	dormant  *tenant.Tenant
	alice    auth.Identity
	root     auth.Identity
}

// newFixture builds a small world: two active tenants, one inactive one,
// a regular user, and a superuser. Alice is a member of acme and an
// admin of globex.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	acme := &tenant.Tenant{ID: uuid.New(), Slug: "acme", Name: "Acme Meats", Active: true}
	globex := &tenant.Tenant{ID: uuid.New(), Slug: "globex", Name: "Globex Provisions", Active: true}
	dormant := &tenant.Tenant{ID: uuid.New(), Slug: "dormant", Name: "Dormant Foods", Active: false}

	alice := auth.Identity{UserID: uuid.New(), Email: "alice@example.com"}
	root := auth.Identity{UserID: uuid.New(), Email: "root@example.com", Superuser: true}

	provider := &fakeProvider{
		tenants: map[uuid.UUID]*tenant.Tenant{
			acme.ID: acme, globex.ID: globex, dormant.ID: dormant,
		},
		domains: map[string]uuid.UUID{
			"meats.acme-corp.com": acme.ID,
		},
		memberships: []tenant.Membership{
			{ID: uuid.New(), UserID: alice.UserID, TenantID: acme.ID, Role: tenant.RoleMember, Active: true, JoinedAt: time.Now().Add(-48 * time.Hour)},
			{ID: uuid.New(), UserID: alice.UserID, TenantID: globex.ID, Role: tenant.RoleAdmin, Active: true, JoinedAt: time.Now().Add(-24 * time.Hour)},
		},
	}

	return &fixture{provider: provider, acme: acme, globex: globex, dormant: dormant, alice: alice, root: root}
}

// serve runs a request through the middleware and captures the resolved
// tenant and membership.
func serve(t *testing.T, f *fixture, req *http.Request, opts ...tenant.Option) (*httptest.ResponseRecorder, *tenant.Tenant, *tenant.Membership) {
	t.Helper()

	var resolved *tenant.Tenant
	var membership *tenant.Membership
	handler := tenant.Middleware(f.provider, opts...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resolved, _ = tenant.FromContext(r.Context())
		membership, _ = tenant.MembershipFromContext(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w, resolved, membership
}

func asUser(req *http.Request, identity auth.Identity) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), identity))
}

func TestMiddleware_HeaderResolution(t *testing.T) {
	t.Parallel()

	t.Run("uuid header with active membership resolves", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		req.Header.Set("X-Tenant-ID", f.acme.ID.String())

		w, resolved, membership := serve(t, f, asUser(req, f.alice))
		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, resolved)
		assert.Equal(t, f.acme.ID, resolved.ID)
		require.NotNil(t, membership)
		assert.Equal(t, tenant.RoleMember, membership.Role)
	})

	t.Run("slug header resolves", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		req.Header.Set("X-Tenant-ID", "globex")

		w, resolved, _ := serve(t, f, asUser(req, f.alice))
		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, resolved)
		assert.Equal(t, f.globex.ID, resolved.ID)
	})

	t.Run("header for tenant without membership is forbidden", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		bob := auth.Identity{UserID: uuid.New(), Email: "bob@example.com"}
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		req.Header.Set("X-Tenant-ID", "acme")

		w, resolved, _ := serve(t, f, asUser(req, bob))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Nil(t, resolved)
	})

	t.Run("unknown tenant reads the same as missing membership", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		req.Header.Set("X-Tenant-ID", uuid.New().String())

		w, _, _ := serve(t, f, asUser(req, f.alice))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("inactive tenant via header is forbidden, not ignored", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		req.Header.Set("X-Tenant-ID", "dormant")

		w, _, _ := serve(t, f, asUser(req, f.alice))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("malformed identifier is a bad request", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		req.Header.Set("X-Tenant-ID", "Not_A_Slug!")

		w, _, _ := serve(t, f, asUser(req, f.alice))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unauthenticated header is forbidden", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		req.Header.Set("X-Tenant-ID", "acme")

		w, _, _ := serve(t, f, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("superuser resolves any tenant without membership", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		req.Header.Set("X-Tenant-ID", "acme")

		w, resolved, membership := serve(t, f, asUser(req, f.root))
		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, resolved)
		assert.Equal(t, f.acme.ID, resolved.ID)
		assert.Nil(t, membership)
	})
}

func TestMiddleware_HostResolution(t *testing.T) {
	t.Parallel()

	t.Run("exact domain mapping wins", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		req.Host = "meats.acme-corp.com:8080"

		w, resolved, _ := serve(t, f, req)
		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, resolved)
		assert.Equal(t, f.acme.ID, resolved.ID)
	})

	t.Run("subdomain label resolves against slugs", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		req.Host = "globex.example.com"

		w, resolved, _ := serve(t, f, req, tenant.WithBaseDomain("example.com"))
		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, resolved)
		assert.Equal(t, f.globex.ID, resolved.ID)
	})

	t.Run("inactive tenant subdomain falls through to no tenant", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		req.Host = "dormant.example.com"

		w, resolved, _ := serve(t, f, req, tenant.WithBaseDomain("example.com"))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, resolved)
	})

	t.Run("bare base domain resolves nothing", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		req.Host = "example.com"

		w, resolved, _ := serve(t, f, req, tenant.WithBaseDomain("example.com"))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, resolved)
	})

	t.Run("www prefix is skipped", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		req.Host = "www.acme.example.com"

		w, resolved, _ := serve(t, f, req, tenant.WithBaseDomain("example.com"))
		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, resolved)
		assert.Equal(t, f.acme.ID, resolved.ID)
	})

	t.Run("domain lookups are cached", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		cache := tenant.NewMemoryCache()

		for range 3 {
			req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
			req.Host = "meats.acme-corp.com"
			serve(t, f, req, tenant.WithCache(cache))
		}

		assert.Equal(t, 1, f.provider.domainLookups)
	})
}

func TestMiddleware_DefaultMembership(t *testing.T) {
	t.Parallel()

	t.Run("highest privilege active membership wins", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		req.Host = "app.example.com"

		// Alice is a member of acme and an admin of globex; admin wins.
		w, resolved, membership := serve(t, f, asUser(req, f.alice), tenant.WithBaseDomain("example.com"))
		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, resolved)
		assert.Equal(t, f.globex.ID, resolved.ID)
		require.NotNil(t, membership)
		assert.Equal(t, tenant.RoleAdmin, membership.Role)
	})

	t.Run("inactive tenant is skipped for the next membership", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		carol := auth.Identity{UserID: uuid.New(), Email: "carol@example.com"}
		f.provider.memberships = append(f.provider.memberships,
			tenant.Membership{ID: uuid.New(), UserID: carol.UserID, TenantID: f.dormant.ID, Role: tenant.RoleOwner, Active: true, JoinedAt: time.Now().Add(-72 * time.Hour)},
			tenant.Membership{ID: uuid.New(), UserID: carol.UserID, TenantID: f.acme.ID, Role: tenant.RoleMember, Active: true, JoinedAt: time.Now()},
		)

		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		_, resolved, _ := serve(t, f, asUser(req, carol))
		require.NotNil(t, resolved)
		assert.Equal(t, f.acme.ID, resolved.ID)
	})

	t.Run("user with no memberships proceeds tenant-less", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		dave := auth.Identity{UserID: uuid.New(), Email: "dave@example.com"}

		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		w, resolved, _ := serve(t, f, asUser(req, dave))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, resolved)
	})

	t.Run("anonymous request without host match proceeds tenant-less", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)

		w, resolved, _ := serve(t, f, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, resolved)
	})
}

func TestMiddleware_SkipPaths(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Host = "meats.acme-corp.com"

	w, resolved, _ := serve(t, f, req, tenant.WithSkipPaths([]string{"/health", "/metrics"}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, resolved)
	assert.Zero(t, f.provider.domainLookups)
}

func TestRequireTenant(t *testing.T) {
	t.Parallel()

	handler := tenant.RequireTenant(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("rejects tenant-less requests", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("passes resolved requests", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := tenant.WithTenant(req.Context(), &tenant.Tenant{ID: uuid.New(), Active: true})

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req.WithContext(ctx))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
