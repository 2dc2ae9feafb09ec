package tenant

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/primecut/brokerage/internal/api"
	"github.com/primecut/brokerage/internal/auth"
)

// Storage is the tenant persistence the handler depends on. Implemented
// by Store.
type Storage interface {
	CreateTenant(ctx context.Context, t *Tenant) error
	UpdateTenant(ctx context.Context, t *Tenant) error
	DeactivateTenant(ctx context.Context, id uuid.UUID) error
	ListTenantsForUser(ctx context.Context, userID uuid.UUID) ([]UserTenant, error)
	ListDomains(ctx context.Context, tenantID uuid.UUID) ([]Domain, error)
	AddDomain(ctx context.Context, d *Domain) error
	RemoveDomain(ctx context.Context, tenantID, domainID uuid.UUID) error
	ListMembers(ctx context.Context, tenantID uuid.UUID) ([]Membership, error)
	FindMembership(ctx context.Context, userID, tenantID uuid.UUID) (*Membership, error)
	UpsertMembership(ctx context.Context, m *Membership) error
	UpdateMemberRole(ctx context.Context, tenantID, userID uuid.UUID, role Role) error
	DeactivateMembership(ctx context.Context, tenantID, userID uuid.UUID) error
}

// Handler exposes tenant self-registration and administration endpoints.
type Handler struct {
	store Storage
	cache Cache
}

// NewHandler creates the tenant HTTP handler. The cache is the same one
// the resolution middleware uses, so administrative changes can evict
// stale domain and slug entries immediately.
func NewHandler(store Storage, cache Cache) *Handler {
	if cache == nil {
		cache = NoOpCache{}
	}
	return &Handler{store: store, cache: cache}
}

// Register attaches the tenant endpoints to r. The /tenants group works
// without a resolved tenant (registration, listing one's own tenants);
// the /tenant group administers the tenant resolved for the request.
func (h *Handler) Register(r chi.Router) {
	r.Route("/tenants", func(r chi.Router) {
		r.Post("/", h.register)
		r.Get("/", h.listMine)
	})

	r.Route("/tenant", func(r chi.Router) {
		r.Get("/", h.current)
		r.With(RequireRole(RoleAdmin)).Patch("/", h.update)
		r.With(RequireRole(RoleOwner)).Delete("/", h.deactivate)

		r.Route("/domains", func(r chi.Router) {
			r.Use(RequireRole(RoleAdmin))
			r.Get("/", h.listDomains)
			r.Post("/", h.addDomain)
			r.Delete("/{domainID}", h.removeDomain)
		})

		r.Route("/members", func(r chi.Router) {
			r.Use(RequireRole(RoleAdmin))
			r.Get("/", h.listMembers)
			r.Put("/{userID}", h.updateMemberRole)
			r.Delete("/{userID}", h.removeMember)
		})
	})
}

// Router returns a standalone router with the tenant routes.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

// RequireRole gates a route on the caller's role in the resolved tenant.
// Superusers pass regardless; they may act on any tenant via the header
// path, which attaches no membership.
func RequireRole(min Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				api.Error(w, api.ErrTenantRequired)
				return
			}
			if identity, ok := auth.IdentityFromContext(r.Context()); ok && identity.Superuser {
				next.ServeHTTP(w, r)
				return
			}
			m, ok := MembershipFromContext(r.Context())
			if !ok || !m.Role.AtLeast(min) {
				api.Error(w, api.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type registerRequest struct {
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		api.Error(w, api.ErrUnauthorized)
		return
	}

	var req registerRequest
	if err := api.Bind(r, &req); err != nil {
		api.Error(w, api.BindError(err))
		return
	}
	if req.Name == "" || !ValidSlug(req.Slug) {
		api.Error(w, api.ErrBadRequest)
		return
	}

	t := &Tenant{
		Slug:         req.Slug,
		Name:         req.Name,
		Active:       true,
		Trial:        true,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		CreatedBy:    &identity.UserID,
	}
	if err := h.store.CreateTenant(r.Context(), t); err != nil {
		if errors.Is(err, ErrSlugTaken) {
			api.Error(w, api.ErrConflict)
			return
		}
		api.Error(w, err)
		return
	}

	// The creator owns the tenant they registered.
	m := &Membership{UserID: identity.UserID, TenantID: t.ID, Role: RoleOwner, Active: true}
	if err := h.store.UpsertMembership(r.Context(), m); err != nil {
		api.Error(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, t)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		api.Error(w, api.ErrUnauthorized)
		return
	}

	tenants, err := h.store.ListTenantsForUser(r.Context(), identity.UserID)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSONList(w, tenants, nil)
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	t, ok := FromContext(r.Context())
	if !ok {
		api.Error(w, api.ErrTenantRequired)
		return
	}

	body := map[string]any{"tenant": t}
	if m, ok := MembershipFromContext(r.Context()); ok {
		body["role"] = m.Role
	}
	api.JSON(w, http.StatusOK, body)
}

type updateRequest struct {
	Name         *string         `json:"name"`
	Trial        *bool           `json:"trial"`
	ContactEmail *string         `json:"contact_email"`
	ContactPhone *string         `json:"contact_phone"`
	Settings     *map[string]any `json:"settings"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	t, _ := FromContext(r.Context())

	var req updateRequest
	if err := api.Bind(r, &req); err != nil {
		api.Error(w, api.BindError(err))
		return
	}

	updated := *t
	if req.Name != nil {
		if *req.Name == "" {
			api.Error(w, api.ErrBadRequest)
			return
		}
		updated.Name = *req.Name
	}
	if req.Trial != nil {
		updated.Trial = *req.Trial
	}
	if req.ContactEmail != nil {
		updated.ContactEmail = *req.ContactEmail
	}
	if req.ContactPhone != nil {
		updated.ContactPhone = *req.ContactPhone
	}
	if req.Settings != nil {
		updated.Settings = *req.Settings
	}

	if err := h.store.UpdateTenant(r.Context(), &updated); err != nil {
		api.Error(w, err)
		return
	}

	h.evict(r, &updated)
	api.JSON(w, http.StatusOK, &updated)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	t, _ := FromContext(r.Context())

	if err := h.store.DeactivateTenant(r.Context(), t.ID); err != nil {
		api.Error(w, err)
		return
	}

	h.evict(r, t)
	api.JSON(w, http.StatusOK, map[string]any{"deactivated": true})
}

// evict drops the tenant's cached resolution entries so deactivation and
// renames stop resolving within this instance immediately instead of at
// TTL expiry.
func (h *Handler) evict(r *http.Request, t *Tenant) {
	ctx := r.Context()
	h.cache.Delete(ctx, "slug:"+t.Slug)
	if domains, err := h.store.ListDomains(ctx, t.ID); err == nil {
		for _, d := range domains {
			h.cache.Delete(ctx, "domain:"+d.Domain)
		}
	}
}

func (h *Handler) listDomains(w http.ResponseWriter, r *http.Request) {
	t, _ := FromContext(r.Context())

	domains, err := h.store.ListDomains(r.Context(), t.ID)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSONList(w, domains, nil)
}

type addDomainRequest struct {
	Domain  string `json:"domain"`
	Primary bool   `json:"primary"`
}

func (h *Handler) addDomain(w http.ResponseWriter, r *http.Request) {
	t, _ := FromContext(r.Context())

	var req addDomainRequest
	if err := api.Bind(r, &req); err != nil {
		api.Error(w, api.BindError(err))
		return
	}
	if req.Domain == "" {
		api.Error(w, api.ErrBadRequest)
		return
	}

	d := &Domain{TenantID: t.ID, Domain: req.Domain, Primary: req.Primary}
	if err := h.store.AddDomain(r.Context(), d); err != nil {
		if errors.Is(err, ErrDomainTaken) {
			api.Error(w, api.ErrConflict)
			return
		}
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusCreated, d)
}

func (h *Handler) removeDomain(w http.ResponseWriter, r *http.Request) {
	t, _ := FromContext(r.Context())

	domainID, err := uuid.Parse(chi.URLParam(r, "domainID"))
	if err != nil {
		api.Error(w, api.ErrBadRequest)
		return
	}

	// Listed before removal so the cache entry can be evicted by name. A
	// failure here must not leave a stale entry serving the old mapping.
	domains, err := h.store.ListDomains(r.Context(), t.ID)
	if err != nil {
		api.Error(w, err)
		return
	}

	if err := h.store.RemoveDomain(r.Context(), t.ID, domainID); err != nil {
		if errors.Is(err, ErrDomainNotFound) {
			api.Error(w, api.ErrNotFound)
			return
		}
		api.Error(w, err)
		return
	}

	for _, d := range domains {
		if d.ID == domainID {
			h.cache.Delete(r.Context(), "domain:"+d.Domain)
		}
	}
	api.JSON(w, http.StatusOK, map[string]any{"removed": true})
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	t, _ := FromContext(r.Context())

	members, err := h.store.ListMembers(r.Context(), t.ID)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSONList(w, members, nil)
}

type updateRoleRequest struct {
	Role Role `json:"role"`
}

func (h *Handler) updateMemberRole(w http.ResponseWriter, r *http.Request) {
	t, _ := FromContext(r.Context())

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		api.Error(w, api.ErrBadRequest)
		return
	}

	var req updateRoleRequest
	if err := api.Bind(r, &req); err != nil {
		api.Error(w, api.BindError(err))
		return
	}

	// Granting ownership is reserved to owners; admins manage members.
	if req.Role == RoleOwner && !callerHasRole(r, RoleOwner) {
		api.Error(w, api.ErrForbidden)
		return
	}

	if err := h.store.UpdateMemberRole(r.Context(), t.ID, userID, req.Role); err != nil {
		if errors.Is(err, ErrMembershipNotFound) {
			api.Error(w, api.ErrNotFound)
			return
		}
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, map[string]any{"role": req.Role})
}

func (h *Handler) removeMember(w http.ResponseWriter, r *http.Request) {
	t, _ := FromContext(r.Context())

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		api.Error(w, api.ErrBadRequest)
		return
	}

	// An admin cannot remove an owner.
	target, err := h.store.FindMembership(r.Context(), userID, t.ID)
	if err != nil {
		if errors.Is(err, ErrMembershipNotFound) {
			api.Error(w, api.ErrNotFound)
			return
		}
		api.Error(w, err)
		return
	}
	if target.Role == RoleOwner && !callerHasRole(r, RoleOwner) {
		api.Error(w, api.ErrForbidden)
		return
	}

	if err := h.store.DeactivateMembership(r.Context(), t.ID, userID); err != nil {
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, map[string]any{"removed": true})
}

func callerHasRole(r *http.Request, min Role) bool {
	if identity, ok := auth.IdentityFromContext(r.Context()); ok && identity.Superuser {
		return true
	}
	m, ok := MembershipFromContext(r.Context())
	return ok && m.Role.AtLeast(min)
}
