package directory

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/primecut/brokerage/internal/api"
	"github.com/primecut/brokerage/internal/tenant"
)

// PartyStorage is the directory persistence the handler depends on.
// Implemented by PartyStore.
type PartyStorage interface {
	List(ctx context.Context, scope tenant.Scope) ([]Party, error)
	Get(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*Party, error)
	Create(ctx context.Context, scope tenant.Scope, p *Party) error
	Update(ctx context.Context, scope tenant.Scope, p *Party) error
	Deactivate(ctx context.Context, scope tenant.Scope, id uuid.UUID) error
}

// Handler exposes the customer and supplier directories. Both resources
// honor the no-tenant contract: tenant-less lists are empty, tenant-less
// details are 404, tenant-less writes are rejected.
type Handler struct {
	customers PartyStorage
	suppliers PartyStorage
}

// NewHandler creates the directory HTTP handler.
func NewHandler(customers, suppliers PartyStorage) *Handler {
	return &Handler{customers: customers, suppliers: suppliers}
}

// Register attaches /customers and /suppliers to r.
func (h *Handler) Register(r chi.Router) {
	mountParty(r, "/customers", h.customers)
	mountParty(r, "/suppliers", h.suppliers)
}

// Router returns a standalone router with the directory routes.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func mountParty(r chi.Router, path string, store PartyStorage) {
	res := &partyResource{store: store}
	r.Route(path, func(r chi.Router) {
		r.Get("/", res.list)
		r.Post("/", res.create)
		r.Get("/{id}", res.get)
		r.Put("/{id}", res.update)
		r.Delete("/{id}", res.deactivate)
	})
}

type partyResource struct {
	store PartyStorage
}

func (res *partyResource) list(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.ScopeFromContext(r.Context())
	if err != nil {
		api.JSONList(w, []Party(nil), nil)
		return
	}

	parties, err := res.store.List(r.Context(), scope)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSONList(w, parties, nil)
}

func (res *partyResource) get(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.ScopeFromContext(r.Context())
	if err != nil {
		api.Error(w, api.ErrNotFound)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.Error(w, api.ErrNotFound)
		return
	}

	p, err := res.store.Get(r.Context(), scope, id)
	if err != nil {
		if errors.Is(err, ErrPartyNotFound) {
			api.Error(w, api.ErrNotFound)
			return
		}
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, p)
}

type partyRequest struct {
	Code             string `json:"code"`
	Name             string `json:"name"`
	ContactName      string `json:"contact_name"`
	ContactEmail     string `json:"contact_email"`
	ContactPhone     string `json:"contact_phone"`
	PaymentTermsDays int    `json:"payment_terms_days"`
	Active           *bool  `json:"active"`
}

func (res *partyResource) create(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.ScopeFromContext(r.Context())
	if err != nil {
		api.Error(w, api.ErrTenantRequired)
		return
	}

	var req partyRequest
	if err := api.Bind(r, &req); err != nil {
		api.Error(w, api.BindError(err))
		return
	}
	if req.Code == "" || req.Name == "" || req.PaymentTermsDays < 0 {
		api.Error(w, api.ErrBadRequest)
		return
	}

	p := &Party{
		Code:             req.Code,
		Name:             req.Name,
		ContactName:      req.ContactName,
		ContactEmail:     req.ContactEmail,
		ContactPhone:     req.ContactPhone,
		PaymentTermsDays: req.PaymentTermsDays,
		Active:           true,
	}
	if req.Active != nil {
		p.Active = *req.Active
	}

	if err := res.store.Create(r.Context(), scope, p); err != nil {
		if errors.Is(err, ErrCodeTaken) {
			api.Error(w, api.ErrConflict)
			return
		}
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusCreated, p)
}

func (res *partyResource) update(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.ScopeFromContext(r.Context())
	if err != nil {
		api.Error(w, api.ErrTenantRequired)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.Error(w, api.ErrNotFound)
		return
	}

	var req partyRequest
	if err := api.Bind(r, &req); err != nil {
		api.Error(w, api.BindError(err))
		return
	}
	if req.Name == "" || req.PaymentTermsDays < 0 {
		api.Error(w, api.ErrBadRequest)
		return
	}

	current, err := res.store.Get(r.Context(), scope, id)
	if err != nil {
		if errors.Is(err, ErrPartyNotFound) {
			api.Error(w, api.ErrNotFound)
			return
		}
		api.Error(w, err)
		return
	}

	// Codes are immutable once assigned; the request field is ignored on
	// update so references in order history stay stable.
	current.Name = req.Name
	current.ContactName = req.ContactName
	current.ContactEmail = req.ContactEmail
	current.ContactPhone = req.ContactPhone
	current.PaymentTermsDays = req.PaymentTermsDays
	if req.Active != nil {
		current.Active = *req.Active
	}

	if err := res.store.Update(r.Context(), scope, current); err != nil {
		if errors.Is(err, ErrPartyNotFound) {
			api.Error(w, api.ErrNotFound)
			return
		}
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, current)
}

func (res *partyResource) deactivate(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.ScopeFromContext(r.Context())
	if err != nil {
		api.Error(w, api.ErrTenantRequired)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.Error(w, api.ErrNotFound)
		return
	}

	if err := res.store.Deactivate(r.Context(), scope, id); err != nil {
		if errors.Is(err, ErrPartyNotFound) {
			api.Error(w, api.ErrNotFound)
			return
		}
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, map[string]any{"deactivated": true})
}
