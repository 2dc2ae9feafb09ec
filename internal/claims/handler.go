package claims

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/primecut/brokerage/internal/api"
	"github.com/primecut/brokerage/internal/tenant"
)

// Storage is the claim persistence the handler depends on. Implemented
// by Store.
type Storage interface {
	List(ctx context.Context, scope tenant.Scope) ([]Claim, error)
	Get(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*Claim, error)
	Create(ctx context.Context, scope tenant.Scope, c *Claim) error
	Resolve(ctx context.Context, scope tenant.Scope, id uuid.UUID, next Status, notes string) (*Claim, error)
}

// Handler exposes claim CRUD and resolution.
type Handler struct {
	store Storage
}

// NewHandler creates the claims HTTP handler.
func NewHandler(store Storage) *Handler {
	return &Handler{store: store}
}

// Register attaches /claims to r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/claims", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Post("/{id}/resolve", h.resolve)
	})
}

// Router returns a standalone router with the claim routes.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.ScopeFromContext(r.Context())
	if err != nil {
		api.JSONList(w, []Claim(nil), nil)
		return
	}

	list, err := h.store.List(r.Context(), scope)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSONList(w, list, nil)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
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

	c, err := h.store.Get(r.Context(), scope, id)
	if err != nil {
		if errors.Is(err, ErrClaimNotFound) {
			api.Error(w, api.ErrNotFound)
			return
		}
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, c)
}

type createRequest struct {
	OrderID     uuid.UUID `json:"order_id"`
	Reference   string    `json:"reference"`
	Reason      string    `json:"reason"`
	QuantityKG  float64   `json:"quantity_kg"`
	AmountCents int64     `json:"amount_cents"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.ScopeFromContext(r.Context())
	if err != nil {
		api.Error(w, api.ErrTenantRequired)
		return
	}

	var req createRequest
	if err := api.Bind(r, &req); err != nil {
		api.Error(w, api.BindError(err))
		return
	}
	if req.OrderID == uuid.Nil || req.Reference == "" || req.Reason == "" ||
		req.QuantityKG < 0 || req.AmountCents < 0 {
		api.Error(w, api.ErrBadRequest)
		return
	}

	c := &Claim{
		OrderID:     req.OrderID,
		Reference:   req.Reference,
		Reason:      req.Reason,
		QuantityKG:  req.QuantityKG,
		AmountCents: req.AmountCents,
	}
	if err := h.store.Create(r.Context(), scope, c); err != nil {
		switch {
		case errors.Is(err, ErrReferenceTaken):
			api.Error(w, api.ErrConflict)
		case errors.Is(err, ErrClaimNotFound):
			// The order is not visible in this tenant.
			api.Error(w, api.ErrNotFound)
		default:
			api.Error(w, err)
		}
		return
	}
	api.JSON(w, http.StatusCreated, c)
}

type resolveRequest struct {
	Status Status `json:"status"`
	Notes  string `json:"notes"`
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
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

	var req resolveRequest
	if err := api.Bind(r, &req); err != nil {
		api.Error(w, api.BindError(err))
		return
	}

	c, err := h.store.Resolve(r.Context(), scope, id, req.Status, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, ErrClaimNotFound):
			api.Error(w, api.ErrNotFound)
		case errors.Is(err, ErrInvalidTransition):
			api.Error(w, api.ErrUnprocessableEntity)
		default:
			api.Error(w, err)
		}
		return
	}
	api.JSON(w, http.StatusOK, c)
}
