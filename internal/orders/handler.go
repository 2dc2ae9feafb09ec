package orders

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/primecut/brokerage/internal/api"
	"github.com/primecut/brokerage/internal/tenant"
)

// Storage is the order persistence the handler depends on. Implemented
// by Store.
type Storage interface {
	List(ctx context.Context, scope tenant.Scope, filter ListFilter) ([]Order, error)
	Get(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*Order, error)
	Create(ctx context.Context, scope tenant.Scope, o *Order) error
	ReplaceLines(ctx context.Context, scope tenant.Scope, orderID uuid.UUID, lines []Line) (*Order, error)
	Transition(ctx context.Context, scope tenant.Scope, id uuid.UUID, next Status) (*Order, error)
	UpdateNotes(ctx context.Context, scope tenant.Scope, id uuid.UUID, notes string) error
}

// Handler exposes order CRUD and lifecycle transitions.
type Handler struct {
	store Storage
}

// NewHandler creates the orders HTTP handler.
func NewHandler(store Storage) *Handler {
	return &Handler{store: store}
}

// Register attaches /orders to r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}/lines", h.replaceLines)
		r.Post("/{id}/status", h.transition)
		r.Patch("/{id}", h.updateNotes)
	})
}

// Router returns a standalone router with the order routes.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.ScopeFromContext(r.Context())
	if err != nil {
		api.JSONList(w, []Order(nil), nil)
		return
	}

	filter := ListFilter{
		Kind:   Kind(r.URL.Query().Get("kind")),
		Status: Status(r.URL.Query().Get("status")),
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		api.Error(w, api.ErrBadRequest)
		return
	}

	list, err := h.store.List(r.Context(), scope, filter)
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

	o, err := h.store.Get(r.Context(), scope, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			api.Error(w, api.ErrNotFound)
			return
		}
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, o)
}

type lineRequest struct {
	Product        string  `json:"product"`
	Cut            string  `json:"cut"`
	QuantityKG     float64 `json:"quantity_kg"`
	UnitPriceCents int64   `json:"unit_price_cents"`
}

type createRequest struct {
	Kind       Kind          `json:"kind"`
	Number     string        `json:"number"`
	CustomerID *uuid.UUID    `json:"customer_id"`
	SupplierID *uuid.UUID    `json:"supplier_id"`
	Currency   string        `json:"currency"`
	OrderDate  string        `json:"order_date"`
	Notes      string        `json:"notes"`
	Lines      []lineRequest `json:"lines"`
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
	if !req.Kind.Valid() || req.Number == "" || req.Currency == "" {
		api.Error(w, api.ErrBadRequest)
		return
	}

	// A purchase order points at a supplier, a sales order at a customer.
	switch req.Kind {
	case KindPurchase:
		if req.SupplierID == nil || req.CustomerID != nil {
			api.Error(w, api.ErrUnprocessableEntity)
			return
		}
	case KindSales:
		if req.CustomerID == nil || req.SupplierID != nil {
			api.Error(w, api.ErrUnprocessableEntity)
			return
		}
	}

	orderDate, err := time.Parse("2006-01-02", req.OrderDate)
	if err != nil {
		api.Error(w, api.ErrBadRequest)
		return
	}

	lines, ok := buildLines(req.Lines)
	if !ok {
		api.Error(w, api.ErrUnprocessableEntity)
		return
	}

	o := &Order{
		Kind:       req.Kind,
		Number:     req.Number,
		CustomerID: req.CustomerID,
		SupplierID: req.SupplierID,
		Currency:   req.Currency,
		OrderDate:  orderDate,
		Notes:      req.Notes,
		Lines:      lines,
	}
	if err := h.store.Create(r.Context(), scope, o); err != nil {
		if errors.Is(err, ErrNumberTaken) {
			api.Error(w, api.ErrConflict)
			return
		}
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusCreated, o)
}

func (h *Handler) replaceLines(w http.ResponseWriter, r *http.Request) {
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

	var req struct {
		Lines []lineRequest `json:"lines"`
	}
	if err := api.Bind(r, &req); err != nil {
		api.Error(w, api.BindError(err))
		return
	}

	lines, ok := buildLines(req.Lines)
	if !ok {
		api.Error(w, api.ErrUnprocessableEntity)
		return
	}

	o, err := h.store.ReplaceLines(r.Context(), scope, id, lines)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			api.Error(w, api.ErrNotFound)
		case errors.Is(err, ErrNotEditable):
			api.Error(w, api.ErrUnprocessableEntity)
		default:
			api.Error(w, err)
		}
		return
	}
	api.JSON(w, http.StatusOK, o)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
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

	var req struct {
		Status Status `json:"status"`
	}
	if err := api.Bind(r, &req); err != nil {
		api.Error(w, api.BindError(err))
		return
	}

	o, err := h.store.Transition(r.Context(), scope, id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			api.Error(w, api.ErrNotFound)
		case errors.Is(err, ErrInvalidTransition):
			api.Error(w, api.ErrUnprocessableEntity)
		default:
			api.Error(w, err)
		}
		return
	}
	api.JSON(w, http.StatusOK, o)
}

func (h *Handler) updateNotes(w http.ResponseWriter, r *http.Request) {
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

	var req struct {
		Notes string `json:"notes"`
	}
	if err := api.Bind(r, &req); err != nil {
		api.Error(w, api.BindError(err))
		return
	}

	if err := h.store.UpdateNotes(r.Context(), scope, id, req.Notes); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			api.Error(w, api.ErrNotFound)
			return
		}
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, map[string]any{"notes": req.Notes})
}

func buildLines(reqs []lineRequest) ([]Line, bool) {
	lines := make([]Line, 0, len(reqs))
	for _, lr := range reqs {
		if lr.Product == "" || lr.QuantityKG <= 0 || lr.UnitPriceCents < 0 {
			return nil, false
		}
		lines = append(lines, Line{
			Product:        lr.Product,
			Cut:            lr.Cut,
			QuantityKG:     lr.QuantityKG,
			UnitPriceCents: lr.UnitPriceCents,
		})
	}
	return lines, true
}
