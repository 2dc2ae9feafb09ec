package billing

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

// Storage is the invoice persistence the handler depends on. Implemented
// by Store.
type Storage interface {
	List(ctx context.Context, scope tenant.Scope) ([]Invoice, error)
	Get(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*Invoice, error)
	Create(ctx context.Context, scope tenant.Scope, inv *Invoice) error
	RecordPayment(ctx context.Context, scope tenant.Scope, invoiceID uuid.UUID, p *Payment) (*Invoice, error)
	ListPayments(ctx context.Context, scope tenant.Scope, invoiceID uuid.UUID) ([]Payment, error)
	Void(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*Invoice, error)
}

// Handler exposes invoices and payment recording.
type Handler struct {
	store Storage
}

// NewHandler creates the billing HTTP handler.
func NewHandler(store Storage) *Handler {
	return &Handler{store: store}
}

// Register attaches /invoices to r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/invoices", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Post("/{id}/payments", h.recordPayment)
		r.Get("/{id}/payments", h.listPayments)
		r.Post("/{id}/void", h.void)
	})
}

// Router returns a standalone router with the billing routes.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.ScopeFromContext(r.Context())
	if err != nil {
		api.JSONList(w, []Invoice(nil), nil)
		return
	}

	invoices, err := h.store.List(r.Context(), scope)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSONList(w, invoices, nil)
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

	inv, err := h.store.Get(r.Context(), scope, id)
	if err != nil {
		if errors.Is(err, ErrInvoiceNotFound) {
			api.Error(w, api.ErrNotFound)
			return
		}
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, inv)
}

type createRequest struct {
	OrderID    uuid.UUID `json:"order_id"`
	Number     string    `json:"number"`
	Direction  Direction `json:"direction"`
	IssueDate  string    `json:"issue_date"`
	DueDate    string    `json:"due_date"`
	TotalCents int64     `json:"total_cents"`
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
	if req.OrderID == uuid.Nil || req.Number == "" || !req.Direction.Valid() || req.TotalCents <= 0 {
		api.Error(w, api.ErrBadRequest)
		return
	}

	issueDate, err := time.Parse("2006-01-02", req.IssueDate)
	if err != nil {
		api.Error(w, api.ErrBadRequest)
		return
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil || dueDate.Before(issueDate) {
		api.Error(w, api.ErrBadRequest)
		return
	}

	inv := &Invoice{
		OrderID:    req.OrderID,
		Number:     req.Number,
		Direction:  req.Direction,
		IssueDate:  issueDate,
		DueDate:    dueDate,
		TotalCents: req.TotalCents,
	}
	if err := h.store.Create(r.Context(), scope, inv); err != nil {
		switch {
		case errors.Is(err, ErrNumberTaken):
			api.Error(w, api.ErrConflict)
		case errors.Is(err, ErrInvoiceNotFound):
			// The order is not visible in this tenant.
			api.Error(w, api.ErrNotFound)
		default:
			api.Error(w, err)
		}
		return
	}
	api.JSON(w, http.StatusCreated, inv)
}

type paymentRequest struct {
	Cents     int64  `json:"cents"`
	Method    string `json:"method"`
	Reference string `json:"reference"`
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
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

	var req paymentRequest
	if err := api.Bind(r, &req); err != nil {
		api.Error(w, api.BindError(err))
		return
	}
	if req.Method == "" {
		api.Error(w, api.ErrBadRequest)
		return
	}

	p := &Payment{Cents: req.Cents, Method: req.Method, Reference: req.Reference}
	inv, err := h.store.RecordPayment(r.Context(), scope, id, p)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvoiceNotFound):
			api.Error(w, api.ErrNotFound)
		case errors.Is(err, ErrInvalidAmount):
			api.Error(w, api.ErrBadRequest)
		case errors.Is(err, ErrOverpayment), errors.Is(err, ErrInvoiceVoid), errors.Is(err, ErrInvoicePaid):
			api.Error(w, api.ErrUnprocessableEntity)
		default:
			api.Error(w, err)
		}
		return
	}
	api.JSON(w, http.StatusCreated, map[string]any{"payment": p, "invoice": inv})
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.ScopeFromContext(r.Context())
	if err != nil {
		api.JSONList(w, []Payment(nil), nil)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.Error(w, api.ErrNotFound)
		return
	}

	payments, err := h.store.ListPayments(r.Context(), scope, id)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSONList(w, payments, nil)
}

func (h *Handler) void(w http.ResponseWriter, r *http.Request) {
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

	inv, err := h.store.Void(r.Context(), scope, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvoiceNotFound):
			api.Error(w, api.ErrNotFound)
		case errors.Is(err, ErrNotVoidable):
			api.Error(w, api.ErrUnprocessableEntity)
		default:
			api.Error(w, err)
		}
		return
	}
	api.JSON(w, http.StatusOK, inv)
}
