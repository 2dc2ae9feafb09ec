package invite

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/primecut/brokerage/internal/api"
	"github.com/primecut/brokerage/internal/auth"
	"github.com/primecut/brokerage/internal/tenant"
)

// Handler exposes invitation management and acceptance.
type Handler struct {
	svc   *Service
	store *Store
}

// NewHandler creates the invite HTTP handler.
func NewHandler(svc *Service, store *Store) *Handler {
	return &Handler{svc: svc, store: store}
}

// Register attaches the invite endpoints to r. Management requires an
// admin in the resolved tenant; acceptance only needs an authenticated
// identity.
func (h *Handler) Register(r chi.Router) {
	r.Route("/invites", func(r chi.Router) {
		r.Post("/accept", h.accept)

		r.Group(func(r chi.Router) {
			r.Use(tenant.RequireRole(tenant.RoleAdmin))
			r.Get("/", h.list)
			r.Post("/", h.create)
			r.Delete("/{id}", h.revoke)
		})
	})
}

// Router returns a standalone router with the invite routes.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

type createRequest struct {
	Email string      `json:"email"`
	Role  tenant.Role `json:"role"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	t, _ := tenant.FromContext(r.Context())
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		api.Error(w, api.ErrUnauthorized)
		return
	}

	var req createRequest
	if err := api.Bind(r, &req); err != nil {
		api.Error(w, api.BindError(err))
		return
	}
	if req.Email == "" || req.Role == 0 {
		api.Error(w, api.ErrBadRequest)
		return
	}
	// Ownership is never granted through an invitation.
	if req.Role == tenant.RoleOwner {
		api.Error(w, api.ErrForbidden)
		return
	}

	if _, err := h.svc.Invite(r.Context(), t, identity.UserID, req.Email, req.Role); err != nil {
		api.Error(w, err)
		return
	}

	// The body is the same whether a membership was granted, an email
	// was sent, or the address was already a member.
	api.JSON(w, http.StatusAccepted, map[string]any{"invited": req.Email})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.ScopeFromContext(r.Context())
	if err != nil {
		api.JSONList(w, []Invite(nil), nil)
		return
	}

	invites, err := h.store.ListByTenant(r.Context(), scope)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSONList(w, invites, nil)
}

func (h *Handler) revoke(w http.ResponseWriter, r *http.Request) {
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

	if err := h.store.Revoke(r.Context(), scope, id); err != nil {
		if errors.Is(err, ErrInviteNotFound) {
			api.Error(w, api.ErrNotFound)
			return
		}
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, map[string]any{"revoked": true})
}

type acceptRequest struct {
	Token string `json:"token"`
}

func (h *Handler) accept(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		api.Error(w, api.ErrUnauthorized)
		return
	}

	var req acceptRequest
	if err := api.Bind(r, &req); err != nil {
		api.Error(w, api.BindError(err))
		return
	}
	if req.Token == "" {
		api.Error(w, api.ErrBadRequest)
		return
	}

	m, err := h.svc.Accept(r.Context(), identity, req.Token)
	if err != nil {
		switch {
		case errors.Is(err, ErrInviteNotFound):
			api.Error(w, api.ErrNotFound)
		case errors.Is(err, ErrInviteExpired), errors.Is(err, ErrInviteNotPending):
			api.Error(w, api.ErrUnprocessableEntity)
		case errors.Is(err, ErrEmailMismatch):
			api.Error(w, api.ErrForbidden)
		default:
			api.Error(w, err)
		}
		return
	}
	api.JSON(w, http.StatusOK, m)
}
