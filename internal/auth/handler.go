package auth

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/primecut/brokerage/internal/api"
)

// Handler exposes login and identity endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates the auth HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Router mounts the auth endpoints. The login route lives on the tenant
// middleware's skip list: a user must be able to authenticate before any
// tenant is resolvable.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.login)
	return r
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := api.Bind(r, &req); err != nil {
		api.Error(w, api.BindError(err))
		return
	}
	if req.Email == "" || req.Password == "" {
		api.Error(w, api.ErrBadRequest)
		return
	}

	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUserInactive):
			api.Error(w, api.ErrUnauthorized)
		default:
			api.Error(w, err)
		}
		return
	}

	api.JSON(w, http.StatusOK, loginResponse{Token: token})
}

// Me returns the authenticated identity. Mounted under the API router so
// it runs after the auth middleware.
func Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		api.Error(w, api.ErrUnauthorized)
		return
	}
	api.JSON(w, http.StatusOK, map[string]any{
		"user_id":   identity.UserID,
		"email":     identity.Email,
		"superuser": identity.Superuser,
	})
}
