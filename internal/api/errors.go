package api

import "net/http"

// HTTPError is an HTTP error with a status code and a stable machine key.
// The key is the contract with API clients; human wording may change.
type HTTPError struct {
	Code int    // HTTP status code
	Key  string // stable error key (e.g. "not_found", "tenant_required")
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	return e.Key
}

var (
	ErrBadRequest          = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrUnauthorized        = HTTPError{Code: http.StatusUnauthorized, Key: "unauthorized"}
	ErrForbidden           = HTTPError{Code: http.StatusForbidden, Key: "forbidden"}
	ErrNotFound            = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrConflict            = HTTPError{Code: http.StatusConflict, Key: "conflict"}
	ErrUnprocessableEntity = HTTPError{Code: http.StatusUnprocessableEntity, Key: "unprocessable_entity"}
	ErrInternalServerError = HTTPError{Code: http.StatusInternalServerError, Key: "internal_server_error"}

	// ErrTenantRequired rejects writes on requests that resolved no tenant.
	ErrTenantRequired = HTTPError{Code: http.StatusForbidden, Key: "tenant_required"}
	// ErrMembershipRequired rejects explicit tenant selection without an
	// active membership.
	ErrMembershipRequired = HTTPError{Code: http.StatusForbidden, Key: "membership_required"}
)

// NewHTTPError creates a custom HTTP error.
func NewHTTPError(code int, key string) HTTPError {
	return HTTPError{Code: code, Key: key}
}
