package api

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Envelope is the standard JSON response body. Data is never omitted on
// success so an empty collection serializes as [], not as a missing key.
type Envelope struct {
	Data  any            `json:"data"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail carries error information to the client.
type ErrorDetail struct {
	Key     string `json:"key"`
	Message string `json:"message,omitempty"`
}

// JSON writes data wrapped in the standard envelope.
func JSON(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, Envelope{Data: data})
}

// JSONList writes a collection plus meta (e.g. total count). A nil slice
// is rendered as an empty array so "no tenant resolved" reads cannot be
// told apart from genuinely empty tenants.
func JSONList[T any](w http.ResponseWriter, items []T, meta map[string]any) {
	if items == nil {
		items = []T{}
	}
	writeEnvelope(w, http.StatusOK, Envelope{Data: items, Meta: meta})
}

// Error maps err to the envelope. HTTPError values keep their status and
// key; anything else is a 500 with no internal detail leaked.
func Error(w http.ResponseWriter, err error) {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		writeEnvelope(w, httpErr.Code, Envelope{Error: &ErrorDetail{
			Key:     httpErr.Key,
			Message: http.StatusText(httpErr.Code),
		}})
		return
	}

	writeEnvelope(w, http.StatusInternalServerError, Envelope{Error: &ErrorDetail{
		Key:     ErrInternalServerError.Key,
		Message: http.StatusText(http.StatusInternalServerError),
	}})
}

func writeEnvelope(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
