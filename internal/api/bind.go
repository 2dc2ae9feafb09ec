package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrMissingContentType is returned when the request has no Content-Type.
	ErrMissingContentType = errors.New("missing content type")
	// ErrUnsupportedMediaType is returned for non-JSON request bodies.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	// ErrInvalidJSON is returned when the body cannot be decoded.
	ErrInvalidJSON = errors.New("invalid JSON body")
)

// Bind decodes the JSON request body into v. Decoding is strict: unknown
// fields and trailing data are rejected, so a client-supplied tenant field
// on a scoped entity fails loudly instead of being silently dropped.
func Bind(r *http.Request, v any) error {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return fmt.Errorf("%w: expected application/json", ErrMissingContentType)
	}

	mediaType := contentType
	if idx := strings.Index(contentType, ";"); idx != -1 {
		mediaType = strings.TrimSpace(contentType[:idx])
	}
	if mediaType != "application/json" {
		return fmt.Errorf("%w: got %s, expected application/json", ErrUnsupportedMediaType, mediaType)
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", ErrInvalidJSON)
		}
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	var extra json.RawMessage
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected data after JSON object", ErrInvalidJSON)
	}

	return nil
}

// BindError converts a Bind failure into the client-facing HTTPError.
func BindError(err error) error {
	switch {
	case errors.Is(err, ErrUnsupportedMediaType), errors.Is(err, ErrMissingContentType):
		return NewHTTPError(http.StatusUnsupportedMediaType, "unsupported_media_type")
	default:
		return ErrBadRequest
	}
}
