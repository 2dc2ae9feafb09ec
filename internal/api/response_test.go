package api_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primecut/brokerage/internal/api"
)

func TestError(t *testing.T) {
	t.Parallel()

	t.Run("http error keeps status and key", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		api.Error(w, api.ErrTenantRequired)

		assert.Equal(t, http.StatusForbidden, w.Code)

		var body api.Envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.NotNil(t, body.Error)
		assert.Equal(t, "tenant_required", body.Error.Key)
	})

	t.Run("wrapped http error unwraps", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		api.Error(w, errors.Join(api.ErrNotFound, errors.New("row missing")))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown error hides detail behind 500", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		api.Error(w, errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

func TestJSONList(t *testing.T) {
	t.Parallel()

	t.Run("nil slice renders as empty array", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		api.JSONList[string](w, nil, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"data":[]`)
	})
}

func TestBind(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name string `json:"name"`
	}

	newReq := func(body, contentType string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		return req
	}

	t.Run("decodes valid body", func(t *testing.T) {
		t.Parallel()

		var p payload
		require.NoError(t, api.Bind(newReq(`{"name":"acme"}`, "application/json"), &p))
		assert.Equal(t, "acme", p.Name)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		t.Parallel()

		var p payload
		err := api.Bind(newReq(`{"name":"acme","tenant_id":"sneaky"}`, "application/json"), &p)
		assert.ErrorIs(t, err, api.ErrInvalidJSON)
	})

	t.Run("rejects missing content type", func(t *testing.T) {
		t.Parallel()

		var p payload
		err := api.Bind(newReq(`{}`, ""), &p)
		assert.ErrorIs(t, err, api.ErrMissingContentType)
	})

	t.Run("rejects non-json content type", func(t *testing.T) {
		t.Parallel()

		var p payload
		err := api.Bind(newReq(`{}`, "text/plain"), &p)
		assert.ErrorIs(t, err, api.ErrUnsupportedMediaType)
	})

	t.Run("rejects empty body", func(t *testing.T) {
		t.Parallel()

		var p payload
		err := api.Bind(newReq(``, "application/json"), &p)
		assert.ErrorIs(t, err, api.ErrInvalidJSON)
	})

	t.Run("rejects trailing data", func(t *testing.T) {
		t.Parallel()

		var p payload
		err := api.Bind(newReq(`{"name":"a"}{"name":"b"}`, "application/json"), &p)
		assert.ErrorIs(t, err, api.ErrInvalidJSON)
	})
}
