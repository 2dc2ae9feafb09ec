package requestid_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primecut/brokerage/pkg/requestid"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	run := func(t *testing.T, inbound string) (string, string) {
		t.Helper()

		var fromCtx string
		handler := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fromCtx = requestid.FromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if inbound != "" {
			req.Header.Set(requestid.Header, inbound)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		return fromCtx, w.Header().Get(requestid.Header)
	}

	t.Run("generates id when absent", func(t *testing.T) {
		t.Parallel()

		fromCtx, echoed := run(t, "")
		require.NotEmpty(t, fromCtx)
		assert.Equal(t, fromCtx, echoed)
		_, err := uuid.Parse(fromCtx)
		assert.NoError(t, err)
	})

	t.Run("keeps valid inbound id", func(t *testing.T) {
		t.Parallel()

		fromCtx, echoed := run(t, "trace-abc_123")
		assert.Equal(t, "trace-abc_123", fromCtx)
		assert.Equal(t, "trace-abc_123", echoed)
	})

	t.Run("replaces malformed inbound id", func(t *testing.T) {
		t.Parallel()

		fromCtx, _ := run(t, "bad id with spaces")
		assert.NotEqual(t, "bad id with spaces", fromCtx)
		_, err := uuid.Parse(fromCtx)
		assert.NoError(t, err)
	})

	t.Run("replaces oversized inbound id", func(t *testing.T) {
		t.Parallel()

		long := strings.Repeat("a", 200)
		fromCtx, _ := run(t, long)
		assert.NotEqual(t, long, fromCtx)
	})
}

func TestFromContext_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, requestid.FromContext(t.Context()))
}
