package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/primecut/brokerage/internal/metrics"
	"github.com/primecut/brokerage/internal/tenant"
)

func TestMetrics_ImplementsRecorder(t *testing.T) {
	t.Parallel()

	var _ tenant.MetricsRecorder = metrics.New()
}

func TestMetrics_Scrape(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	m.ResolutionOutcome("domain")
	m.ResolutionOutcome("none")
	m.CacheHit()
	m.CacheMiss()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `brokerage_tenant_resolution_total{source="domain"} 1`)
	assert.Contains(t, body, `brokerage_tenant_resolution_total{source="none"} 1`)
	assert.Contains(t, body, "brokerage_tenant_cache_hits_total 1")
	assert.Contains(t, body, "brokerage_tenant_cache_misses_total 1")
}

func TestMetrics_Middleware(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/42", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	scrape := httptest.NewRecorder()
	m.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// The route pattern, not the concrete path, labels the histogram.
	assert.Contains(t, scrape.Body.String(), `route="/orders/{id}"`)
	assert.NotContains(t, scrape.Body.String(), `route="/orders/42"`)
}
