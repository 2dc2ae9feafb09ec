package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's prometheus collectors. It implements
// tenant.MetricsRecorder for the resolution middleware.
type Metrics struct {
	registry *prometheus.Registry

	resolutionOutcomes *prometheus.CounterVec
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	httpDuration       *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry, together with the
// standard Go and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		resolutionOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brokerage",
			Subsystem: "tenant",
			Name:      "resolution_total",
			Help:      "Tenant resolution outcomes by source (header, domain, subdomain, membership, none).",
		}, []string{"source"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "brokerage",
			Subsystem: "tenant",
			Name:      "cache_hits_total",
			Help:      "Tenant cache hits during domain and subdomain resolution.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "brokerage",
			Subsystem: "tenant",
			Name:      "cache_misses_total",
			Help:      "Tenant cache misses during domain and subdomain resolution.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "brokerage",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method, route pattern, and status class.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	registry.MustRegister(
		m.resolutionOutcomes, m.cacheHits, m.cacheMisses, m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ResolutionOutcome counts one tenant resolution by source.
func (m *Metrics) ResolutionOutcome(source string) {
	m.resolutionOutcomes.WithLabelValues(source).Inc()
}

// CacheHit counts one tenant cache hit.
func (m *Metrics) CacheHit() {
	m.cacheHits.Inc()
}

// CacheMiss counts one tenant cache miss.
func (m *Metrics) CacheMiss() {
	m.cacheMisses.Inc()
}

// Handler serves the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
