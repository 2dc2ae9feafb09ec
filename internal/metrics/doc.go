// Package metrics wires the service's prometheus collectors: tenant
// resolution outcomes, cache effectiveness, and HTTP latency.
package metrics
