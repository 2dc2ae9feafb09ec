// Package httpserver wraps net/http with graceful shutdown, env-driven
// configuration, and liveness/readiness probe handlers.
package httpserver
