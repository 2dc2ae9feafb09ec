package httpserver

import "errors"

var (
	// ErrStart wraps listen/serve failures during startup, before the
	// brokerage API has accepted any traffic.
	ErrStart = errors.New("failed to start HTTP server")
	// ErrShutdown reports that in-flight requests did not drain within
	// the configured shutdown timeout.
	ErrShutdown = errors.New("failed to shutdown HTTP server gracefully")
)
