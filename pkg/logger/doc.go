// Package logger builds slog loggers with the conventions used across the
// service: JSON output in production, text in development, and automatic
// injection of request-scoped attributes (request id, tenant id) from the
// context via handler decoration.
package logger
