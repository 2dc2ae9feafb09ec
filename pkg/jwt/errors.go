package jwt

import "errors"

var (
	// ErrMissingSigningKey is returned when a Service is created without a key.
	ErrMissingSigningKey = errors.New("missing signing key")

	// ErrMissingClaims is returned when Generate is called with nil claims.
	ErrMissingClaims = errors.New("missing claims")

	// ErrInvalidToken is returned for structurally invalid or premature tokens.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidSignature is returned when signature verification fails.
	ErrInvalidSignature = errors.New("invalid token signature")

	// ErrExpiredToken is returned when the token's exp claim has passed.
	ErrExpiredToken = errors.New("token expired")
)
