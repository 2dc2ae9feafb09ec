package auth

import "errors"

var (
	// ErrUserNotFound is returned when no user matches the identifier.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials is returned for a wrong email/password pair.
	// Deliberately indistinguishable between "no such user" and "bad
	// password" at the API boundary.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserInactive is returned when a deactivated user authenticates.
	ErrUserInactive = errors.New("user is inactive")

	// ErrEmailTaken is returned when registering a duplicate email.
	ErrEmailTaken = errors.New("email already registered")
)
