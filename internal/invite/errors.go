package invite

import "errors"

var (
	// ErrInviteNotFound is returned when no invite matches.
	ErrInviteNotFound = errors.New("invite not found")

	// ErrInviteExpired is returned when accepting past the expiry.
	ErrInviteExpired = errors.New("invite has expired")

	// ErrInviteNotPending is returned when accepting a consumed or
	// revoked invite.
	ErrInviteNotPending = errors.New("invite is no longer pending")

	// ErrEmailMismatch is returned when the accepting account's email
	// differs from the invited one.
	ErrEmailMismatch = errors.New("invite was issued for a different email")

	// ErrFailedToSend wraps transport failures from the email provider.
	ErrFailedToSend = errors.New("failed to send invitation email")
)
