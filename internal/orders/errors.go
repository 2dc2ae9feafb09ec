package orders

import "errors"

var (
	// ErrOrderNotFound is returned when no order matches within the scope.
	ErrOrderNotFound = errors.New("order not found")

	// ErrNumberTaken is returned when the order number is already used
	// within the tenant.
	ErrNumberTaken = errors.New("order number already in use")

	// ErrInvalidKind is returned for an unknown order kind.
	ErrInvalidKind = errors.New("invalid order kind")

	// ErrInvalidTransition is returned when the requested status move is
	// not allowed from the current state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotEditable is returned when mutating an order past draft.
	ErrNotEditable = errors.New("order is no longer editable")

	// ErrCounterpartyMismatch is returned when the referenced counterparty
	// does not fit the order kind.
	ErrCounterpartyMismatch = errors.New("counterparty does not match order kind")
)
