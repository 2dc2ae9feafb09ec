package billing

import "errors"

var (
	// ErrInvoiceNotFound is returned when no invoice matches within the scope.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrNumberTaken is returned when the invoice number is already used
	// within the tenant.
	ErrNumberTaken = errors.New("invoice number already in use")

	// ErrInvalidAmount rejects zero or negative payment amounts.
	ErrInvalidAmount = errors.New("payment amount must be positive")

	// ErrOverpayment rejects payments that would push the rollup past the
	// invoice total.
	ErrOverpayment = errors.New("payment exceeds outstanding amount")

	// ErrInvoiceVoid rejects payments against a voided invoice.
	ErrInvoiceVoid = errors.New("invoice is void")

	// ErrInvoicePaid rejects payments against a settled invoice.
	ErrInvoicePaid = errors.New("invoice is already paid")

	// ErrNotVoidable rejects voiding an invoice that has payments.
	ErrNotVoidable = errors.New("invoice with payments cannot be voided")
)
