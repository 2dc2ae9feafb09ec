package billing

import (
	"time"

	"github.com/google/uuid"
)

// Direction tells which way the money flows.
type Direction string

const (
	// DirectionReceivable invoices a customer (sales side).
	DirectionReceivable Direction = "receivable"
	// DirectionPayable is owed to a supplier (purchase side).
	DirectionPayable Direction = "payable"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionReceivable || d == DirectionPayable
}

// Status is the invoice settlement state. It is fully derived from
// amount_paid versus total, except for void.
type Status string

const (
	StatusOpen    Status = "open"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
	StatusVoid    Status = "void"
)

// Invoice bills one order. Amounts are in minor currency units.
type Invoice struct {
	ID              uuid.UUID `json:"id"`
	TenantID        uuid.UUID `json:"tenant_id"`
	OrderID         uuid.UUID `json:"order_id"`
	Number          string    `json:"number"`
	Direction       Direction `json:"direction"`
	Status          Status    `json:"status"`
	IssueDate       time.Time `json:"issue_date"`
	DueDate         time.Time `json:"due_date"`
	TotalCents      int64     `json:"total_cents"`
	AmountPaidCents int64     `json:"amount_paid_cents"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Payment records money against an invoice.
type Payment struct {
	ID        uuid.UUID `json:"id"`
	InvoiceID uuid.UUID `json:"invoice_id"`
	Cents     int64     `json:"cents"`
	Method    string    `json:"method"`
	Reference string    `json:"reference,omitempty"`
	PaidAt    time.Time `json:"paid_at"`
}

// ApplyPayment rolls cents into the invoice and derives the new status.
// The rollup can never exceed the total; overpayment is rejected rather
// than capped so the caller has to sort out the discrepancy.
func (inv *Invoice) ApplyPayment(cents int64) error {
	if cents <= 0 {
		return ErrInvalidAmount
	}
	switch inv.Status {
	case StatusVoid:
		return ErrInvoiceVoid
	case StatusPaid:
		return ErrInvoicePaid
	}
	if inv.AmountPaidCents+cents > inv.TotalCents {
		return ErrOverpayment
	}

	inv.AmountPaidCents += cents
	if inv.AmountPaidCents == inv.TotalCents {
		inv.Status = StatusPaid
	} else {
		inv.Status = StatusPartial
	}
	return nil
}
