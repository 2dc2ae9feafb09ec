package orders

import (
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes what side of the brokerage an order sits on.
type Kind string

const (
	// KindPurchase buys product in from a supplier.
	KindPurchase Kind = "purchase"
	// KindSales sells product out to a customer.
	KindSales Kind = "sales"
)

// Valid reports whether k is a known order kind.
func (k Kind) Valid() bool {
	return k == KindPurchase || k == KindSales
}

// Status is the order lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusConfirmed Status = "confirmed"
	StatusDelivered Status = "delivered"
	StatusClosed    Status = "closed"
	StatusCancelled Status = "cancelled"
)

// transitions holds the allowed forward moves. Cancellation is only
// possible before goods move; nothing leaves a terminal state.
var transitions = map[Status][]Status{
	StatusDraft:     {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusDelivered, StatusCancelled},
	StatusDelivered: {StatusClosed},
}

// CanTransition reports whether moving from s to next is allowed.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is a purchase or sales order. A purchase order references a
// supplier, a sales order a customer; the other side is always nil.
type Order struct {
	ID         uuid.UUID  `json:"id"`
	TenantID   uuid.UUID  `json:"tenant_id"`
	Kind       Kind       `json:"kind"`
	Number     string     `json:"number"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	SupplierID *uuid.UUID `json:"supplier_id,omitempty"`
	Status     Status     `json:"status"`
	Currency   string     `json:"currency"`
	OrderDate  time.Time  `json:"order_date"`
	Notes      string     `json:"notes,omitempty"`
	Lines      []Line     `json:"lines,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Line is one product position on an order. Prices are in minor currency
// units per kilogram.
type Line struct {
	ID             uuid.UUID `json:"id"`
	OrderID        uuid.UUID `json:"order_id"`
	Product        string    `json:"product"`
	Cut            string    `json:"cut,omitempty"`
	QuantityKG     float64   `json:"quantity_kg"`
	UnitPriceCents int64     `json:"unit_price_cents"`
}

// TotalCents sums the order lines, rounding each line to whole cents.
func (o *Order) TotalCents() int64 {
	var total int64
	for _, l := range o.Lines {
		total += int64(l.QuantityKG*float64(l.UnitPriceCents) + 0.5)
	}
	return total
}
