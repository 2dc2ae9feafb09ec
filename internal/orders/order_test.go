package orders_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/primecut/brokerage/internal/orders"
)

func TestStatus_CanTransition(t *testing.T) {
	t.Parallel()

	t.Run("forward path", func(t *testing.T) {
		t.Parallel()

		assert.True(t, orders.StatusDraft.CanTransition(orders.StatusConfirmed))
		assert.True(t, orders.StatusConfirmed.CanTransition(orders.StatusDelivered))
		assert.True(t, orders.StatusDelivered.CanTransition(orders.StatusClosed))
	})

	t.Run("cancellation only before delivery", func(t *testing.T) {
		t.Parallel()

		assert.True(t, orders.StatusDraft.CanTransition(orders.StatusCancelled))
		assert.True(t, orders.StatusConfirmed.CanTransition(orders.StatusCancelled))
		assert.False(t, orders.StatusDelivered.CanTransition(orders.StatusCancelled))
	})

	t.Run("no skipping, no reversing, nothing out of terminal states", func(t *testing.T) {
		t.Parallel()

		assert.False(t, orders.StatusDraft.CanTransition(orders.StatusDelivered))
		assert.False(t, orders.StatusConfirmed.CanTransition(orders.StatusDraft))
		assert.False(t, orders.StatusClosed.CanTransition(orders.StatusDraft))
		assert.False(t, orders.StatusCancelled.CanTransition(orders.StatusConfirmed))
		assert.False(t, orders.StatusDraft.CanTransition(orders.StatusDraft))
	})
}

func TestOrder_TotalCents(t *testing.T) {
	t.Parallel()

	o := &orders.Order{Lines: []orders.Line{
		{Product: "beef", Cut: "ribeye", QuantityKG: 120.5, UnitPriceCents: 1850},
		{Product: "beef", Cut: "brisket", QuantityKG: 300, UnitPriceCents: 790},
	}}

	// 120.5*1850 = 222925, 300*790 = 237000
	assert.Equal(t, int64(459925), o.TotalCents())
}

func TestKind_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, orders.KindPurchase.Valid())
	assert.True(t, orders.KindSales.Valid())
	assert.False(t, orders.Kind("transfer").Valid())
}
