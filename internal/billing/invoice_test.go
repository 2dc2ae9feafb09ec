package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primecut/brokerage/internal/billing"
)

func openInvoice(total int64) *billing.Invoice {
	return &billing.Invoice{Status: billing.StatusOpen, TotalCents: total}
}

func TestInvoice_ApplyPayment(t *testing.T) {
	t.Parallel()

	t.Run("partial payment", func(t *testing.T) {
		t.Parallel()

		inv := openInvoice(10000)
		require.NoError(t, inv.ApplyPayment(4000))

		assert.Equal(t, int64(4000), inv.AmountPaidCents)
		assert.Equal(t, billing.StatusPartial, inv.Status)
	})

	t.Run("exact settlement flips to paid", func(t *testing.T) {
		t.Parallel()

		inv := openInvoice(10000)
		require.NoError(t, inv.ApplyPayment(4000))
		require.NoError(t, inv.ApplyPayment(6000))

		assert.Equal(t, int64(10000), inv.AmountPaidCents)
		assert.Equal(t, billing.StatusPaid, inv.Status)
	})

	t.Run("overpayment is rejected, rollup untouched", func(t *testing.T) {
		t.Parallel()

		inv := openInvoice(10000)
		require.NoError(t, inv.ApplyPayment(9000))

		err := inv.ApplyPayment(2000)
		assert.ErrorIs(t, err, billing.ErrOverpayment)
		assert.Equal(t, int64(9000), inv.AmountPaidCents)
		assert.Equal(t, billing.StatusPartial, inv.Status)
	})

	t.Run("paid invoice takes no more money", func(t *testing.T) {
		t.Parallel()

		inv := openInvoice(100)
		require.NoError(t, inv.ApplyPayment(100))

		assert.ErrorIs(t, inv.ApplyPayment(1), billing.ErrInvoicePaid)
	})

	t.Run("void invoice takes no money", func(t *testing.T) {
		t.Parallel()

		inv := openInvoice(100)
		inv.Status = billing.StatusVoid

		assert.ErrorIs(t, inv.ApplyPayment(50), billing.ErrInvoiceVoid)
	})

	t.Run("non-positive amounts are invalid", func(t *testing.T) {
		t.Parallel()

		inv := openInvoice(100)
		assert.ErrorIs(t, inv.ApplyPayment(0), billing.ErrInvalidAmount)
		assert.ErrorIs(t, inv.ApplyPayment(-5), billing.ErrInvalidAmount)
	})
}
