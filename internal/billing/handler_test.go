package billing_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primecut/brokerage/internal/api"
	"github.com/primecut/brokerage/internal/billing"
	"github.com/primecut/brokerage/internal/tenant"
)

func TestHandler_NoTenantContract(t *testing.T) {
	t.Parallel()

	router := billing.NewHandler(nil).Router()

	t.Run("list is empty", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invoices", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var env api.Envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, []any{}, env.Data)
	})

	t.Run("detail is not found", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invoices/"+uuid.NewString(), nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("payment is rejected with tenant_required", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/invoices/"+uuid.NewString()+"/payments", strings.NewReader(`{"cents":100,"method":"wire"}`))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)

		var env api.Envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		require.NotNil(t, env.Error)
		assert.Equal(t, "tenant_required", env.Error.Key)
	})
}

// fakeStore keeps invoices in memory under the same tenant predicate the
// SQL store applies: a foreign invoice id reads as not found, and
// payments joined through a foreign invoice are invisible.
type fakeStore struct {
	invoices map[uuid.UUID]*billing.Invoice
	payments map[uuid.UUID][]billing.Payment
}

func (f *fakeStore) lookup(scope tenant.Scope, id uuid.UUID) (*billing.Invoice, error) {
	inv, ok := f.invoices[id]
	if !ok || inv.TenantID != scope.TenantID() {
		return nil, billing.ErrInvoiceNotFound
	}
	return inv, nil
}

func (f *fakeStore) List(_ context.Context, scope tenant.Scope) ([]billing.Invoice, error) {
	var out []billing.Invoice
	for _, inv := range f.invoices {
		if inv.TenantID == scope.TenantID() {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeStore) Get(_ context.Context, scope tenant.Scope, id uuid.UUID) (*billing.Invoice, error) {
	return f.lookup(scope, id)
}

func (f *fakeStore) Create(_ context.Context, scope tenant.Scope, inv *billing.Invoice) error {
	inv.ID = uuid.New()
	inv.TenantID = scope.TenantID()
	inv.Status = billing.StatusOpen
	f.invoices[inv.ID] = inv
	return nil
}

func (f *fakeStore) RecordPayment(_ context.Context, scope tenant.Scope, invoiceID uuid.UUID, p *billing.Payment) (*billing.Invoice, error) {
	inv, err := f.lookup(scope, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := inv.ApplyPayment(p.Cents); err != nil {
		return nil, err
	}
	p.ID = uuid.New()
	p.InvoiceID = invoiceID
	p.PaidAt = time.Now().UTC()
	f.payments[invoiceID] = append(f.payments[invoiceID], *p)
	return inv, nil
}

func (f *fakeStore) ListPayments(_ context.Context, scope tenant.Scope, invoiceID uuid.UUID) ([]billing.Payment, error) {
	if _, err := f.lookup(scope, invoiceID); err != nil {
		return nil, nil
	}
	return f.payments[invoiceID], nil
}

func (f *fakeStore) Void(_ context.Context, scope tenant.Scope, id uuid.UUID) (*billing.Invoice, error) {
	inv, err := f.lookup(scope, id)
	if err != nil {
		return nil, err
	}
	if len(f.payments[id]) > 0 {
		return nil, billing.ErrNotVoidable
	}
	inv.Status = billing.StatusVoid
	return inv, nil
}

func asTenant(req *http.Request, id uuid.UUID) *http.Request {
	return req.WithContext(tenant.WithTenant(req.Context(), &tenant.Tenant{ID: id, Active: true}))
}

// An invoice of one tenant addressed under another tenant's scope reads
// as not found, byte for byte the same as an id that never existed, and
// cannot be paid against or voided.
func TestHandler_CrossTenantInvoiceIsNotFound(t *testing.T) {
	t.Parallel()

	acme, globex := uuid.New(), uuid.New()
	invoice := &billing.Invoice{
		ID:         uuid.New(),
		TenantID:   acme,
		OrderID:    uuid.New(),
		Number:     "INV-100",
		Status:     billing.StatusOpen,
		TotalCents: 250_000,
	}
	store := &fakeStore{
		invoices: map[uuid.UUID]*billing.Invoice{invoice.ID: invoice},
		payments: map[uuid.UUID][]billing.Payment{},
	}
	router := billing.NewHandler(store).Router()

	get := func(tenantID uuid.UUID, path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, asTenant(httptest.NewRequest(http.MethodGet, path, nil), tenantID))
		return w
	}

	t.Run("owning tenant reads its invoice", func(t *testing.T) {
		w := get(acme, "/invoices/"+invoice.ID.String())
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("foreign read is indistinguishable from absence", func(t *testing.T) {
		foreign := get(globex, "/invoices/"+invoice.ID.String())
		absent := get(globex, "/invoices/"+uuid.NewString())

		assert.Equal(t, http.StatusNotFound, foreign.Code)
		assert.Equal(t, absent.Code, foreign.Code)
		assert.Equal(t, absent.Body.String(), foreign.Body.String())
	})

	t.Run("foreign payment is not found and leaves the rollup untouched", func(t *testing.T) {
		req := asTenant(httptest.NewRequest(http.MethodPost, "/invoices/"+invoice.ID.String()+"/payments", strings.NewReader(`{"cents":100,"method":"wire"}`)), globex)
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Zero(t, invoice.AmountPaidCents)
		assert.Empty(t, store.payments[invoice.ID])
	})

	t.Run("foreign void is not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, asTenant(httptest.NewRequest(http.MethodPost, "/invoices/"+invoice.ID.String()+"/void", nil), globex))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, billing.StatusOpen, invoice.Status)
	})

	t.Run("payments of a foreign invoice read as an empty collection", func(t *testing.T) {
		w := get(globex, "/invoices/"+invoice.ID.String()+"/payments")

		require.Equal(t, http.StatusOK, w.Code)

		var env api.Envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, []any{}, env.Data)
	})
}
