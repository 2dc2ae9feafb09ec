package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/primecut/brokerage/internal/tenant"
	"github.com/primecut/brokerage/pkg/pg"
)

// Store persists invoices and payments under the scoped-query convention.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a billing store over the shared pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var _ Storage = (*Store)(nil)

const invoiceColumns = "id, tenant_id, order_id, number, direction, status, issue_date, due_date, total_cents, amount_paid_cents, created_at, updated_at"

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	var direction, status string
	err := row.Scan(
		&inv.ID, &inv.TenantID, &inv.OrderID, &inv.Number,
		&direction, &status, &inv.IssueDate, &inv.DueDate,
		&inv.TotalCents, &inv.AmountPaidCents, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("scan invoice: %w", err)
	}
	inv.Direction = Direction(direction)
	inv.Status = Status(status)
	return &inv, nil
}

// List returns the scope's invoices, newest issue date first.
func (s *Store) List(ctx context.Context, scope tenant.Scope) ([]Invoice, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM invoices
		WHERE tenant_id = $1
		ORDER BY issue_date DESC, number DESC`, invoiceColumns)

	rows, err := s.pool.Query(ctx, query, scope.TenantID())
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

// Get returns one invoice within the scope.
func (s *Store) Get(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*Invoice, error) {
	query := fmt.Sprintf("SELECT %s FROM invoices WHERE id = $1 AND tenant_id = $2", invoiceColumns)
	return scanInvoice(s.pool.QueryRow(ctx, query, id, scope.TenantID()))
}

// Create inserts an invoice. The referenced order must belong to the
// same scope; the subselect enforces it without a prior read.
func (s *Store) Create(ctx context.Context, scope tenant.Scope, inv *Invoice) error {
	now := time.Now().UTC()
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	inv.TenantID = scope.TenantID()
	inv.Status = StatusOpen
	inv.AmountPaidCents = 0
	inv.CreatedAt = now
	inv.UpdatedAt = now

	tag, err := s.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO invoices (%s)
		SELECT $1, $2, o.id, $4, $5, $6, $7, $8, $9, $10, $11, $12
		FROM orders o WHERE o.id = $3 AND o.tenant_id = $2`, invoiceColumns),
		inv.ID, inv.TenantID, inv.OrderID, inv.Number,
		string(inv.Direction), string(inv.Status),
		inv.IssueDate, inv.DueDate, inv.TotalCents, inv.AmountPaidCents,
		inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return ErrNumberTaken
		}
		return fmt.Errorf("create invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// The order does not exist in this tenant.
		return ErrInvoiceNotFound
	}
	return nil
}

// RecordPayment applies a payment inside a transaction: the invoice row
// is locked, the rollup validated in memory, then payment insert and
// invoice update land together.
func (s *Store) RecordPayment(ctx context.Context, scope tenant.Scope, invoiceID uuid.UUID, p *Payment) (*Invoice, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := fmt.Sprintf("SELECT %s FROM invoices WHERE id = $1 AND tenant_id = $2 FOR UPDATE", invoiceColumns)
	inv, err := scanInvoice(tx.QueryRow(ctx, query, invoiceID, scope.TenantID()))
	if err != nil {
		return nil, err
	}

	if err := inv.ApplyPayment(p.Cents); err != nil {
		return nil, err
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.InvoiceID = inv.ID
	if p.PaidAt.IsZero() {
		p.PaidAt = time.Now().UTC()
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO payments (id, invoice_id, cents, method, reference, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.InvoiceID, p.Cents, p.Method, p.Reference, p.PaidAt,
	); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE invoices SET amount_paid_cents = $2, status = $3, updated_at = now() WHERE id = $1",
		inv.ID, inv.AmountPaidCents, string(inv.Status),
	); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return inv, nil
}

// ListPayments returns an invoice's payments, oldest first. The join
// keeps the tenant predicate on the path.
func (s *Store) ListPayments(ctx context.Context, scope tenant.Scope, invoiceID uuid.UUID) ([]Payment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.invoice_id, p.cents, p.method, p.reference, p.paid_at
		FROM payments p
		JOIN invoices i ON i.id = p.invoice_id
		WHERE p.invoice_id = $1 AND i.tenant_id = $2
		ORDER BY p.paid_at ASC`,
		invoiceID, scope.TenantID())
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Cents, &p.Method, &p.Reference, &p.PaidAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// Void cancels an invoice that has no money against it.
func (s *Store) Void(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*Invoice, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("void invoice: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := fmt.Sprintf("SELECT %s FROM invoices WHERE id = $1 AND tenant_id = $2 FOR UPDATE", invoiceColumns)
	inv, err := scanInvoice(tx.QueryRow(ctx, query, id, scope.TenantID()))
	if err != nil {
		return nil, err
	}
	if inv.AmountPaidCents > 0 {
		return nil, ErrNotVoidable
	}
	if inv.Status == StatusVoid {
		return inv, tx.Commit(ctx)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE invoices SET status = $2, updated_at = now() WHERE id = $1",
		inv.ID, string(StatusVoid)); err != nil {
		return nil, fmt.Errorf("void invoice: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	inv.Status = StatusVoid
	return inv, nil
}
