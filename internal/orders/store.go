package orders

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

// Store persists orders and their lines. Every method filters by the
// scope's tenant, so a foreign order id reads as not found.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates an order store over the shared pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var _ Storage = (*Store)(nil)

const orderColumns = "id, tenant_id, kind, number, customer_id, supplier_id, status, currency, order_date, notes, created_at, updated_at"

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var kind, status string
	err := row.Scan(
		&o.ID, &o.TenantID, &kind, &o.Number,
		&o.CustomerID, &o.SupplierID, &status,
		&o.Currency, &o.OrderDate, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	o.Kind = Kind(kind)
	o.Status = Status(status)
	return &o, nil
}

// ListFilter narrows List results. Zero values mean no filtering.
type ListFilter struct {
	Kind   Kind
	Status Status
}

// List returns the scope's orders, newest first, without lines.
func (s *Store) List(ctx context.Context, scope tenant.Scope, filter ListFilter) ([]Order, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM orders
		WHERE tenant_id = $1
		  AND ($2 = '' OR kind = $2)
		  AND ($3 = '' OR status = $3)
		ORDER BY order_date DESC, number DESC`, orderColumns)

	rows, err := s.pool.Query(ctx, query, scope.TenantID(), string(filter.Kind), string(filter.Status))
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// Get returns one order with its lines.
func (s *Store) Get(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*Order, error) {
	query := fmt.Sprintf("SELECT %s FROM orders WHERE id = $1 AND tenant_id = $2", orderColumns)
	o, err := scanOrder(s.pool.QueryRow(ctx, query, id, scope.TenantID()))
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, order_id, product, cut, quantity_kg, unit_price_cents
		FROM order_lines
		WHERE order_id = $1
		ORDER BY product, cut`, o.ID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.OrderID, &l.Product, &l.Cut, &l.QuantityKG, &l.UnitPriceCents); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		o.Lines = append(o.Lines, l)
	}
	return o, rows.Err()
}

// Create inserts an order with its lines in one transaction.
func (s *Store) Create(ctx context.Context, scope tenant.Scope, o *Order) error {
	now := time.Now().UTC()
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.TenantID = scope.TenantID()
	o.Status = StatusDraft
	o.CreatedAt = now
	o.UpdatedAt = now

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, fmt.Sprintf(`
		INSERT INTO orders (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`, orderColumns),
		o.ID, o.TenantID, string(o.Kind), o.Number,
		o.CustomerID, o.SupplierID, string(o.Status),
		o.Currency, o.OrderDate, o.Notes, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return ErrNumberTaken
		}
		return fmt.Errorf("create order: %w", err)
	}

	if err := insertLines(ctx, tx, o); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ReplaceLines swaps the order's line set. Only draft orders are
// editable; later states have invoices hanging off the totals.
func (s *Store) ReplaceLines(ctx context.Context, scope tenant.Scope, orderID uuid.UUID, lines []Line) (*Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("replace lines: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := fmt.Sprintf("SELECT %s FROM orders WHERE id = $1 AND tenant_id = $2 FOR UPDATE", orderColumns)
	o, err := scanOrder(tx.QueryRow(ctx, query, orderID, scope.TenantID()))
	if err != nil {
		return nil, err
	}
	if o.Status != StatusDraft {
		return nil, ErrNotEditable
	}

	if _, err := tx.Exec(ctx, "DELETE FROM order_lines WHERE order_id = $1", o.ID); err != nil {
		return nil, fmt.Errorf("replace lines: %w", err)
	}
	o.Lines = lines
	if err := insertLines(ctx, tx, o); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, "UPDATE orders SET updated_at = now() WHERE id = $1", o.ID); err != nil {
		return nil, fmt.Errorf("replace lines: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

func insertLines(ctx context.Context, tx pgx.Tx, o *Order) error {
	for i := range o.Lines {
		l := &o.Lines[i]
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		l.OrderID = o.ID
		_, err := tx.Exec(ctx, `
			INSERT INTO order_lines (id, order_id, product, cut, quantity_kg, unit_price_cents)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			l.ID, l.OrderID, l.Product, l.Cut, l.QuantityKG, l.UnitPriceCents,
		)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}
	return nil
}

// Transition moves the order to the next status if the lifecycle allows
// it. The read and the write share a transaction so concurrent
// transitions cannot both succeed.
func (s *Store) Transition(ctx context.Context, scope tenant.Scope, id uuid.UUID, next Status) (*Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("transition order: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := fmt.Sprintf("SELECT %s FROM orders WHERE id = $1 AND tenant_id = $2 FOR UPDATE", orderColumns)
	o, err := scanOrder(tx.QueryRow(ctx, query, id, scope.TenantID()))
	if err != nil {
		return nil, err
	}

	if !o.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE orders SET status = $2, updated_at = now() WHERE id = $1",
		o.ID, string(next)); err != nil {
		return nil, fmt.Errorf("transition order: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	o.Status = next
	return o, nil
}

// UpdateNotes rewrites the free-text notes; allowed in any state.
func (s *Store) UpdateNotes(ctx context.Context, scope tenant.Scope, id uuid.UUID, notes string) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE orders SET notes = $3, updated_at = now() WHERE id = $1 AND tenant_id = $2",
		id, scope.TenantID(), notes)
	if err != nil {
		return fmt.Errorf("update order notes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}
