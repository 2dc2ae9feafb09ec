package claims

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

// Store persists claims under the scoped-query convention.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a claims store over the shared pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var _ Storage = (*Store)(nil)

const claimColumns = "id, tenant_id, order_id, reference, reason, quantity_kg, amount_cents, status, resolution_notes, created_at, updated_at"

func scanClaim(row pgx.Row) (*Claim, error) {
	var c Claim
	var status string
	err := row.Scan(
		&c.ID, &c.TenantID, &c.OrderID, &c.Reference, &c.Reason,
		&c.QuantityKG, &c.AmountCents, &status, &c.ResolutionNotes,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, ErrClaimNotFound
		}
		return nil, fmt.Errorf("scan claim: %w", err)
	}
	c.Status = Status(status)
	return &c, nil
}

// List returns the scope's claims, newest first.
func (s *Store) List(ctx context.Context, scope tenant.Scope) ([]Claim, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM claims
		WHERE tenant_id = $1
		ORDER BY created_at DESC`, claimColumns)

	rows, err := s.pool.Query(ctx, query, scope.TenantID())
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()

	var list []Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *c)
	}
	return list, rows.Err()
}

// Get returns one claim within the scope.
func (s *Store) Get(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*Claim, error) {
	query := fmt.Sprintf("SELECT %s FROM claims WHERE id = $1 AND tenant_id = $2", claimColumns)
	return scanClaim(s.pool.QueryRow(ctx, query, id, scope.TenantID()))
}

// Create raises a claim against an order of the same scope.
func (s *Store) Create(ctx context.Context, scope tenant.Scope, c *Claim) error {
	now := time.Now().UTC()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.TenantID = scope.TenantID()
	c.Status = StatusOpen
	c.CreatedAt = now
	c.UpdatedAt = now

	tag, err := s.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO claims (%s)
		SELECT $1, $2, o.id, $4, $5, $6, $7, $8, $9, $10, $11
		FROM orders o WHERE o.id = $3 AND o.tenant_id = $2`, claimColumns),
		c.ID, c.TenantID, c.OrderID, c.Reference, c.Reason,
		c.QuantityKG, c.AmountCents, string(c.Status), c.ResolutionNotes,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return ErrReferenceTaken
		}
		return fmt.Errorf("create claim: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrClaimNotFound
	}
	return nil
}

// Resolve moves the claim to the next status and records the resolution
// notes alongside the decision.
func (s *Store) Resolve(ctx context.Context, scope tenant.Scope, id uuid.UUID, next Status, notes string) (*Claim, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve claim: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := fmt.Sprintf("SELECT %s FROM claims WHERE id = $1 AND tenant_id = $2 FOR UPDATE", claimColumns)
	c, err := scanClaim(tx.QueryRow(ctx, query, id, scope.TenantID()))
	if err != nil {
		return nil, err
	}

	if !c.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, next)
	}

	if notes == "" {
		notes = c.ResolutionNotes
	}
	if _, err := tx.Exec(ctx,
		"UPDATE claims SET status = $2, resolution_notes = $3, updated_at = now() WHERE id = $1",
		c.ID, string(next), notes); err != nil {
		return nil, fmt.Errorf("resolve claim: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	c.Status = next
	c.ResolutionNotes = notes
	return c, nil
}
