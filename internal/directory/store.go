package directory

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

// PartyStore persists one side of the directory. All operations take a
// tenant.Scope and filter on it, so rows of other tenants are unreachable
// through this type.
type PartyStore struct {
	pool  *pgxpool.Pool
	table string
}

// NewCustomerStore creates the customer-side store.
func NewCustomerStore(pool *pgxpool.Pool) *PartyStore {
	return &PartyStore{pool: pool, table: "customers"}
}

// NewSupplierStore creates the supplier-side store.
func NewSupplierStore(pool *pgxpool.Pool) *PartyStore {
	return &PartyStore{pool: pool, table: "suppliers"}
}

var _ PartyStorage = (*PartyStore)(nil)

const partyColumns = "id, tenant_id, code, name, contact_name, contact_email, contact_phone, payment_terms_days, active, created_at, updated_at"

func scanParty(row pgx.Row) (*Party, error) {
	var p Party
	err := row.Scan(
		&p.ID, &p.TenantID, &p.Code, &p.Name,
		&p.ContactName, &p.ContactEmail, &p.ContactPhone,
		&p.PaymentTermsDays, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, ErrPartyNotFound
		}
		return nil, fmt.Errorf("scan party: %w", err)
	}
	return &p, nil
}

// List returns the scope's parties ordered by code.
func (s *PartyStore) List(ctx context.Context, scope tenant.Scope) ([]Party, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE tenant_id = $1 ORDER BY code ASC", partyColumns, s.table)
	rows, err := s.pool.Query(ctx, query, scope.TenantID())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.table, err)
	}
	defer rows.Close()

	var parties []Party
	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, err
		}
		parties = append(parties, *p)
	}
	return parties, rows.Err()
}

// Get returns one party within the scope.
func (s *PartyStore) Get(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*Party, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1 AND tenant_id = $2", partyColumns, s.table)
	return scanParty(s.pool.QueryRow(ctx, query, id, scope.TenantID()))
}

// Create inserts a party, stamping the scope's tenant. Any tenant id
// already on p is overwritten.
func (s *PartyStore) Create(ctx context.Context, scope tenant.Scope, p *Party) error {
	now := time.Now().UTC()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.TenantID = scope.TenantID()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := fmt.Sprintf(`
		INSERT INTO %s (id, tenant_id, code, name, contact_name, contact_email, contact_phone, payment_terms_days, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, s.table)
	_, err := s.pool.Exec(ctx, query,
		p.ID, p.TenantID, p.Code, p.Name,
		p.ContactName, p.ContactEmail, p.ContactPhone,
		p.PaymentTermsDays, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return ErrCodeTaken
		}
		return fmt.Errorf("create %s: %w", s.table, err)
	}
	return nil
}

// Update rewrites the mutable fields. The tenant predicate makes a
// cross-tenant id read as not found.
func (s *PartyStore) Update(ctx context.Context, scope tenant.Scope, p *Party) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $3, contact_name = $4, contact_email = $5, contact_phone = $6, payment_terms_days = $7, active = $8, updated_at = now()
		WHERE id = $1 AND tenant_id = $2`, s.table)
	tag, err := s.pool.Exec(ctx, query,
		p.ID, scope.TenantID(),
		p.Name, p.ContactName, p.ContactEmail, p.ContactPhone,
		p.PaymentTermsDays, p.Active,
	)
	if err != nil {
		return fmt.Errorf("update %s: %w", s.table, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPartyNotFound
	}
	return nil
}

// Deactivate soft-deletes a party. Orders keep referencing it.
func (s *PartyStore) Deactivate(ctx context.Context, scope tenant.Scope, id uuid.UUID) error {
	query := fmt.Sprintf("UPDATE %s SET active = false, updated_at = now() WHERE id = $1 AND tenant_id = $2", s.table)
	tag, err := s.pool.Exec(ctx, query, id, scope.TenantID())
	if err != nil {
		return fmt.Errorf("deactivate %s: %w", s.table, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPartyNotFound
	}
	return nil
}
