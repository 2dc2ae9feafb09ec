package tenant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/primecut/brokerage/pkg/pg"
)

// Store persists tenants, domain mappings, and memberships in Postgres.
// It implements Provider for the resolution middleware and adds the
// administrative operations used by handlers and bootstrap.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a tenant store over the shared pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var _ Storage = (*Store)(nil)

const tenantColumns = "id, slug, name, active, trial, contact_email, contact_phone, settings, created_by, created_at, updated_at"

func scanTenant(row pgx.Row) (*Tenant, error) {
	var t Tenant
	err := row.Scan(
		&t.ID, &t.Slug, &t.Name, &t.Active, &t.Trial,
		&t.ContactEmail, &t.ContactPhone, &t.Settings,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("scan tenant: %w", err)
	}
	return &t, nil
}

func (s *Store) FindTenantByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	query := fmt.Sprintf("SELECT %s FROM tenants WHERE id = $1", tenantColumns)
	return scanTenant(s.pool.QueryRow(ctx, query, id))
}

func (s *Store) FindTenantBySlug(ctx context.Context, slug string) (*Tenant, error) {
	query := fmt.Sprintf("SELECT %s FROM tenants WHERE slug = $1", tenantColumns)
	return scanTenant(s.pool.QueryRow(ctx, query, slug))
}

// FindTenantByDomain resolves a request host through the domain map.
// Domains are stored lowercase; the lookup is case-insensitive.
func (s *Store) FindTenantByDomain(ctx context.Context, domain string) (*Tenant, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM tenants t
		JOIN tenant_domains d ON d.tenant_id = t.id
		WHERE d.domain = lower($1)`,
		prefixColumns("t", tenantColumns))
	return scanTenant(s.pool.QueryRow(ctx, query, domain))
}

func (s *Store) FindMembership(ctx context.Context, userID, tenantID uuid.UUID) (*Membership, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, tenant_id, role, active, joined_at
		FROM memberships
		WHERE user_id = $1 AND tenant_id = $2`,
		userID, tenantID)
	return scanMembership(row)
}

// ListActiveMemberships returns the user's active memberships ordered by
// descending role privilege, earliest joined first within a role. The
// role ordering lives in SQL as an explicit CASE so the database and the
// Role enum can never disagree silently: the CASE mirrors RoleOwner >
// RoleAdmin > RoleMember.
func (s *Store) ListActiveMemberships(ctx context.Context, userID uuid.UUID) ([]Membership, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, tenant_id, role, active, joined_at
		FROM memberships
		WHERE user_id = $1 AND active
		ORDER BY CASE role WHEN 'owner' THEN 3 WHEN 'admin' THEN 2 ELSE 1 END DESC, joined_at ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	var memberships []Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, *m)
	}
	return memberships, rows.Err()
}

func scanMembership(row pgx.Row) (*Membership, error) {
	var m Membership
	var role string
	err := row.Scan(&m.ID, &m.UserID, &m.TenantID, &role, &m.Active, &m.JoinedAt)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("scan membership: %w", err)
	}
	parsed, err := ParseRole(role)
	if err != nil {
		return nil, err
	}
	m.Role = parsed
	return &m, nil
}

// CreateTenant inserts a new tenant. The slug is immutable afterwards.
func (s *Store) CreateTenant(ctx context.Context, t *Tenant) error {
	now := time.Now().UTC()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Settings == nil {
		t.Settings = map[string]any{}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO tenants (id, slug, name, active, trial, contact_email, contact_phone, settings, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.Slug, t.Name, t.Active, t.Trial,
		t.ContactEmail, t.ContactPhone, t.Settings,
		t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return ErrSlugTaken
		}
		return fmt.Errorf("create tenant: %w", err)
	}
	return nil
}

// UpdateTenant updates the mutable tenant fields. Slug and active state
// are deliberately excluded; deactivation has its own operation.
func (s *Store) UpdateTenant(ctx context.Context, t *Tenant) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE tenants
		SET name = $2, trial = $3, contact_email = $4, contact_phone = $5, settings = $6, updated_at = now()
		WHERE id = $1`,
		t.ID, t.Name, t.Trial, t.ContactEmail, t.ContactPhone, t.Settings,
	)
	if err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTenantNotFound
	}
	return nil
}

// ActivateTenant reverses a soft delete. Bootstrap uses it to repair a
// system tenant that was deactivated by accident.
func (s *Store) ActivateTenant(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE tenants SET active = true, updated_at = now() WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("activate tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTenantNotFound
	}
	return nil
}

// DeactivateTenant soft-deletes a tenant. Rows are never physically
// removed while referencing data exists.
func (s *Store) DeactivateTenant(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE tenants SET active = false, updated_at = now() WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deactivate tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTenantNotFound
	}
	return nil
}

// UserTenant pairs a tenant with the user's role in it.
type UserTenant struct {
	Tenant Tenant `json:"tenant"`
	Role   Role   `json:"role"`
}

// ListTenantsForUser returns every active tenant the user actively
// belongs to, highest privilege first.
func (s *Store) ListTenantsForUser(ctx context.Context, userID uuid.UUID) ([]UserTenant, error) {
	query := fmt.Sprintf(`
		SELECT %s, m.role FROM tenants t
		JOIN memberships m ON m.tenant_id = t.id
		WHERE m.user_id = $1 AND m.active AND t.active
		ORDER BY CASE m.role WHEN 'owner' THEN 3 WHEN 'admin' THEN 2 ELSE 1 END DESC, m.joined_at ASC`,
		prefixColumns("t", tenantColumns))

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list tenants for user: %w", err)
	}
	defer rows.Close()

	var result []UserTenant
	for rows.Next() {
		var ut UserTenant
		var role string
		err := rows.Scan(
			&ut.Tenant.ID, &ut.Tenant.Slug, &ut.Tenant.Name, &ut.Tenant.Active, &ut.Tenant.Trial,
			&ut.Tenant.ContactEmail, &ut.Tenant.ContactPhone, &ut.Tenant.Settings,
			&ut.Tenant.CreatedBy, &ut.Tenant.CreatedAt, &ut.Tenant.UpdatedAt,
			&role,
		)
		if err != nil {
			return nil, fmt.Errorf("scan user tenant: %w", err)
		}
		if ut.Role, err = ParseRole(role); err != nil {
			return nil, err
		}
		result = append(result, ut)
	}
	return result, rows.Err()
}

// ListDomains returns a tenant's domain mappings, primary first.
func (s *Store) ListDomains(ctx context.Context, tenantID uuid.UUID) ([]Domain, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, tenant_id, domain, is_primary, created_at, updated_at
		FROM tenant_domains
		WHERE tenant_id = $1
		ORDER BY is_primary DESC, domain ASC`,
		tenantID)
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	defer rows.Close()

	var domains []Domain
	for rows.Next() {
		var d Domain
		if err := rows.Scan(&d.ID, &d.TenantID, &d.Domain, &d.Primary, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan domain: %w", err)
		}
		domains = append(domains, d)
	}
	return domains, rows.Err()
}

// AddDomain provisions a domain mapping. Marking it primary demotes any
// existing primary within the same transaction, preserving the at-most-
// one-primary invariant.
func (s *Store) AddDomain(ctx context.Context, d *Domain) error {
	now := time.Now().UTC()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.Domain = strings.ToLower(d.Domain)
	d.CreatedAt = now
	d.UpdatedAt = now

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("add domain: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if d.Primary {
		if _, err := tx.Exec(ctx,
			"UPDATE tenant_domains SET is_primary = false, updated_at = now() WHERE tenant_id = $1 AND is_primary",
			d.TenantID); err != nil {
			return fmt.Errorf("demote primary domain: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO tenant_domains (id, tenant_id, domain, is_primary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID, d.TenantID, d.Domain, d.Primary, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return ErrDomainTaken
		}
		return fmt.Errorf("add domain: %w", err)
	}

	return tx.Commit(ctx)
}

// RemoveDomain decommissions a domain mapping. The tenant filter keeps
// one tenant's admin from removing another tenant's domain.
func (s *Store) RemoveDomain(ctx context.Context, tenantID, domainID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM tenant_domains WHERE id = $1 AND tenant_id = $2",
		domainID, tenantID)
	if err != nil {
		return fmt.Errorf("remove domain: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDomainNotFound
	}
	return nil
}

// ListMembers returns a tenant's memberships, including deactivated ones,
// for the administration surface.
func (s *Store) ListMembers(ctx context.Context, tenantID uuid.UUID) ([]Membership, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, tenant_id, role, active, joined_at
		FROM memberships
		WHERE tenant_id = $1
		ORDER BY joined_at ASC`,
		tenantID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

// UpsertMembership creates or revives a (user, tenant) membership. Used
// by registration, invitations, and bootstrap; rerunning is always safe
// because the unique pair conflicts into an update.
func (s *Store) UpsertMembership(ctx context.Context, m *Membership) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO memberships (id, user_id, tenant_id, role, active, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, tenant_id)
		DO UPDATE SET role = EXCLUDED.role, active = EXCLUDED.active
		RETURNING id, joined_at`,
		m.ID, m.UserID, m.TenantID, m.Role.String(), m.Active, m.JoinedAt,
	)
	if err := row.Scan(&m.ID, &m.JoinedAt); err != nil {
		return fmt.Errorf("upsert membership: %w", err)
	}
	return nil
}

// UpdateMemberRole changes a member's role within a tenant.
func (s *Store) UpdateMemberRole(ctx context.Context, tenantID, userID uuid.UUID, role Role) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE memberships SET role = $3 WHERE tenant_id = $1 AND user_id = $2",
		tenantID, userID, role.String())
	if err != nil {
		return fmt.Errorf("update member role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

// DeactivateMembership removes a user from a tenant while preserving the
// row for audit history.
func (s *Store) DeactivateMembership(ctx context.Context, tenantID, userID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE memberships SET active = false WHERE tenant_id = $1 AND user_id = $2",
		tenantID, userID)
	if err != nil {
		return fmt.Errorf("deactivate membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

// prefixColumns qualifies a comma-separated column list with a table
// alias for join queries.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}
