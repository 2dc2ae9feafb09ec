package invite

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

// Store persists invites in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates an invite store over the shared pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const inviteColumns = "id, tenant_id, email, role, token, status, invited_by, expires_at, created_at, accepted_at"

func scanInvite(row pgx.Row) (*Invite, error) {
	var inv Invite
	var role, status string
	err := row.Scan(
		&inv.ID, &inv.TenantID, &inv.Email, &role, &inv.Token,
		&status, &inv.InvitedBy, &inv.ExpiresAt, &inv.CreatedAt, &inv.AcceptedAt,
	)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("scan invite: %w", err)
	}
	parsed, err := tenant.ParseRole(role)
	if err != nil {
		return nil, err
	}
	inv.Role = parsed
	inv.Status = Status(status)
	return &inv, nil
}

// Upsert creates a pending invite or refreshes the existing pending one
// for the same (tenant, email), rotating the token and the expiry. Only
// one pending invite per address and tenant can exist.
func (s *Store) Upsert(ctx context.Context, inv *Invite) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	inv.Status = StatusPending
	inv.CreatedAt = time.Now().UTC()

	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO invites (%s)
		VALUES ($1, $2, lower($3), $4, $5, $6, $7, $8, $9, NULL)
		ON CONFLICT (tenant_id, email) WHERE status = 'pending'
		DO UPDATE SET role = EXCLUDED.role, token = EXCLUDED.token,
			invited_by = EXCLUDED.invited_by, expires_at = EXCLUDED.expires_at
		RETURNING id, created_at`, inviteColumns),
		inv.ID, inv.TenantID, inv.Email, inv.Role.String(), inv.Token,
		string(inv.Status), inv.InvitedBy, inv.ExpiresAt, inv.CreatedAt,
	)
	if err := row.Scan(&inv.ID, &inv.CreatedAt); err != nil {
		return fmt.Errorf("upsert invite: %w", err)
	}
	return nil
}

// FindByToken returns the invite carrying the token, any status.
func (s *Store) FindByToken(ctx context.Context, token string) (*Invite, error) {
	query := fmt.Sprintf("SELECT %s FROM invites WHERE token = $1", inviteColumns)
	return scanInvite(s.pool.QueryRow(ctx, query, token))
}

// ListByTenant returns a tenant's invites, newest first.
func (s *Store) ListByTenant(ctx context.Context, scope tenant.Scope) ([]Invite, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM invites
		WHERE tenant_id = $1
		ORDER BY created_at DESC`, inviteColumns)

	rows, err := s.pool.Query(ctx, query, scope.TenantID())
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	defer rows.Close()

	var invites []Invite
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, *inv)
	}
	return invites, rows.Err()
}

// MarkAccepted consumes a pending invite.
func (s *Store) MarkAccepted(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE invites SET status = $2, accepted_at = now() WHERE id = $1 AND status = $3",
		id, string(StatusAccepted), string(StatusPending))
	if err != nil {
		return fmt.Errorf("mark invite accepted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInviteNotPending
	}
	return nil
}

// Revoke withdraws a pending invite within the scope.
func (s *Store) Revoke(ctx context.Context, scope tenant.Scope, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE invites SET status = $3 WHERE id = $1 AND tenant_id = $2 AND status = $4",
		id, scope.TenantID(), string(StatusRevoked), string(StatusPending))
	if err != nil {
		return fmt.Errorf("revoke invite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInviteNotFound
	}
	return nil
}
