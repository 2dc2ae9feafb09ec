package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/primecut/brokerage/pkg/pg"
)

// Store persists users in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a user store over the shared pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const userColumns = "id, email, name, password_hash, is_superuser, active, created_at, updated_at"

func (s *Store) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE lower(email) = lower($1)", userColumns)

	var u User
	err := s.pool.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash,
		&u.IsSuperuser, &u.Active, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &u, nil
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)

	var u User
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash,
		&u.IsSuperuser, &u.Active, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &u, nil
}

func (s *Store) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (id, email, name, password_hash, is_superuser, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	now := time.Now().UTC()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := s.pool.Exec(ctx, query,
		u.ID, u.Email, u.Name, u.PasswordHash,
		u.IsSuperuser, u.Active, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// EnsureSuperuser forces the superuser and active flags on. Used by
// bootstrap to repair a demoted or deactivated admin account.
func (s *Store) EnsureSuperuser(ctx context.Context, userID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE users SET is_superuser = true, active = true, updated_at = now() WHERE id = $1",
		userID,
	)
	if err != nil {
		return fmt.Errorf("ensure superuser: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *Store) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1",
		userID, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
