package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/primecut/brokerage/internal/auth"
	"github.com/primecut/brokerage/internal/tenant"
)

// Config names the admin account the bootstrap guarantees to exist.
type Config struct {
	AdminEmail    string `env:"BOOTSTRAP_ADMIN_EMAIL,required"`
	AdminPassword string `env:"BOOTSTRAP_ADMIN_PASSWORD,required"`
	AdminName     string `env:"BOOTSTRAP_ADMIN_NAME" envDefault:"Administrator"`
}

// UserStore is the slice of auth.Store bootstrap needs.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
	Create(ctx context.Context, u *auth.User) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	EnsureSuperuser(ctx context.Context, userID uuid.UUID) error
}

// TenantStore is the slice of tenant.Store bootstrap needs.
type TenantStore interface {
	FindTenantBySlug(ctx context.Context, slug string) (*tenant.Tenant, error)
	CreateTenant(ctx context.Context, t *tenant.Tenant) error
	ActivateTenant(ctx context.Context, id uuid.UUID) error
	UpsertMembership(ctx context.Context, m *tenant.Membership) error
}

const (
	rootSlug  = "root"
	guestSlug = "guest"
)

// Service provisions the fixed state every installation needs: the root
// tenant, the superuser with an owner membership, and the guest demo
// tenant. Every step is create-if-absent or update-in-place, so reruns
// are safe and repair partial state.
type Service struct {
	cfg     Config
	users   UserStore
	tenants TenantStore
	log     *slog.Logger
}

// NewService creates the bootstrap service.
func NewService(cfg Config, users UserStore, tenants TenantStore, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{cfg: cfg, users: users, tenants: tenants, log: log}
}

// Run executes all bootstrap steps in order.
func (s *Service) Run(ctx context.Context) error {
	root, err := s.ensureTenant(ctx, rootSlug, "Root", false)
	if err != nil {
		return fmt.Errorf("ensure root tenant: %w", err)
	}

	admin, err := s.ensureSuperuser(ctx)
	if err != nil {
		return fmt.Errorf("ensure superuser: %w", err)
	}

	m := &tenant.Membership{UserID: admin.ID, TenantID: root.ID, Role: tenant.RoleOwner, Active: true}
	if err := s.tenants.UpsertMembership(ctx, m); err != nil {
		return fmt.Errorf("ensure owner membership: %w", err)
	}

	// The guest tenant has no user attached; it exists for demos and
	// header-path exploration by superusers.
	if _, err := s.ensureTenant(ctx, guestSlug, "Guest", true); err != nil {
		return fmt.Errorf("ensure guest tenant: %w", err)
	}

	s.log.InfoContext(ctx, "bootstrap complete",
		slog.String("root_tenant", root.ID.String()),
		slog.String("admin", admin.Email))
	return nil
}

func (s *Service) ensureTenant(ctx context.Context, slug, name string, trial bool) (*tenant.Tenant, error) {
	existing, err := s.tenants.FindTenantBySlug(ctx, slug)
	switch {
	case err == nil:
		if !existing.Active {
			if err := s.tenants.ActivateTenant(ctx, existing.ID); err != nil {
				return nil, err
			}
			existing.Active = true
			s.log.InfoContext(ctx, "reactivated system tenant", slog.String("slug", slug))
		}
		return existing, nil
	case errors.Is(err, tenant.ErrTenantNotFound):
		t := &tenant.Tenant{Slug: slug, Name: name, Active: true, Trial: trial}
		if err := s.tenants.CreateTenant(ctx, t); err != nil {
			return nil, err
		}
		s.log.InfoContext(ctx, "created system tenant", slog.String("slug", slug))
		return t, nil
	default:
		return nil, err
	}
}

// ensureSuperuser creates the admin account or repairs it. The password
// is re-hashed from the environment on every run so rotating the env var
// rotates the credential.
func (s *Service) ensureSuperuser(ctx context.Context) (*auth.User, error) {
	hash, err := auth.HashPassword(s.cfg.AdminPassword)
	if err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmail(ctx, s.cfg.AdminEmail)
	switch {
	case err == nil:
		if err := s.users.UpdatePassword(ctx, existing.ID, hash); err != nil {
			return nil, err
		}
		if err := s.users.EnsureSuperuser(ctx, existing.ID); err != nil {
			return nil, err
		}
		existing.IsSuperuser = true
		existing.Active = true
		return existing, nil
	case errors.Is(err, auth.ErrUserNotFound):
		u := &auth.User{
			Email:        s.cfg.AdminEmail,
			Name:         s.cfg.AdminName,
			PasswordHash: hash,
			IsSuperuser:  true,
			Active:       true,
		}
		if err := s.users.Create(ctx, u); err != nil {
			return nil, err
		}
		s.log.InfoContext(ctx, "created superuser", slog.String("email", u.Email))
		return u, nil
	default:
		return nil, err
	}
}
