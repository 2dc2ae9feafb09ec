package invite

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/primecut/brokerage/internal/auth"
	"github.com/primecut/brokerage/internal/tenant"
)

// Users looks up accounts by email.
type Users interface {
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
}

// Memberships reads and writes tenant memberships.
type Memberships interface {
	FindMembership(ctx context.Context, userID, tenantID uuid.UUID) (*tenant.Membership, error)
	UpsertMembership(ctx context.Context, m *tenant.Membership) error
}

// Invites persists the invitation rows. Implemented by Store.
type Invites interface {
	Upsert(ctx context.Context, inv *Invite) error
	FindByToken(ctx context.Context, token string) (*Invite, error)
	MarkAccepted(ctx context.Context, id uuid.UUID) error
}

// Config controls invitation behavior.
type Config struct {
	BaseURL string        `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
	TTL     time.Duration `env:"INVITE_TTL" envDefault:"168h"`
}

// Service runs the invitation flow: an existing account gets its
// membership immediately, an unknown address gets a pending invite and
// an email with the acceptance link.
type Service struct {
	cfg         Config
	users       Users
	memberships Memberships
	invites     Invites
	sender      EmailSender
	log         *slog.Logger
}

// NewService creates the invitation service.
func NewService(cfg Config, users Users, memberships Memberships, invites Invites, sender EmailSender, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{cfg: cfg, users: users, memberships: memberships, invites: invites, sender: sender, log: log}
}

// Result tells the caller what the invitation did. The HTTP layer
// responds identically either way so the endpoint does not reveal
// whether an address has an account.
type Result struct {
	MembershipGranted bool
	AlreadyMember     bool
	Invite            *Invite
}

// Invite brings email into t under role.
func (s *Service) Invite(ctx context.Context, t *tenant.Tenant, inviterID uuid.UUID, email string, role tenant.Role) (*Result, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return s.grantMembership(ctx, t, user, role)
	case errors.Is(err, auth.ErrUserNotFound):
		return s.createPending(ctx, t, inviterID, email, role)
	default:
		return nil, err
	}
}

func (s *Service) grantMembership(ctx context.Context, t *tenant.Tenant, user *auth.User, role tenant.Role) (*Result, error) {
	existing, err := s.memberships.FindMembership(ctx, user.ID, t.ID)
	if err == nil && existing.Active {
		// Re-inviting an active member is a no-op.
		return &Result{AlreadyMember: true}, nil
	}
	if err != nil && !errors.Is(err, tenant.ErrMembershipNotFound) {
		return nil, err
	}

	m := &tenant.Membership{UserID: user.ID, TenantID: t.ID, Role: role, Active: true}
	if err := s.memberships.UpsertMembership(ctx, m); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "membership granted by invitation",
		slog.String("tenant_id", t.ID.String()), slog.String("user_id", user.ID.String()))
	return &Result{MembershipGranted: true}, nil
}

func (s *Service) createPending(ctx context.Context, t *tenant.Tenant, inviterID uuid.UUID, email string, role tenant.Role) (*Result, error) {
	inv := &Invite{
		TenantID:  t.ID,
		Email:     email,
		Role:      role,
		Token:     newToken(),
		InvitedBy: inviterID,
		ExpiresAt: time.Now().UTC().Add(s.cfg.TTL),
	}
	if err := s.invites.Upsert(ctx, inv); err != nil {
		return nil, err
	}

	subject := fmt.Sprintf("You have been invited to %s", t.Name)
	body := fmt.Sprintf(
		"You have been invited to join %s as %s.\n\nCreate an account with this email address, then accept here:\n%s/api/invites/accept?token=%s\n\nThe invitation expires on %s.\n",
		t.Name, inv.Role, s.cfg.BaseURL, inv.Token, inv.ExpiresAt.Format("2006-01-02"),
	)
	if err := s.sender.Send(ctx, email, subject, body); err != nil {
		return nil, err
	}

	return &Result{Invite: inv}, nil
}

// Accept consumes a pending invite for the authenticated identity and
// activates the membership.
func (s *Service) Accept(ctx context.Context, identity auth.Identity, token string) (*tenant.Membership, error) {
	inv, err := s.invites.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv.Status != StatusPending {
		return nil, ErrInviteNotPending
	}
	if inv.Expired() {
		return nil, ErrInviteExpired
	}
	if !strings.EqualFold(inv.Email, identity.Email) {
		return nil, ErrEmailMismatch
	}

	m := &tenant.Membership{UserID: identity.UserID, TenantID: inv.TenantID, Role: inv.Role, Active: true}
	if err := s.memberships.UpsertMembership(ctx, m); err != nil {
		return nil, err
	}
	if err := s.invites.MarkAccepted(ctx, inv.ID); err != nil {
		return nil, err
	}
	return m, nil
}

func newToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
