package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/primecut/brokerage/pkg/jwt"
)

// Config holds auth settings.
type Config struct {
	SigningKey string        `env:"AUTH_SIGNING_KEY,required"`       // SigningKey signs access tokens; at least 32 bytes.
	TokenTTL   time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"12h"` // TokenTTL bounds access token lifetime.
	Issuer     string        `env:"AUTH_ISSUER" envDefault:"brokerage"`
}

// Storage is the user persistence the service depends on.
type Storage interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// Service authenticates users and issues access tokens.
type Service struct {
	cfg     Config
	storage Storage
	tokens  *jwt.Service
}

// NewService creates the auth service.
func NewService(cfg Config, storage Storage) (*Service, error) {
	tokens, err := jwt.NewFromString(cfg.SigningKey)
	if err != nil {
		return nil, err
	}
	return &Service{cfg: cfg, storage: storage, tokens: tokens}, nil
}

// Claims are the token claims carried by access tokens.
type Claims struct {
	jwt.StandardClaims
	Email     string `json:"email"`
	Superuser bool   `json:"superuser,omitempty"`
}

// Login verifies the email/password pair and returns a signed token.
// All failure modes collapse into ErrInvalidCredentials except an
// explicitly deactivated account.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.storage.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("login: %w", err)
	}

	if !user.Active {
		return "", ErrUserInactive
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	token, err := s.tokens.Generate(Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   user.ID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.cfg.TokenTTL).Unix(),
		},
		Email:     user.Email,
		Superuser: user.IsSuperuser,
	})
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	return token, nil
}

// ParseToken validates a token and returns its claims.
func (s *Service) ParseToken(token string) (Claims, error) {
	var claims Claims
	if err := s.tokens.Parse(token, &claims); err != nil {
		return Claims{}, err
	}
	return claims, nil
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored hash.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
