package tenant

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/primecut/brokerage/internal/auth"
)

// Provider loads tenant and membership state during resolution.
// Implemented by Store; mocked in tests.
type Provider interface {
	FindTenantByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	FindTenantBySlug(ctx context.Context, slug string) (*Tenant, error)
	FindTenantByDomain(ctx context.Context, domain string) (*Tenant, error)
	FindMembership(ctx context.Context, userID, tenantID uuid.UUID) (*Membership, error)
	// ListActiveMemberships returns the user's active memberships ordered
	// by descending role privilege, ties broken by earliest join.
	ListActiveMemberships(ctx context.Context, userID uuid.UUID) ([]Membership, error)
}

// ErrorHandler renders resolution failures to the client.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// MetricsRecorder observes resolution outcomes. Implemented by the
// metrics package; a nil recorder disables observation.
type MetricsRecorder interface {
	ResolutionOutcome(source string)
	CacheHit()
	CacheMiss()
}

type config struct {
	headerName   string
	skipPaths    []string
	baseDomain   string
	cache        Cache
	cacheTTL     time.Duration
	errorHandler ErrorHandler
	logger       *slog.Logger
	metrics      MetricsRecorder
}

// Option configures the middleware.
type Option func(*config)

// WithHeaderName overrides the explicit tenant header (default X-Tenant-ID).
func WithHeaderName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.headerName = name
		}
	}
}

// WithSkipPaths sets path prefixes that bypass resolution entirely.
// Health probes must stay on this list: they are required to succeed on a
// freshly migrated database with zero tenant rows.
func WithSkipPaths(paths []string) Option {
	return func(c *config) { c.skipPaths = paths }
}

// WithBaseDomain sets the served base domain (e.g. "example.com") so the
// subdomain step can strip it before treating the first label as a slug.
func WithBaseDomain(domain string) Option {
	return func(c *config) { c.baseDomain = strings.TrimPrefix(domain, ".") }
}

// WithCache replaces the default in-memory cache.
func WithCache(cache Cache) Option {
	return func(c *config) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// WithCacheTTL sets the TTL for domain/slug lookups.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *config) { c.cacheTTL = ttl }
}

// WithErrorHandler replaces the default error renderer.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(c *config) {
		if handler != nil {
			c.errorHandler = handler
		}
	}
}

// WithLogger sets the middleware logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.logger = log
		}
	}
}

// WithMetrics sets the resolution metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(c *config) { c.metrics = m }
}

// Middleware resolves the acting tenant for every request, strictly in
// priority order, and attaches the outcome to the context:
//
//  1. explicit tenant header (requires an active membership, or superuser)
//  2. exact domain mapping for the request host
//  3. first host label matched against tenant slugs
//  4. the authenticated user's highest-privilege active membership
//  5. no tenant: the request proceeds and downstream code decides
//
// No branch ever falls back to a default tenant. Steps 2 and 3 are
// cacheable; steps 1 and 4 always hit the store so membership revocation
// takes effect immediately.
func Middleware(provider Provider, opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{
		headerName:   "X-Tenant-ID",
		cache:        NewMemoryCache(),
		cacheTTL:     5 * time.Minute,
		errorHandler: defaultErrorHandler,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	r := &resolver{cfg: cfg, provider: provider}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(req.URL.Path, skip) {
					next.ServeHTTP(w, req)
					return
				}
			}

			outcome, err := r.resolve(req)
			if err != nil {
				cfg.logger.DebugContext(req.Context(), "tenant resolution failed",
					slog.String("host", req.Host), slog.Any("error", err))
				cfg.errorHandler(w, req, err)
				return
			}

			ctx := req.Context()
			if outcome.tenant != nil {
				ctx = WithTenant(ctx, outcome.tenant)
				if outcome.membership != nil {
					ctx = WithMembership(ctx, outcome.membership)
				}
			}
			if cfg.metrics != nil {
				cfg.metrics.ResolutionOutcome(outcome.source)
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

type outcome struct {
	tenant     *Tenant
	membership *Membership
	source     string
}

type resolver struct {
	cfg      *config
	provider Provider
}

func (r *resolver) resolve(req *http.Request) (outcome, error) {
	ctx := req.Context()

	// Step 1: explicit header. Presence of the header makes every failure
	// an error; it is never silently ignored.
	if identifier := strings.TrimSpace(req.Header.Get(r.cfg.headerName)); identifier != "" {
		return r.resolveHeader(ctx, identifier)
	}

	host := stripPort(req.Host)

	// Step 2: exact domain mapping.
	if t, err := r.lookupCached(ctx, "domain:"+host, func(ctx context.Context) (*Tenant, error) {
		return r.provider.FindTenantByDomain(ctx, host)
	}); err != nil {
		return outcome{}, err
	} else if t != nil && t.Active {
		return outcome{tenant: t, source: "domain"}, nil
	}

	// Step 3: first host label as slug. An inactive tenant falls through,
	// it never resolves.
	if slug := subdomainLabel(host, r.cfg.baseDomain); slug != "" && ValidSlug(slug) {
		if t, err := r.lookupCached(ctx, "slug:"+slug, func(ctx context.Context) (*Tenant, error) {
			return r.provider.FindTenantBySlug(ctx, slug)
		}); err != nil {
			return outcome{}, err
		} else if t != nil && t.Active {
			return outcome{tenant: t, source: "subdomain"}, nil
		}
	}

	// Step 4: the user's best active membership.
	if identity, ok := auth.IdentityFromContext(ctx); ok {
		memberships, err := r.provider.ListActiveMemberships(ctx, identity.UserID)
		if err != nil {
			return outcome{}, err
		}
		for i := range memberships {
			t, err := r.provider.FindTenantByID(ctx, memberships[i].TenantID)
			if err != nil {
				if errors.Is(err, ErrTenantNotFound) {
					continue
				}
				return outcome{}, err
			}
			if t.Active {
				return outcome{tenant: t, membership: &memberships[i], source: "membership"}, nil
			}
		}
	}

	// Step 5: no tenant. Not an error; downstream handlers own the decision.
	return outcome{source: "none"}, nil
}

func (r *resolver) resolveHeader(ctx context.Context, identifier string) (outcome, error) {
	t, err := r.findByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			// Unknown tenant reads the same as missing membership so the
			// header path never reveals tenant existence.
			return outcome{}, ErrMembershipRequired
		}
		return outcome{}, err
	}

	if !t.Active {
		return outcome{}, ErrInactiveTenant
	}

	identity, authenticated := auth.IdentityFromContext(ctx)
	if !authenticated {
		return outcome{}, ErrMembershipRequired
	}

	membership, err := r.provider.FindMembership(ctx, identity.UserID, t.ID)
	switch {
	case err == nil && membership.Active:
		return outcome{tenant: t, membership: membership, source: "header"}, nil
	case err != nil && !errors.Is(err, ErrMembershipNotFound):
		return outcome{}, err
	case identity.Superuser:
		// Global admins may act on any tenant without a membership row.
		return outcome{tenant: t, source: "header"}, nil
	default:
		return outcome{}, ErrMembershipRequired
	}
}

func (r *resolver) findByIdentifier(ctx context.Context, identifier string) (*Tenant, error) {
	if id, err := uuid.Parse(identifier); err == nil {
		return r.provider.FindTenantByID(ctx, id)
	}
	if !ValidSlug(identifier) {
		return nil, ErrInvalidIdentifier
	}
	return r.provider.FindTenantBySlug(ctx, identifier)
}

// lookupCached consults the cache before the store. Only "not found" is
// translated into a nil tenant; other store errors propagate as server
// failures with no retry.
func (r *resolver) lookupCached(ctx context.Context, key string, load func(context.Context) (*Tenant, error)) (*Tenant, error) {
	if t, ok := r.cfg.cache.Get(ctx, key); ok {
		if r.cfg.metrics != nil {
			r.cfg.metrics.CacheHit()
		}
		return t, nil
	}
	if r.cfg.metrics != nil {
		r.cfg.metrics.CacheMiss()
	}

	t, err := load(ctx)
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) || errors.Is(err, ErrDomainNotFound) {
			return nil, nil
		}
		return nil, err
	}

	r.cfg.cache.Set(ctx, key, t, r.cfg.cacheTTL)
	return t, nil
}

func stripPort(host string) string {
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		return host[:idx]
	}
	return host
}

// subdomainLabel extracts the first host label, skipping a leading www.
// A bare domain (fewer than three labels without a configured base
// domain) yields no label.
func subdomainLabel(host, baseDomain string) string {
	if baseDomain != "" {
		suffix := "." + baseDomain
		if !strings.HasSuffix(host, suffix) || len(host) <= len(suffix) {
			return ""
		}
		host = strings.TrimSuffix(host, suffix)
	} else if strings.Count(host, ".") < 2 {
		return ""
	}

	parts := strings.Split(host, ".")
	label := parts[0]
	if label == "www" {
		if len(parts) < 2 {
			return ""
		}
		label = parts[1]
	}
	return label
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrMembershipRequired), errors.Is(err, ErrInactiveTenant):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrInvalidIdentifier):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNoTenantInContext):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// RequireTenant rejects requests that resolved no tenant. For routes that
// cannot function tenant-less.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
