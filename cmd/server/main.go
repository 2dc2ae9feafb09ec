package main

import (
	"context"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/primecut/brokerage/internal/api"
	"github.com/primecut/brokerage/internal/auth"
	"github.com/primecut/brokerage/internal/billing"
	"github.com/primecut/brokerage/internal/claims"
	"github.com/primecut/brokerage/internal/directory"
	"github.com/primecut/brokerage/internal/invite"
	"github.com/primecut/brokerage/internal/metrics"
	"github.com/primecut/brokerage/internal/orders"
	"github.com/primecut/brokerage/internal/tenant"
	"github.com/primecut/brokerage/pkg/config"
	"github.com/primecut/brokerage/pkg/httpserver"
	"github.com/primecut/brokerage/pkg/logger"
	"github.com/primecut/brokerage/pkg/pg"
	"github.com/primecut/brokerage/pkg/redis"
	"github.com/primecut/brokerage/pkg/requestid"
)

type appConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	BaseDomain  string `env:"TENANT_BASE_DOMAIN"`
}

func main() {
	ctx := context.Background()

	var (
		appCfg    appConfig
		pgCfg     pg.Config
		redisCfg  redis.Config
		httpCfg   httpserver.Config
		authCfg   auth.Config
		emailCfg  invite.EmailConfig
		inviteCfg invite.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&httpCfg)
	config.MustLoad(&authCfg)
	config.MustLoad(&emailCfg)
	config.MustLoad(&inviteCfg)

	log := logger.New(
		logger.WithService("brokerage-api", appCfg.Environment),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			tenant.LoggerExtractor(),
		),
	)
	logger.SetAsDefault(log)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		log.ErrorContext(ctx, "postgres connection failed", logger.Error(err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		log.ErrorContext(ctx, "migrations failed", logger.Error(err))
		os.Exit(1)
	}

	// Redis is optional: without it the tenant cache stays in-process.
	tenantCache := tenant.NewMemoryCache()
	healthchecks := []func(context.Context) error{pg.Healthcheck(pool)}
	if redisCfg.ConnectionURL != "" {
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			log.ErrorContext(ctx, "redis connection failed", logger.Error(err))
			os.Exit(1)
		}
		defer client.Close()
		tenantCache = tenant.NewRedisCache(client)
		healthchecks = append(healthchecks, redis.Healthcheck(client))
	}

	userStore := auth.NewStore(pool)
	tenantStore := tenant.NewStore(pool)
	inviteStore := invite.NewStore(pool)

	authSvc, err := auth.NewService(authCfg, userStore)
	if err != nil {
		log.ErrorContext(ctx, "auth service init failed", logger.Error(err))
		os.Exit(1)
	}
	inviteSvc := invite.NewService(inviteCfg, userStore, tenantStore, inviteStore,
		invite.NewSender(emailCfg), log.With(logger.Component("invite")))

	m := metrics.New()

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(m.Middleware)
	r.Use(auth.Middleware(authSvc))
	r.Use(tenant.Middleware(tenantStore,
		tenant.WithSkipPaths([]string{"/health", "/metrics", "/api/auth"}),
		tenant.WithBaseDomain(appCfg.BaseDomain),
		tenant.WithCache(tenantCache),
		tenant.WithLogger(log.With(logger.Component("tenant"))),
		tenant.WithMetrics(m),
	))

	r.Get("/health", httpserver.HealthCheckHandler(log, healthchecks...))
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Mount("/auth", auth.NewHandler(authSvc).Router())
		r.Get("/me", meHandler(tenantStore))

		tenant.NewHandler(tenantStore, tenantCache).Register(r)
		invite.NewHandler(inviteSvc, inviteStore).Register(r)
		directory.NewHandler(directory.NewCustomerStore(pool), directory.NewSupplierStore(pool)).Register(r)
		orders.NewHandler(orders.NewStore(pool)).Register(r)
		billing.NewHandler(billing.NewStore(pool)).Register(r)
		claims.NewHandler(claims.NewStore(pool)).Register(r)
	})

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log.With(logger.Component("httpserver"))))
	if err := srv.Run(ctx, r); err != nil {
		log.ErrorContext(ctx, "server stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

// meHandler echoes the authenticated identity together with the
// tenants it belongs to.
func meHandler(tenants *tenant.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			api.Error(w, api.ErrUnauthorized)
			return
		}

		memberships, err := tenants.ListTenantsForUser(r.Context(), identity.UserID)
		if err != nil {
			api.Error(w, err)
			return
		}
		if memberships == nil {
			memberships = []tenant.UserTenant{}
		}

		body := map[string]any{
			"user_id":   identity.UserID,
			"email":     identity.Email,
			"superuser": identity.Superuser,
			"tenants":   memberships,
		}
		if t, ok := tenant.FromContext(r.Context()); ok {
			body["current_tenant"] = t.ID
		}
		api.JSON(w, http.StatusOK, body)
	}
}
