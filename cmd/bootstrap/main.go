package main

import (
	"context"
	"os"

	"github.com/primecut/brokerage/internal/auth"
	"github.com/primecut/brokerage/internal/bootstrap"
	"github.com/primecut/brokerage/internal/tenant"
	"github.com/primecut/brokerage/pkg/config"
	"github.com/primecut/brokerage/pkg/logger"
	"github.com/primecut/brokerage/pkg/pg"
)

type appConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
}

// Provisions the installation's fixed state. Safe to run on every
// deployment; reruns repair instead of duplicating.
func main() {
	ctx := context.Background()

	var (
		appCfg appConfig
		pgCfg  pg.Config
		bsCfg  bootstrap.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&bsCfg)

	log := logger.New(logger.WithService("brokerage-bootstrap", appCfg.Environment))

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

	svc := bootstrap.NewService(bsCfg, auth.NewStore(pool), tenant.NewStore(pool), log)
	if err := svc.Run(ctx); err != nil {
		log.ErrorContext(ctx, "bootstrap failed", logger.Error(err))
		os.Exit(1)
	}
}
