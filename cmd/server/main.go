// The server binary wires the whole service together: configuration from
// the environment, structured logging with request and tenant correlation,
// Postgres with migrations applied at startup, and the HTTP API behind
// graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/saasbase/saasbase/internal/auth"
	"github.com/saasbase/saasbase/internal/server"
	"github.com/saasbase/saasbase/internal/user"
	"github.com/saasbase/saasbase/pkg/config"
	"github.com/saasbase/saasbase/pkg/httpserver"
	"github.com/saasbase/saasbase/pkg/jwt"
	"github.com/saasbase/saasbase/pkg/logger"
	"github.com/saasbase/saasbase/pkg/pg"
	"github.com/saasbase/saasbase/pkg/requestid"
	"github.com/saasbase/saasbase/pkg/tenant"
)

type appConfig struct {
	Log    logger.Config
	HTTP   httpserver.Config
	DB     pg.Config
	JWT    jwt.Config
	Router server.Config
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(
		logger.WithConfig(cfg.Log),
		logger.WithAttr(slog.String("service", "saasbase")),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			tenant.LoggerExtractor(),
		),
	)
	slog.SetDefault(log)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	pool, err := pg.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.DB, log); err != nil {
		return err
	}

	tokens, err := jwt.New(cfg.JWT)
	if err != nil {
		return err
	}

	repo := user.NewPgRepository(pool)
	authSvc := auth.NewService(repo, tokens, log)

	router := server.New(cfg.Router, server.Deps{
		Log:          log,
		Tokens:       tokens,
		AuthHandler:  auth.NewHandler(authSvc, log),
		UserHandler:  user.NewHandler(repo, log),
		Binder:       pg.NewTenantBinder(pool, cfg.DB.TenantSetting, log),
		Metrics:      server.NewMetrics(),
		HealthProbes: []func(context.Context) error{pg.Healthcheck(pool)},
	})

	return httpserver.New(cfg.HTTP, log).Run(ctx, router)
}
