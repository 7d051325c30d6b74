package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"

	"termtidy-web/internal/auth"
	"termtidy-web/internal/config"
	"termtidy-web/internal/controller"
	"termtidy-web/internal/db"
	httpserver "termtidy-web/internal/http"
	"termtidy-web/internal/logging"
	"termtidy-web/internal/repository"
	"termtidy-web/internal/routes"
	"termtidy-web/internal/service"
)

func main() {
	logger := logging.SetDefault()

	if err := run(logger); err != nil {
		logger.Error("termtidy-web stopped", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	eventRepo, closeEvents, err := newEventRepository(ctx, cfg, pool)
	if err != nil {
		return err
	}
	defer closeEvents()

	worker := service.NewEventWorker(eventRepo, logger, cfg.WorkerBufferSize, cfg.WorkerBatchSize, cfg.WorkerFlushEvery)
	accountRepo := repository.NewAccountRepository(pool)

	if cfg.UpstreamURL == "" {
		logger.Warn("TERMTIDY_API_URL is not set, audit requests will fail")
	}
	proxy := service.NewAuditProxy(cfg.UpstreamURL, service.FiberUpstream{}, logger)

	auditService := service.NewAuditService(proxy, worker)
	usageService := service.NewUsageService(accountRepo)
	accountService := service.NewAccountService(accountRepo, worker, logger, cfg.FreeTrialTerms, cfg.MonthlyTermsQuota)

	server := httpserver.NewServer(cfg, logger, auth.NewVerifier(cfg.JWTSecret, cfg.JWTAudience), routes.Controllers{
		Audit:   controller.NewAuditController(auditService),
		Usage:   controller.NewUsageController(usageService, logger),
		Account: controller.NewAccountController(accountService, logger),
		Pages:   controller.NewPageController(auditService, usageService, logger),
	})

	go func() {
		<-ctx.Done()
		logger.Info("shutting down http server")
		if err := server.Shutdown(); err != nil {
			logger.Error("http shutdown", "error", err)
		}
	}()

	logger.Info("starting server", "addr", cfg.HTTPPort, "mode", cfg.AppMode, "event_store", cfg.EventStore)
	listenErr := server.Listen(cfg.HTTPPort)

	// Requests are drained; flush whatever events they queued.
	worker.Shutdown()

	if listenErr != nil {
		return fmt.Errorf("server stopped: %w", listenErr)
	}
	return nil
}

func newEventRepository(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (repository.EventRepository, func(), error) {
	if cfg.EventStore != config.EventStoreClickHouse {
		return repository.NewEventRepository(pool), func() {}, nil
	}

	conn, err := db.NewClickHouse(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect clickhouse: %w", err)
	}
	if err := db.RunClickHouseMigrations(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("migrate clickhouse: %w", err)
	}
	return repository.NewClickHouseEventRepository(conn), func() { _ = conn.Close() }, nil
}
