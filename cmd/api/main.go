package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/amats-service/internal/api/http"
	"github.com/spec-kit/amats-service/internal/api/http/handlers"
	"github.com/spec-kit/amats-service/internal/auth"
	"github.com/spec-kit/amats-service/internal/config"
	"github.com/spec-kit/amats-service/internal/events"
	"github.com/spec-kit/amats-service/internal/observability"
	"github.com/spec-kit/amats-service/internal/persistence"
	"github.com/spec-kit/amats-service/internal/repository"
	"github.com/spec-kit/amats-service/internal/seed"
	"github.com/spec-kit/amats-service/internal/service"
	"github.com/spec-kit/amats-service/internal/suspension"
	"github.com/spec-kit/amats-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	accountRepo := repository.NewMemoryAccountRepository()
	if pg.Enabled() {
		accountRepo = repository.NewAccountRepository(pg.PoolHandle())
	}
	deletedRegistry := repository.NewMemoryDeletedRegistry()
	if redis.Enabled() {
		deletedRegistry = repository.NewRedisDeletedRegistry(redis.Client, cfg.Redis.Prefix)
	}

	seedAccounts, err := seed.LoadFile(cfg.Seed.AccountsFile, time.Now())
	if err != nil {
		logger.Fatal("failed to load seed accounts", zap.Error(err))
	}
	synthetic := repository.NewSyntheticRoster(seedAccounts)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	suspensionService := service.NewSuspensionService(service.SuspensionDependencies{
		AccountRepo:     accountRepo,
		DeletedRegistry: deletedRegistry,
		Synthetic:       synthetic,
		Dispatcher:      dispatcher,
		Metrics:         metrics,
		Logger:          logger,
	})

	presenter := suspension.NewPresenter(cfg.Suspension.TickInterval(), func(ctx context.Context, email string, openedAt time.Time) error {
		_, err := suspensionService.ExpireCountdown(ctx, email, openedAt)
		return err
	}, logger)
	defer presenter.Close()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		AccountRepo:     accountRepo,
		DeletedRegistry: deletedRegistry,
		Synthetic:       synthetic,
		Suspensions:     suspensionService,
		Countdowns:      presenter,
		Dispatcher:      dispatcher,
		Logger:          logger,
	})
	accountService := service.NewAccountService(accountRepo, synthetic, nil)
	auditService := service.NewAuditService(dispatcher, repository.NewMemoryAuditRepository(0), logger)

	worker.StartAuditWorker(auditService)
	worker.StartCountdownWorker(dispatcher, presenter, logger)

	reconciler, err := worker.NewReconcileWorker(cfg.Suspension.ReconcileSchedule, suspensionService, logger)
	if err != nil {
		logger.Fatal("invalid reconcile schedule", zap.Error(err))
	}
	reconciler.Start()
	defer reconciler.Stop()

	if cfg.Auth.AdminPassword == "" {
		logger.Warn("ADMIN_BOOTSTRAP_PASSWORD not provided; no admin account bootstrapped")
	} else if _, err := authService.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		logger.Fatal("failed to bootstrap admin", zap.Error(err))
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), accountRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		UnescapePath: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Users:          handlers.NewUsersHandler(authService),
		Countdown:      handlers.NewCountdownHandler(presenter),
		Admin:          handlers.NewAdminHandler(suspensionService, accountService, auditService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
