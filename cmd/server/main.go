package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/kevin07696/subs-tracker/internal/adapters/postgres"
	"github.com/kevin07696/subs-tracker/internal/config"
	trackerHandler "github.com/kevin07696/subs-tracker/internal/handlers/tracker"
	"github.com/kevin07696/subs-tracker/internal/jobs"
	trackerService "github.com/kevin07696/subs-tracker/internal/services/tracker"
	"github.com/kevin07696/subs-tracker/pkg/logging"
	"github.com/kevin07696/subs-tracker/pkg/middleware"
	"github.com/kevin07696/subs-tracker/pkg/observability"
	"github.com/kevin07696/subs-tracker/pkg/resilience"
	"github.com/kevin07696/subs-tracker/pkg/shutdown"
)

const (
	poolMonitorInterval = time.Minute
	overdueScanTimeout  = 5 * time.Minute
	dbConnectAttempts   = 5
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logger.Level, cfg.Logger.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting subscription tracker",
		zap.String("version", "0.1.0"),
		zap.Int("port", cfg.Server.Port),
	)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	databaseURL, err := resolveDatabaseURL(ctx, cfg, logger)
	if err != nil {
		return err
	}

	poolCfg := postgres.DefaultPoolConfig(databaseURL)
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns
	var dbPool *pgxpool.Pool
	err = resilience.Retry(ctx, dbConnectAttempts, resilience.StartupBackoff(), func(ctx context.Context) error {
		var err error
		dbPool, err = postgres.NewPool(ctx, poolCfg, logger)
		return err
	}, func(attempt int, err error, delay time.Duration) {
		logger.Warn("Database not ready, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
	})
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	postgres.StartPoolMonitoring(ctx, dbPool, poolMonitorInterval, logger)

	// Dependencies
	dbExecutor := postgres.NewDBExecutor(dbPool)
	subRepo := postgres.NewSubscriptionRepository(dbExecutor)
	contributionRepo := postgres.NewContributionRepository(dbExecutor)
	chargeRepo := postgres.NewChargeRepository(dbExecutor)

	tracker := trackerService.NewService(
		dbExecutor,
		subRepo,
		contributionRepo,
		chargeRepo,
		logging.NewZapLogger(logger),
	)

	// Background jobs
	scheduler := cron.New(cron.WithLocation(time.UTC))
	if spec := cfg.Jobs.OverdueScanSchedule; spec != "" {
		scanner := jobs.NewOverdueScanner(dbExecutor, subRepo, contributionRepo, logger)
		if _, err := scanner.Register(scheduler, spec, overdueScanTimeout); err != nil {
			return fmt.Errorf("schedule overdue scan %q: %w", spec, err)
		}
		logger.Info("Overdue scan scheduled", zap.String("schedule", spec))
	}
	scheduler.Start()

	// Metrics and health
	healthChecker := observability.NewHealthChecker(dbPool)
	metricsServer := observability.StartMetricsServer(cfg.Server.MetricsPort, healthChecker, logger)

	// HTTP API
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, logger)

	router := mux.NewRouter()
	router.Use(
		middleware.Recovery(logger),
		middleware.RequestLogger(logger),
		observability.HTTPMetricsMiddleware,
		middleware.NewSecurityHeaders(cfg.Logger.Development).Middleware,
		rateLimiter.Middleware,
		middleware.Gzip(logger),
	)
	trackerHandler.NewHandler(tracker, logger).RegisterRoutes(router)

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case runErr = <-serverErr:
		logger.Error("HTTP server failed", zap.Error(runErr))
	}

	// Graceful shutdown: registered first, stopped last
	shutdownMgr := shutdown.NewManager(logger, cfg.Server.ShutdownTimeout)
	shutdownMgr.RegisterNoErr("database", dbPool.Close)
	shutdownMgr.Register("metrics_server", func(context.Context) error {
		return observability.ShutdownMetricsServer(metricsServer)
	})
	shutdownMgr.Register("scheduler", func(ctx context.Context) error {
		select {
		case <-scheduler.Stop().Done():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	shutdownMgr.RegisterNoErr("rate_limiter", rateLimiter.Shutdown)
	shutdownMgr.Register("http_server", httpServer.Shutdown)

	if err := shutdownMgr.Shutdown(); err != nil && runErr == nil {
		runErr = err
	}

	logger.Info("Server stopped")
	return runErr
}
