package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	appdelinquency "github.com/mateatletas/backend/internal/application/delinquency"
	"github.com/mateatletas/backend/internal/domain/delinquency"
	"github.com/mateatletas/backend/internal/domain/shared"
	"github.com/mateatletas/backend/internal/infrastructure/auth"
	"github.com/mateatletas/backend/internal/infrastructure/config"
	"github.com/mateatletas/backend/internal/infrastructure/logger"
	"github.com/mateatletas/backend/internal/infrastructure/persistence"
	"github.com/mateatletas/backend/internal/infrastructure/scheduler"
	"github.com/mateatletas/backend/internal/infrastructure/storage"
	"github.com/mateatletas/backend/internal/infrastructure/telemetry"
	"github.com/mateatletas/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// gormSlowQueryThreshold marks queries logged as slow
const gormSlowQueryThreshold = 200 * time.Millisecond

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Mateatletas backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	// Database
	db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{
		Logger:  logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), gormSlowQueryThreshold),
		Tracing: tracerProvider.IsEnabled(),
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Delinquency evaluation
	loc, err := cfg.Billing.Location()
	if err != nil {
		log.Fatal("Invalid billing timezone", zap.Error(err))
	}
	policy, err := cfg.Delinquency.Policy()
	if err != nil {
		log.Fatal("Invalid delinquency status policy", zap.Error(err))
	}
	log.Info("Delinquency evaluation configured",
		zap.String("status_policy", string(policy)),
		zap.String("timezone", loc.String()),
		zap.Int("report_workers", cfg.Delinquency.ReportWorkers),
	)

	evaluator := delinquency.NewEvaluator(delinquency.NewDueDateResolver(loc), policy)
	obligationRepo := persistence.NewGormObligationRepository(db.DB)
	directoryRepo := persistence.NewGormDirectoryRepository(db.DB)
	clock := shared.SystemClock{}

	accessService := appdelinquency.NewAccessService(obligationRepo, directoryRepo, evaluator, clock, log.Named("access"))
	reportService := appdelinquency.NewReportService(obligationRepo, directoryRepo, evaluator, clock,
		cfg.Delinquency.ReportWorkers, log.Named("reports"))

	// Token revocation
	var blacklist auth.TokenBlacklist
	if cfg.Redis.Enabled {
		redisClient, err := auth.NewRedisClient(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			_ = redisClient.Close()
		}()
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		log.Info("Token blacklist enabled", zap.String("redis_addr", cfg.Redis.Addr()))
	}

	var metrics *telemetry.Metrics
	if cfg.Telemetry.MetricsEnabled {
		metrics = telemetry.NewMetrics("mateatletas")
	}

	// Daily delinquency scan
	var (
		scanScheduler *scheduler.DelinquencyScanScheduler
		scanService   *appdelinquency.ScanService
	)
	if cfg.Scheduler.Enabled {
		var scanOpts []appdelinquency.ScanOption
		if metrics != nil {
			scanOpts = append(scanOpts, appdelinquency.WithScanRecorder(scheduler.NewMetricsScanRecorder(metrics)))
		}
		if cfg.Storage.Enabled {
			store, err := storage.NewS3SnapshotStore(ctx, &cfg.Storage, storage.WithLogger(log.Named("storage")))
			if err != nil {
				log.Fatal("Failed to initialize snapshot storage", zap.Error(err))
			}
			if err := store.EnsureBucket(ctx); err != nil {
				log.Fatal("Failed to prepare snapshot bucket", zap.Error(err))
			}
			scanOpts = append(scanOpts, appdelinquency.WithSnapshotStore(store, cfg.Storage.Prefix))
		}
		scanService = appdelinquency.NewScanService(reportService, loc, clock, log.Named("scan"), scanOpts...)

		schedulerCfg := scheduler.DefaultConfig()
		schedulerCfg.Schedule = cfg.Scheduler.DelinquencyScanCron
		schedulerCfg.Location = loc
		schedulerCfg.JobTimeout = cfg.Scheduler.JobTimeout
		schedulerCfg.RetryAttempts = cfg.Scheduler.RetryAttempts
		schedulerCfg.RetryDelay = cfg.Scheduler.RetryDelay
		scanScheduler, err = scheduler.NewDelinquencyScanScheduler(schedulerCfg, scanService, log.Named("scheduler"))
		if err != nil {
			log.Fatal("Failed to create delinquency scan scheduler", zap.Error(err))
		}
		if err := scanScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start delinquency scan scheduler", zap.Error(err))
		}
	}

	// HTTP
	deps := router.Deps{
		Logger:         log,
		Tokens:         auth.NewJWTService(cfg.JWT),
		TokenBlacklist: blacklist,
		Access:         accessService,
		Verifier:       accessService,
		Reports:        reportService,
		DB:             db,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: tracerProvider.IsEnabled(),
		TrustedProxies: cfg.HTTP.TrustedProxies,
	}
	if metrics != nil {
		deps.Metrics = metrics
	}
	if scanScheduler != nil {
		deps.Scans = scanScheduler
	}
	if scanService != nil && cfg.Storage.Enabled {
		deps.Snapshots = scanService
	}
	engine, err := router.NewEngine(deps)
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if scanScheduler != nil {
		if err := scanScheduler.Stop(shutdownCtx); err != nil {
			log.Error("Error stopping delinquency scan scheduler", zap.Error(err))
		}
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracing", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
