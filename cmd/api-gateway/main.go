package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/clinic-scheduler-api/api/swagger"
	"github.com/noah-isme/clinic-scheduler-api/internal/handler"
	internalmiddleware "github.com/noah-isme/clinic-scheduler-api/internal/middleware"
	"github.com/noah-isme/clinic-scheduler-api/internal/repository"
	"github.com/noah-isme/clinic-scheduler-api/internal/service"
	"github.com/noah-isme/clinic-scheduler-api/pkg/cache"
	"github.com/noah-isme/clinic-scheduler-api/pkg/config"
	"github.com/noah-isme/clinic-scheduler-api/pkg/database"
	"github.com/noah-isme/clinic-scheduler-api/pkg/events"
	"github.com/noah-isme/clinic-scheduler-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/clinic-scheduler-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/clinic-scheduler-api/pkg/middleware/requestid"
	"github.com/noah-isme/clinic-scheduler-api/pkg/storage"
)

// @title Clinic Scheduler API
// @version 1.0.0
// @description Scheduling engine for a pediatric therapy clinic: sessions, workload, coverage and change history.
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	validate := validator.New()
	metrics := service.NewMetricsService()
	checks := map[string]handler.Pinger{}

	store := repository.NewClinicStore()
	if cfg.SeedFile != "" {
		snapshot, err := repository.LoadSnapshotFile(cfg.SeedFile, cfg.Scheduling.DefaultDuration)
		if err != nil {
			return err
		}
		if err := store.Seed(ctx, snapshot); err != nil {
			return fmt.Errorf("seed store: %w", err)
		}
		logr.Info("store seeded",
			zap.String("file", cfg.SeedFile),
			zap.Int("children", len(snapshot.Children)),
			zap.Int("therapists", len(snapshot.Therapists)),
			zap.Int("schedules", len(snapshot.Schedules)))
	}

	var cacheRepo service.CacheRepository
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		redisRepo := repository.NewCacheRepository(client, logr)
		defer redisRepo.Close() //nolint:errcheck
		checks["redis"] = redisRepo
		cacheRepo = redisRepo
	default:
		cacheRepo = repository.NewMemoryCacheRepository(cfg.Cache.Capacity, cfg.Cache.TTL)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	var ledger *repository.HistoryRepository
	if cfg.Ledger.PersistenceEnabled {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer db.Close() //nolint:errcheck
		if err := database.EnsureLedgerSchema(ctx, db); err != nil {
			return err
		}
		ledger = repository.NewHistoryRepository(db)
		checks["postgres"] = handler.PingFunc(db.PingContext)
	}

	var eventSvc *service.EventService
	if cfg.Events.Enabled {
		producer, err := events.NewProducer(cfg.Events, logr)
		if err != nil {
			return fmt.Errorf("init kafka producer: %w", err)
		}
		defer producer.Close() //nolint:errcheck
		eventSvc = service.NewEventService(producer, cfg.Events, metrics, logr)
		eventSvc.Start(ctx)
		defer eventSvc.Stop()
	}

	schedules := newScheduleService(store, ledger, eventSvc, metrics, cfg, validate, logr)
	if ledger != nil {
		replayed, err := schedules.RestoreFromLedger(ctx)
		if err != nil {
			return fmt.Errorf("restore ledger: %w", err)
		}
		logr.Info("ledger replayed", zap.Int("entries", replayed))
	}

	analytics := service.NewAnalyticsService(store, cacheSvc, metrics, cfg.Scheduling, logr)

	reportStorage, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		return fmt.Errorf("init report storage: %w", err)
	}
	exports := service.NewExportService(analytics, store, reportStorage, logr)

	metricsHandler := handler.NewMetricsHandler(metrics, checks)
	handlers := handler.Handlers{
		Children:   handler.NewChildHandler(service.NewChildService(store, validate, logr), analytics),
		Therapists: handler.NewTherapistHandler(service.NewTherapistService(store, validate, logr), analytics, schedules),
		Schedules:  handler.NewScheduleHandler(schedules),
		Analytics:  handler.NewAnalyticsHandler(analytics, schedules),
		Reports:    handler.NewReportHandler(exports),
		Metrics:    metricsHandler,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.Actor(), internalmiddleware.WithResponseMeta())
	handler.RegisterRoutes(api, handlers)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logr.Info("server exited")
	return nil
}

// newScheduleService keeps disabled collaborators as nil interfaces.
func newScheduleService(store *repository.ClinicStore, ledger *repository.HistoryRepository, eventSvc *service.EventService,
	metrics *service.MetricsService, cfg *config.Config, validate *validator.Validate, logr *zap.Logger) *service.ScheduleService {
	if ledger == nil {
		return service.NewScheduleService(store, nil, eventSvc, metrics, cfg.Scheduling, validate, logr)
	}
	return service.NewScheduleService(store, ledger, eventSvc, metrics, cfg.Scheduling, validate, logr)
}
