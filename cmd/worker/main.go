package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	occupancyapp "github.com/Apolo151/tourist-village-app-sub000/internal/application/occupancy"
	"github.com/Apolo151/tourist-village-app-sub000/internal/infrastructure/cache"
	"github.com/Apolo151/tourist-village-app-sub000/internal/infrastructure/config"
	"github.com/Apolo151/tourist-village-app-sub000/internal/infrastructure/event"
	"github.com/Apolo151/tourist-village-app-sub000/internal/infrastructure/logger"
	"github.com/Apolo151/tourist-village-app-sub000/internal/infrastructure/persistence"
	"github.com/Apolo151/tourist-village-app-sub000/internal/infrastructure/scheduler"
	"github.com/Apolo151/tourist-village-app-sub000/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = lp.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServer,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && tp.IsEnabled() {
		if err := tp.EnableSpanProfiles(); err != nil {
			log.Warn("Span profiles unavailable", zap.Error(err))
		}
	}

	log.Info("Starting occupancy worker",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("refresh_cron", cfg.Occupancy.RefreshCron),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	meter := mp.Meter(cfg.Telemetry.ServiceName)
	if err := db.Instrument(cfg.Telemetry, meter, log); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	metrics, err := telemetry.NewLedgerMetrics(meter)
	if err != nil {
		log.Fatal("Failed to register metrics", zap.Error(err))
	}

	// Occupancy projection cache
	projections, err := newProjectionCache(cfg, log)
	if err != nil {
		log.Fatal("Failed to create occupancy cache", zap.Error(err))
	}

	svcOpts := []occupancyapp.Option{
		occupancyapp.WithLogger(log),
		occupancyapp.WithMetrics(metrics),
	}
	if cfg.Occupancy.RefreshMaterializedView {
		svcOpts = append(svcOpts, occupancyapp.WithStatusView(persistence.NewOccupancyViewRepository(db.DB)))
	}
	service := occupancyapp.NewService(
		persistence.NewBookingRepository(db.DB),
		projections,
		occupancyapp.ConfigFromSettings(cfg.Occupancy),
		svcOpts...,
	)

	// Booking change notifications invalidate cached projections
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(occupancyapp.NewBookingChangedHandler(service, log))
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Refresh workers and the periodic sweep
	sched, err := scheduler.NewScheduler(schedulerConfig(cfg.Occupancy),
		occupancyapp.NewRefreshExecutor(service, nil), log)
	if err != nil {
		log.Fatal("Invalid scheduler configuration", zap.Error(err))
	}
	if err := sched.Start(ctx); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}

	triggerCfg := scheduler.DefaultCronTriggerConfig()
	triggerCfg.Spec = cfg.Occupancy.RefreshCron
	triggerCfg.RefreshView = cfg.Occupancy.RefreshMaterializedView
	trigger, err := scheduler.NewCronTrigger(triggerCfg, sched, persistence.NewApartmentRepository(db.DB), log)
	if err != nil {
		log.Fatal("Invalid refresh schedule", zap.Error(err))
	}
	if err := trigger.Start(ctx); err != nil {
		log.Fatal("Failed to start cron trigger", zap.Error(err))
	}
	sweep := func(ctx context.Context) {
		res, err := trigger.TriggerSweep(ctx)
		if err != nil {
			if !errors.Is(err, scheduler.ErrSweepInProgress) {
				log.Error("Refresh sweep failed", zap.Error(err))
			}
			return
		}
		log.Info("Refresh sweep queued",
			zap.Int("apartments", res.Apartments),
			zap.Int("submitted", res.Submitted),
			zap.Int("rejected", res.Rejected),
		)
	}
	sweep(ctx)

	listenerCfg := event.DefaultPQListenerConfig()
	listenerCfg.DSN = cfg.Database.DSN()
	listenerCfg.Channel = cfg.Occupancy.NotifyChannel
	listener, err := event.NewPQListener(listenerCfg, bus, log, event.WithReconnectHook(sweep))
	if err != nil {
		log.Fatal("Failed to create notification listener", zap.Error(err))
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := listener.Run(ctx); err != nil {
			log.Error("Notification listener stopped", zap.Error(err))
			stop()
		}
	}()

	log.Info("Occupancy worker running", zap.Time("next_sweep", trigger.NextRun()))
	<-ctx.Done()
	log.Info("Shutting down occupancy worker...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	wg.Wait()
	if err := trigger.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping cron trigger", zap.Error(err))
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping scheduler", zap.Error(err))
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := projections.Close(); err != nil {
		log.Error("Error closing occupancy cache", zap.Error(err))
	}
	if stats, err := db.Stats(); err == nil {
		log.Info("Database pool at shutdown",
			zap.Int("open", stats.OpenConnections),
			zap.Int64("wait_count", stats.WaitCount),
			zap.Duration("wait_duration", stats.WaitDuration),
		)
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}

	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := mp.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := lp.Shutdown(shutdownCtx); err != nil {
		// the bridge is gone; report on stderr
		_, _ = os.Stderr.WriteString("Error shutting down logger provider: " + err.Error() + "\n")
	}

	log.Info("Occupancy worker exited gracefully")
}

func newProjectionCache(cfg *config.Config, log *zap.Logger) (cache.ProjectionCache, error) {
	factory := cache.NewOccupancyCacheFactory(cache.RedisConfig{
		Host:      cfg.Redis.Host,
		Port:      cfg.Redis.Port,
		Password:  cfg.Redis.Password,
		DB:        cfg.Redis.DB,
		KeyPrefix: cfg.Redis.KeyPrefix,
	},
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	)
	if !cfg.Redis.Enabled {
		log.Info("Redis disabled, using in-memory occupancy cache")
		return factory.CreateInMemoryCache(), nil
	}
	return factory.CreateCache()
}

func schedulerConfig(c config.OccupancyConfig) scheduler.SchedulerConfig {
	return scheduler.SchedulerConfig{
		Enabled:           true,
		MaxConcurrentJobs: c.Workers,
		QueueSize:         c.QueueSize,
		JobTimeout:        c.JobTimeout,
		RetryAttempts:     c.RetryAttempts,
		RetryDelay:        c.RetryDelay,
	}
}
