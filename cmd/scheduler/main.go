package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"listing_jobs/internal/api"
	"listing_jobs/internal/config"
	"listing_jobs/internal/metrics"
	"listing_jobs/internal/publisher"
	"listing_jobs/internal/scheduler"
	"listing_jobs/internal/scraper"
	"listing_jobs/internal/service"
	"listing_jobs/internal/storage/postgres"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	location, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		logger.Error("failed to load timezone", "timezone", cfg.Schedule.Timezone, "error", err)
		os.Exit(1)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	var events service.EventPublisher
	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		events = rabbitMQ
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewRecorder(metrics.WithExporter(metrics.NewExporter(registry)))

	store := postgres.NewListingStore(db, cfg.Sources)

	scraperClient := scraper.New(scraper.Config{
		BaseURL:        cfg.Scraper.BaseURL,
		InitialBackoff: cfg.Scraper.InitialBackoff,
		MaxBackoff:     cfg.Scraper.MaxBackoff,
	}, logger)

	triggers := scheduler.New(location, logger)

	jobs := service.NewJobScheduler(cfg.Sources, cfg.Schedule, service.Deps{
		Triggers:  triggers,
		Runner:    service.NewSourceScrapeRunner(scraperClient, recorder, logger),
		Health:    service.NewHealthMonitor(store, cfg.Health, logger),
		Cleanup:   service.NewCleanupCoordinator(store, cfg.Cleanup.Timeout, logger),
		Recorder:  recorder,
		Publisher: events,
	}, logger)

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.New(jobs, recorder, registry, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := jobs.Start(); err != nil {
		logger.Error("failed to start job scheduler", "error", err)
		os.Exit(1)
	}
	triggers.Start()

	go func() {
		logger.Info("http server listening", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	logger.Info("starting listing job scheduler",
		"environment", cfg.Environment,
		"sources", len(cfg.Sources),
		"scrape", cfg.Schedule.Scrape,
		"health", cfg.Schedule.Health,
		"cleanup", cfg.Schedule.Cleanup,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown", "error", err)
	}
	if err := jobs.Stop(ctx); err != nil {
		logger.Error("job scheduler shutdown", "error", err)
	}
	if err := triggers.Stop(ctx); err != nil {
		logger.Error("trigger scheduler shutdown", "error", err)
	}
	logger.Info("shutdown complete")
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
