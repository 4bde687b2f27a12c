package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/onehash/smartflow-bridge/internal/api/router"
	"github.com/onehash/smartflow-bridge/internal/calllog"
	"github.com/onehash/smartflow-bridge/internal/callsync"
	appconfig "github.com/onehash/smartflow-bridge/internal/config"
	"github.com/onehash/smartflow-bridge/internal/jobs"
	"github.com/onehash/smartflow-bridge/internal/leads"
	"github.com/onehash/smartflow-bridge/internal/notify"
	"github.com/onehash/smartflow-bridge/internal/observability/metrics"
	"github.com/onehash/smartflow-bridge/internal/smartflow"
	"github.com/onehash/smartflow-bridge/internal/users"
	"github.com/onehash/smartflow-bridge/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting smartflow-bridge API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Repositories: Postgres when DATABASE_URL is set, in-memory otherwise
	// so the service still runs for local development.
	var (
		callLogRepo  calllog.Repository
		leadRepo     leads.Repository
		providerRepo users.ProviderRepository
		directory    users.Directory
		pool         *pgxpool.Pool
	)
	if cfg.DatabaseURL != "" {
		var err error
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
		callLogRepo = calllog.NewPostgresRepository(pool)
		leadRepo = leads.NewPostgresRepository(pool)
		providerRepo = users.NewPostgresProviderRepository(pool)
		directory = users.NewPostgresDirectory(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory repositories")
		callLogRepo = calllog.NewInMemoryRepository()
		leadRepo = leads.NewInMemoryRepository()
		providerRepo = users.NewInMemoryProviderRepository()
		directory = users.NewInMemoryDirectory()
	}

	apiToken, err := cfg.APIToken()
	if err != nil {
		logger.Error("failed to resolve provider API token", "error", err)
		os.Exit(1)
	}
	if apiToken == "" {
		logger.Error("provider API token is required (SMARTFLOW_API_TOKEN or SMARTFLOW_API_TOKEN_ENC)")
		os.Exit(1)
	}
	client, err := smartflow.New(smartflow.Config{
		BaseURL:   cfg.SmartflowBaseURL,
		APIToken:  apiToken,
		DIDNumber: cfg.SmartflowDIDNumber,
		Timeout:   cfg.SmartflowTimeout,
		Logger:    logger.Component("smartflow").Logger,
	})
	if err != nil {
		logger.Error("failed to create provider client", "error", err)
		os.Exit(1)
	}

	callMetrics := metrics.NewCallMetrics(nil)

	processor := callsync.NewProcessor(callsync.ProcessorConfig{
		CallLogs: callLogRepo,
		Leads:    leadRepo,
		Logger:   logger.Component("callsync"),
		Metrics:  callMetrics,
	})
	actions := callsync.NewActions(client, leadRepo, providerRepo, logger.Component("actions"), callMetrics)
	records := callsync.NewRecordsSync(client, processor, logger.Component("records"), callMetrics)
	importer := users.NewImporter(client, providerRepo, directory, logger.Component("users"), callMetrics)

	hub := notify.NewHub(logger.Component("notify"))
	defer hub.Close()
	notifyService := notify.NewService(hub, leadRepo, providerRepo, logger.Component("notify"))

	r := router.New(&router.Config{
		Logger:             logger,
		CallsHandler:       callsync.NewHandler(processor, actions, records, logger.Component("calls")),
		NotifyHandler:      notify.NewHandler(notifyService, hub, logger.Component("notify")),
		UsersHandler:       users.NewHandler(importer, logger.Component("users")),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	var cron *jobs.CronManager
	if cfg.PollEnabled {
		cron = jobs.NewCronManager(records, cfg.PollSchedule, cfg.PollTimeout, logger.Component("jobs"))
		if err := cron.Start(); err != nil {
			logger.Error("failed to start call records poll", "error", err, "schedule", cfg.PollSchedule)
			os.Exit(1)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	if cron != nil {
		cron.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
