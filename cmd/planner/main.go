package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/af-corp/atlas-planner/internal/api"
	"github.com/af-corp/atlas-planner/internal/auth"
	"github.com/af-corp/atlas-planner/internal/cache"
	"github.com/af-corp/atlas-planner/internal/clarify"
	"github.com/af-corp/atlas-planner/internal/config"
	"github.com/af-corp/atlas-planner/internal/llm"
	"github.com/af-corp/atlas-planner/internal/planner"
	"github.com/af-corp/atlas-planner/internal/ratelimit"
	"github.com/af-corp/atlas-planner/internal/search"
	"github.com/af-corp/atlas-planner/internal/session"
	"github.com/af-corp/atlas-planner/internal/telemetry"
)

var version = "dev"

func main() {
	configDir := flag.String("config", "configs", "path to configuration directory")
	flag.Parse()

	logger := newLogger("info", "json")
	slog.SetDefault(logger)

	loader := config.NewLoader(*configDir, logger)
	if err := loader.Load(); err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := loader.Watch(); err != nil {
		logger.Warn("failed to start config watcher", "error", err)
	}

	cfg := loader.Config()
	logger = newLogger(cfg.Telemetry.LogLevel, cfg.Telemetry.LogFormat)
	slog.SetDefault(logger)

	// Optional PostgreSQL for the API-key store. Without it the server runs
	// in open mode.
	var keyStore auth.KeyStore
	var dbPool *pgxpool.Pool
	if cfg.Database.Enabled() {
		pool, err := pgxpool.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		dbPool = pool
		defer dbPool.Close()
		if err := dbPool.Ping(context.Background()); err != nil {
			logger.Warn("database not reachable, auth lookups will fail", "error", err)
		} else {
			logger.Info("database connected")
		}
	} else {
		logger.Info("no database configured, running in open mode")
	}

	// Optional redis for sessions, rate limiting, and the auth cache.
	var rdb *redis.Client
	if cfg.Redis.Enabled() && cfg.Redis.Addresses[0] != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addresses[0],
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis not reachable, using in-memory fallbacks", "error", err)
			rdb = nil
		} else {
			logger.Info("redis connected")
		}
	}

	if dbPool != nil {
		keyStore = auth.NewCachedKeyStore(dbPool, rdb)
	}

	registry := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(registry)
	errTracker := telemetry.NewErrorTracker(cfg.Telemetry.ErrorBuffer)
	audit := llm.NewAudit(cfg.Telemetry.AuditBuffer)

	sessions := session.NewStore(rdb, cfg.Clarify.SessionTTL)
	machine := clarify.NewMachine(sessions, cfg.Clarify.MaxRounds, metrics, logger)

	models := loader.Models()
	provider, ok := loader.Providers().Providers[models.Synthesis.Provider]
	if !ok {
		logger.Error("synthesis provider not configured", "provider", models.Synthesis.Provider)
		os.Exit(1)
	}
	transport := llm.NewHTTPTransport(provider.BaseURL, provider.APIKey, provider.Timeout)
	gateway := llm.NewGateway(transport, models.Synthesis.Chain(), models.Synthesis.MaxRepair, audit, metrics, logger)

	orch := planner.NewOrchestrator(
		search.NewFlightProvider(cfg.Planner.DefaultOrigin),
		search.NewHotelProvider(),
		search.NewSpotProvider(),
		gateway,
		cache.NewMemoryCache(),
		metrics,
		logger,
		cfg.Planner.EnableStaged,
	)

	handler := api.NewHandler(machine, orch, audit, errTracker, metrics, logger,
		cfg.Planner.DefaultCurrency, planner.Strategy(cfg.Planner.DefaultStrategy), cfg.Telemetry.SnapshotLimit)

	router := api.NewRouter(handler, api.RouterDeps{
		KeyStore: keyStore,
		Limiter:  ratelimit.NewLimiter(rdb),
		Quota:    cfg.RateLimit.Quota,
		Window:   cfg.RateLimit.Window,
		Metrics:  metrics,
		Registry: registry,
		Logger:   logger,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("planner starting", "addr", addr, "version", version)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("planner stopped")
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
