package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/mise-backend/api/routes"
	"github.com/angelmondragon/mise-backend/internal/access"
	"github.com/angelmondragon/mise-backend/internal/forecast"
	"github.com/angelmondragon/mise-backend/internal/inventory"
	"github.com/angelmondragon/mise-backend/pkg/auth"
	"github.com/angelmondragon/mise-backend/pkg/auth/session"
	"github.com/angelmondragon/mise-backend/pkg/completion"
	"github.com/angelmondragon/mise-backend/pkg/config"
	"github.com/angelmondragon/mise-backend/pkg/db"
	"github.com/angelmondragon/mise-backend/pkg/instance"
	"github.com/angelmondragon/mise-backend/pkg/logger"
	"github.com/angelmondragon/mise-backend/pkg/metrics"
	"github.com/angelmondragon/mise-backend/pkg/migrate"
	"github.com/angelmondragon/mise-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
	} else {
		logg.Warn(ctx, "redis not configured; session checks and rate limiting disabled")
	}

	var sessions session.AccessSessionChecker
	if redisClient != nil && cfg.FeatureFlags.SessionCheck {
		manager, err := session.NewManager(redisClient, auth.AccessTokenTTL(cfg.JWT))
		if err != nil {
			return err
		}
		sessions = manager
	}

	verifier, err := access.NewJWTVerifier(cfg.JWT, sessions)
	if err != nil {
		return err
	}
	gate, err := access.NewGate(verifier, access.NewRepository(dbClient.DB()), logg)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	insightMetrics := metrics.NewInsightMetrics(registry)

	aggregator, err := inventory.NewAggregator(inventory.NewRepository(dbClient.DB()), insightMetrics, logg)
	if err != nil {
		return err
	}
	completionClient, err := completion.New(cfg.Completion)
	if err != nil {
		return err
	}
	relay, err := forecast.NewRelay(completionClient, insightMetrics, logg)
	if err != nil {
		return err
	}
	insights, err := forecast.NewService(aggregator, relay, logg)
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.ID(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisClient, gate, insights, registry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
