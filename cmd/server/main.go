package main

import (
	"context"
	"time"

	"botusage/internal/analytics"
	"botusage/internal/cache"
	"botusage/internal/config"
	"botusage/internal/database"
	"botusage/internal/email"
	"botusage/internal/server"
)

// @title Bot Usage Analytics API
// @version 1.0
// @description Daily usage statistics and AI budget projections for conversational bot projects.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	logger := cfg.SetupLogger()

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Database connection failed")
	}
	logger.Info().Msg("Database connection established successfully")

	retry := database.DefaultRetryConfig
	retry.MaxRetries = cfg.FetchRetries

	store, err := database.NewStore(db, retry)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create event store")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.Migrate(ctx); err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("Failed to migrate event store")
	}
	cancel()

	opts := analytics.Options{
		DefaultSpendLimit: cfg.DefaultSpendLimit,
		SyntheticFallback: cfg.SyntheticFallback,
		FetchTimeout:      cfg.FetchTimeout,
		Sink:              store,
		Logger:            logger,
	}

	if cfg.SendGridAPIKey != "" {
		alerts, err := email.NewAlertService(cfg.SendGridAPIKey, cfg.AlertFromEmail, cfg.AlertEmail)
		if err != nil {
			logger.Warn().Err(err).Msg("Budget alerts disabled")
		} else {
			opts.Notifier = alerts
		}
	} else {
		logger.Info().Msg("SENDGRID_API_KEY not set, budget alerts disabled")
	}

	var closeRedis func() error
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := cache.ConnectRedis(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, budget alert ledger kept in memory")
		} else {
			closeRedis = client.Close
			opts.Alerts = cache.NewRedisLedger(client, "botusage:alert:")
			logger.Info().Msg("Budget alert ledger shared through Redis")
		}
	}

	svc, err := analytics.NewService(store, store, opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create analytics service")
	}

	srv := server.New(cfg, db, svc, logger)
	srv.Initialize()

	err = srv.Start()
	if closeRedis != nil {
		if cerr := closeRedis(); cerr != nil {
			logger.Warn().Err(cerr).Msg("Failed to close Redis client")
		}
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("Server failed to start")
	}
}
