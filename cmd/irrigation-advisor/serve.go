package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	httpadapter "github.com/couchcryptid/irrigation-advisor/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/irrigation-advisor/internal/adapter/kafka"
	"github.com/couchcryptid/irrigation-advisor/internal/advisory"
	"github.com/couchcryptid/irrigation-advisor/internal/config"
	"github.com/couchcryptid/irrigation-advisor/internal/observability"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the advisory HTTP service",
		Long: `Run the advisory HTTP service.

Environment:
  HTTP_ADDR              listen address (default :8080)
  LOG_LEVEL, LOG_FORMAT  debug|info|warn|error, json|text
  WEATHER_BASE_URL       Open-Meteo forecast endpoint
  WEATHER_TIMEZONE       timezone used for daily aggregation (default auto)
  WEATHER_TIMEOUT        per-request weather timeout (default 20s)
  WEATHER_CACHE_TTL      forecast cache lifetime (default 15m)
  WEATHER_CACHE_SIZE     forecast cache entries (default 256)
  FORECAST_DAYS          default horizon, 1-16 (default 7)
  PARAMETER_TABLES_PATH  YAML file replacing the built-in crop, soil, and method tables
  BATCH_MAX_REQUESTS     largest accepted batch (default 50)
  BATCH_CONCURRENCY      concurrent advisories per batch (default 4)
  KAFKA_BROKERS          comma-separated brokers; enables event publishing
  KAFKA_ADVISORY_TOPIC   topic for issued advisories (default irrigation-advisories)
  KAFKA_ENABLED          force publishing on or off
  SHUTDOWN_TIMEOUT       graceful shutdown limit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	tables, err := loadTables(cfg.ParameterTablesPath)
	if err != nil {
		logger.Error("failed to load parameter tables", "path", cfg.ParameterTablesPath, "error", err)
		return err
	}

	weather := newWeatherProvider(cfg, "", metrics, logger)
	logger.Info("weather provider configured",
		"base_url", cfg.WeatherBaseURL,
		"cache_size", cfg.WeatherCacheSize,
		"cache_ttl", cfg.WeatherCacheTTL,
		"timeout", cfg.WeatherTimeout,
	)

	// Event publishing is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var (
		publisher advisory.Publisher
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		metrics.KafkaEnabled.Set(1)
		logger.Info("advisory events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaAdvisoryTopic)
	} else {
		logger.Info("advisory events disabled")
	}

	svc := advisory.NewService(tables, weather, publisher, serviceOptions(cfg), logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, svc, logger)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serveErr:
		if runErr != nil {
			logger.Error("http server error", "error", runErr)
		}
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return runErr
}
