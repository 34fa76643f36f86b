package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/irrigation-advisor/internal/adapter/openmeteo"
	"github.com/couchcryptid/irrigation-advisor/internal/advisory"
	"github.com/couchcryptid/irrigation-advisor/internal/config"
	"github.com/couchcryptid/irrigation-advisor/internal/domain"
	"github.com/couchcryptid/irrigation-advisor/internal/observability"
)

// loadTables returns the embedded parameter tables unless path names an
// override document.
func loadTables(path string) (*domain.Tables, error) {
	if path == "" {
		return domain.DefaultTables()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read parameter tables: %w", err)
	}
	return domain.LoadTables(data)
}

// newWeatherProvider returns a file-backed provider when weatherFile is set,
// otherwise the Open-Meteo client behind the TTL cache.
func newWeatherProvider(cfg *config.Config, weatherFile string, metrics *observability.Metrics, logger *slog.Logger) domain.WeatherProvider {
	if weatherFile != "" {
		return openmeteo.NewFileProvider(weatherFile)
	}
	client := openmeteo.NewClient(cfg.WeatherBaseURL, cfg.WeatherTimezone, cfg.WeatherTimeout, metrics, logger)
	return openmeteo.NewCachedProvider(client, cfg.WeatherCacheSize, cfg.WeatherCacheTTL, clockwork.NewRealClock(), metrics)
}

func serviceOptions(cfg *config.Config) advisory.Options {
	return advisory.Options{
		Policy:           cfg.Policy,
		HorizonDays:      cfg.ForecastDays,
		FetchTimeout:     cfg.WeatherTimeout,
		MaxBatchSize:     cfg.BatchMaxRequests,
		BatchConcurrency: cfg.BatchConcurrency,
	}
}
