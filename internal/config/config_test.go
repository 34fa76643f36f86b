package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "https://api.open-meteo.com/v1/forecast", cfg.WeatherBaseURL)
	assert.Equal(t, "auto", cfg.WeatherTimezone)
	assert.Equal(t, 20*time.Second, cfg.WeatherTimeout)
	assert.Equal(t, 15*time.Minute, cfg.WeatherCacheTTL)
	assert.Equal(t, 256, cfg.WeatherCacheSize)
	assert.Equal(t, 7, cfg.ForecastDays)
	assert.Empty(t, cfg.ParameterTablesPath)
	assert.InDelta(t, 5.0, cfg.Policy.Rainfall.ThresholdMm, 1e-9)
	assert.InDelta(t, 0.75, cfg.Policy.Rainfall.ExcessFraction, 1e-9)
	assert.Equal(t, 2, cfg.Policy.LookaheadDays)
	assert.InDelta(t, 0.8, cfg.Policy.ProximityFraction, 1e-9)
	assert.Equal(t, 7, cfg.Policy.AveragingWindowDays)
	assert.InDelta(t, 0.1, cfg.Policy.MinAverageDeficitMm, 1e-9)
	assert.Equal(t, 50, cfg.BatchMaxRequests)
	assert.Equal(t, 4, cfg.BatchConcurrency)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "irrigation-advisories", cfg.KafkaAdvisoryTopic)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("WEATHER_BASE_URL", "http://weather.local/v1/forecast")
	t.Setenv("WEATHER_TIMEZONE", "Europe/Istanbul")
	t.Setenv("WEATHER_TIMEOUT", "5s")
	t.Setenv("WEATHER_CACHE_TTL", "1h")
	t.Setenv("WEATHER_CACHE_SIZE", "32")
	t.Setenv("FORECAST_DAYS", "14")
	t.Setenv("PARAMETER_TABLES_PATH", "/etc/irrigation/tables.yaml")
	t.Setenv("RAIN_THRESHOLD_MM", "3")
	t.Setenv("RAIN_EXCESS_FRACTION", "0.8")
	t.Setenv("LOOKAHEAD_DAYS", "3")
	t.Setenv("PROXIMITY_FRACTION", "0.9")
	t.Setenv("AVERAGING_WINDOW_DAYS", "5")
	t.Setenv("MIN_AVG_DEFICIT_MM", "0.2")
	t.Setenv("BATCH_MAX_REQUESTS", "10")
	t.Setenv("BATCH_CONCURRENCY", "2")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_ADVISORY_TOPIC", "custom-advisories")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://weather.local/v1/forecast", cfg.WeatherBaseURL)
	assert.Equal(t, "Europe/Istanbul", cfg.WeatherTimezone)
	assert.Equal(t, 5*time.Second, cfg.WeatherTimeout)
	assert.Equal(t, time.Hour, cfg.WeatherCacheTTL)
	assert.Equal(t, 32, cfg.WeatherCacheSize)
	assert.Equal(t, 14, cfg.ForecastDays)
	assert.Equal(t, "/etc/irrigation/tables.yaml", cfg.ParameterTablesPath)
	assert.InDelta(t, 3.0, cfg.Policy.Rainfall.ThresholdMm, 1e-9)
	assert.InDelta(t, 0.8, cfg.Policy.Rainfall.ExcessFraction, 1e-9)
	assert.Equal(t, 3, cfg.Policy.LookaheadDays)
	assert.InDelta(t, 0.9, cfg.Policy.ProximityFraction, 1e-9)
	assert.Equal(t, 5, cfg.Policy.AveragingWindowDays)
	assert.InDelta(t, 0.2, cfg.Policy.MinAverageDeficitMm, 1e-9)
	assert.Equal(t, 10, cfg.BatchMaxRequests)
	assert.Equal(t, 2, cfg.BatchConcurrency)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-advisories", cfg.KafkaAdvisoryTopic)
	assert.True(t, cfg.KafkaEnabled)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"WEATHER_TIMEOUT", "bad"},
		{"WEATHER_TIMEOUT", "-1s"},
		{"WEATHER_CACHE_TTL", "0s"},
		{"WEATHER_CACHE_SIZE", "0"},
		{"WEATHER_CACHE_SIZE", "many"},
		{"FORECAST_DAYS", "-2"},
		{"LOOKAHEAD_DAYS", "two"},
		{"RAIN_THRESHOLD_MM", "wet"},
		{"BATCH_CONCURRENCY", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.name, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.name)
		})
	}
}

func TestLoad_ReportsEveryInvalidVariable(t *testing.T) {
	t.Setenv("WEATHER_TIMEOUT", "bad")
	t.Setenv("BATCH_MAX_REQUESTS", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WEATHER_TIMEOUT")
	assert.Contains(t, err.Error(), "BATCH_MAX_REQUESTS")
}

func TestLoad_ForecastDaysTooLarge(t *testing.T) {
	t.Setenv("FORECAST_DAYS", "17")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FORECAST_DAYS")
}

func TestLoad_PolicyOutOfRange(t *testing.T) {
	t.Setenv("PROXIMITY_FRACTION", "1.5")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "proximity fraction")
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_KafkaBrokersImplyEnabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", testBroker)
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{testBroker}, cfg.KafkaBrokers)
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", testBroker)
	t.Setenv("KAFKA_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}
