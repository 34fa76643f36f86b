package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/irrigation-advisor/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Open-Meteo weather provider.
	WeatherBaseURL   string
	WeatherTimezone  string
	WeatherTimeout   time.Duration
	WeatherCacheTTL  time.Duration
	WeatherCacheSize int
	ForecastDays     int

	// ParameterTablesPath overrides the embedded crop, soil, and method tables.
	ParameterTablesPath string
	Policy              domain.Policy

	BatchMaxRequests int
	BatchConcurrency int

	// Advisory event publishing.
	KafkaBrokers       []string
	KafkaAdvisoryTopic string
	KafkaEnabled       bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	var errs []error
	p := parser{errs: &errs}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		WeatherBaseURL:   sharedcfg.EnvOrDefault("WEATHER_BASE_URL", "https://api.open-meteo.com/v1/forecast"),
		WeatherTimezone:  sharedcfg.EnvOrDefault("WEATHER_TIMEZONE", "auto"),
		WeatherTimeout:   p.duration("WEATHER_TIMEOUT", "20s"),
		WeatherCacheTTL:  p.duration("WEATHER_CACHE_TTL", "15m"),
		WeatherCacheSize: p.positiveInt("WEATHER_CACHE_SIZE", 256),
		ForecastDays:     p.positiveInt("FORECAST_DAYS", 7),

		ParameterTablesPath: os.Getenv("PARAMETER_TABLES_PATH"),
		Policy: domain.Policy{
			Rainfall: domain.RainfallPolicy{
				ThresholdMm:    p.number("RAIN_THRESHOLD_MM", 5),
				ExcessFraction: p.number("RAIN_EXCESS_FRACTION", 0.75),
			},
			LookaheadDays:       p.integer("LOOKAHEAD_DAYS", 2),
			ProximityFraction:   p.number("PROXIMITY_FRACTION", 0.8),
			AveragingWindowDays: p.positiveInt("AVERAGING_WINDOW_DAYS", 7),
			MinAverageDeficitMm: p.number("MIN_AVG_DEFICIT_MM", 0.1),
		},

		BatchMaxRequests: p.positiveInt("BATCH_MAX_REQUESTS", 50),
		BatchConcurrency: p.positiveInt("BATCH_CONCURRENCY", 4),

		KafkaAdvisoryTopic: sharedcfg.EnvOrDefault("KAFKA_ADVISORY_TOPIC", "irrigation-advisories"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}
	cfg.KafkaEnabled = len(cfg.KafkaBrokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		cfg.KafkaEnabled = v == "true"
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if cfg.ForecastDays > 16 {
		return nil, errors.New("FORECAST_DAYS must be between 1 and 16")
	}
	if err := cfg.Policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid advisory policy settings: %w", err)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaAdvisoryTopic == "" {
		return nil, errors.New("KAFKA_ADVISORY_TOPIC is required when Kafka is enabled")
	}

	return cfg, nil
}

// parser reads typed environment values, collecting an error per bad variable.
type parser struct {
	errs *[]error
}

func (p parser) duration(name, def string) time.Duration {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(name, def))
	if err != nil || d <= 0 {
		*p.errs = append(*p.errs, fmt.Errorf("invalid %s: must be a positive duration", name))
		return 0
	}
	return d
}

func (p parser) integer(name string, def int) int {
	s := os.Getenv(name)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		*p.errs = append(*p.errs, fmt.Errorf("invalid %s: must be a non-negative integer", name))
		return def
	}
	return n
}

func (p parser) positiveInt(name string, def int) int {
	n := p.integer(name, def)
	if n == 0 {
		*p.errs = append(*p.errs, fmt.Errorf("invalid %s: must be positive", name))
	}
	return n
}

func (p parser) number(name string, def float64) float64 {
	s := os.Getenv(name)
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Errorf("invalid %s: must be a number", name))
		return def
	}
	return f
}
