package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/irrigation-advisor/internal/domain"
	"github.com/couchcryptid/irrigation-advisor/internal/observability"
)

const (
	providerName = "open-meteo"

	// DefaultBaseURL is the public Open-Meteo forecast endpoint.
	DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

	// MaxForecastDays is the longest horizon the forecast API serves.
	MaxForecastDays = 16

	dailyVariables = "et0_fao_evapotranspiration,precipitation_sum"
)

// Client implements domain.WeatherProvider using the Open-Meteo forecast API.
type Client struct {
	baseURL    string
	timezone   string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo client. timezone is passed through to the
// API and decides which calendar day counts as today; "auto" uses the
// location's own zone.
func NewClient(baseURL, timezone string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:  baseURL,
		timezone: timezone,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// DailySeries fetches daily reference evapotranspiration and precipitation
// starting today. The series may be shorter than days when the provider has
// no values for the last days of the horizon.
func (c *Client) DailySeries(ctx context.Context, loc domain.Location, days int) ([]domain.DailyWeatherRecord, error) {
	if days < 1 || days > MaxForecastDays {
		return nil, fmt.Errorf("forecast days %d outside 1-%d", days, MaxForecastDays)
	}

	params := url.Values{
		"latitude":      {strconv.FormatFloat(loc.Latitude, 'f', 4, 64)},
		"longitude":     {strconv.FormatFloat(loc.Longitude, 'f', 4, 64)},
		"daily":         {dailyVariables},
		"forecast_days": {strconv.Itoa(days)},
		"timezone":      {c.timezone},
	}

	start := time.Now()
	series, err := c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	c.metrics.WeatherFetchDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		c.metrics.WeatherFetches.WithLabelValues("success").Inc()
	case errors.Is(err, domain.ErrMalformedSeries), errors.Is(err, domain.ErrEmptySeries):
		c.metrics.WeatherFetches.WithLabelValues("malformed").Inc()
	default:
		c.metrics.WeatherFetches.WithLabelValues("error").Inc()
	}
	if err != nil {
		c.logger.Warn("weather fetch failed", "location", loc.Key(), "days", days, "error", err)
		return nil, err
	}

	if len(series) < days {
		c.logger.Debug("weather series truncated", "location", loc.Key(), "requested", days, "received", len(series))
	}
	return series, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]domain.DailyWeatherRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fetchError(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr forecastResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Reason != "" {
			return nil, fetchError(resp.StatusCode, errors.New(apiErr.Reason))
		}
		return nil, fetchError(resp.StatusCode, fmt.Errorf("unexpected response: %s", body))
	}

	var fr forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return nil, fetchError(0, fmt.Errorf("%w: decode response: %w", domain.ErrMalformedSeries, err))
	}
	if fr.Error {
		return nil, fetchError(0, errors.New(fr.Reason))
	}

	series, err := fr.Daily.records()
	if err != nil {
		return nil, fetchError(0, err)
	}
	return series, nil
}

func fetchError(status int, err error) *domain.DataFetchError {
	return &domain.DataFetchError{Provider: providerName, Op: "forecast", StatusCode: status, Err: err}
}
