package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/couchcryptid/irrigation-advisor/internal/domain"
)

// FileProvider serves a saved Open-Meteo forecast response from disk. It
// ignores the location and is meant for offline runs and reproducible
// advisories.
type FileProvider struct {
	path string
}

// NewFileProvider creates a provider reading the response at path.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// DailySeries returns at most days records from the saved response.
func (p *FileProvider) DailySeries(_ context.Context, _ domain.Location, days int) ([]domain.DailyWeatherRecord, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, p.fetchError(err)
	}

	var fr forecastResponse
	if err := json.Unmarshal(data, &fr); err != nil {
		return nil, p.fetchError(fmt.Errorf("%w: decode %s: %w", domain.ErrMalformedSeries, p.path, err))
	}

	series, err := fr.Daily.records()
	if err != nil {
		return nil, p.fetchError(err)
	}
	if days > 0 && len(series) > days {
		series = series[:days]
	}
	return series, nil
}

func (p *FileProvider) fetchError(err error) *domain.DataFetchError {
	return &domain.DataFetchError{Provider: "file", Op: "read", Err: err}
}
