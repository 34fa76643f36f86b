package domain

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Location is a WGS-84 point the weather series is requested for.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Key returns a canonical key for the location rounded to four decimals (~11 m).
func (l Location) Key() string {
	return fmt.Sprintf("%.4f,%.4f", l.Latitude, l.Longitude)
}

// DailyWeatherRecord is one day of weather forcing.
type DailyWeatherRecord struct {
	Date     time.Time `json:"date"`
	ET0Mm    float64   `json:"et0_mm"`
	PrecipMm float64   `json:"precip_mm"`
}

// WeatherProvider supplies a daily series starting today for a location.
type WeatherProvider interface {
	DailySeries(ctx context.Context, loc Location, days int) ([]DailyWeatherRecord, error)
}

// CivilDate truncates t to its calendar date at midnight UTC so dates from
// different time zones compare by day.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the number of calendar days from a to b.
func daysBetween(a, b time.Time) int {
	return int(math.Round(CivilDate(b).Sub(CivilDate(a)).Hours() / 24))
}

// ValidateSeries checks that a series is non-empty, strictly ascending by
// calendar date, and carries finite non-negative values.
func ValidateSeries(series []DailyWeatherRecord) error {
	if len(series) == 0 {
		return ErrEmptySeries
	}
	for i, rec := range series {
		if invalidAmount(rec.ET0Mm) {
			return fmt.Errorf("%w: day %d et0 %v", ErrMalformedSeries, i, rec.ET0Mm)
		}
		if invalidAmount(rec.PrecipMm) {
			return fmt.Errorf("%w: day %d precipitation %v", ErrMalformedSeries, i, rec.PrecipMm)
		}
		if i > 0 && !CivilDate(rec.Date).After(CivilDate(series[i-1].Date)) {
			return fmt.Errorf("%w: day %d (%s) not after %s", ErrMalformedSeries, i,
				rec.Date.Format(time.DateOnly), series[i-1].Date.Format(time.DateOnly))
		}
	}
	return nil
}

func invalidAmount(v float64) bool {
	return v < 0 || math.IsNaN(v) || math.IsInf(v, 0)
}
