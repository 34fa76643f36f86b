package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testToday = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return testToday.AddDate(0, 0, offset)
}

func series(et0, precip []float64) []DailyWeatherRecord {
	out := make([]DailyWeatherRecord, len(et0))
	for i := range et0 {
		out[i] = DailyWeatherRecord{Date: day(i), ET0Mm: et0[i], PrecipMm: precip[i]}
	}
	return out
}

func TestValidateSeries(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, ValidateSeries(series([]float64{4, 5}, []float64{0, 1})))
	})

	t.Run("empty", func(t *testing.T) {
		assert.ErrorIs(t, ValidateSeries(nil), ErrEmptySeries)
	})

	t.Run("negative et0", func(t *testing.T) {
		err := ValidateSeries(series([]float64{4, -1}, []float64{0, 0}))
		assert.ErrorIs(t, err, ErrMalformedSeries)
	})

	t.Run("NaN precipitation", func(t *testing.T) {
		err := ValidateSeries(series([]float64{4}, []float64{math.NaN()}))
		assert.ErrorIs(t, err, ErrMalformedSeries)
	})

	t.Run("repeated date", func(t *testing.T) {
		s := series([]float64{4, 5}, []float64{0, 0})
		s[1].Date = s[0].Date.Add(3 * time.Hour)
		assert.ErrorIs(t, ValidateSeries(s), ErrMalformedSeries)
	})

	t.Run("descending dates", func(t *testing.T) {
		s := series([]float64{4, 5}, []float64{0, 0})
		s[0], s[1] = s[1], s[0]
		assert.ErrorIs(t, ValidateSeries(s), ErrMalformedSeries)
	})
}

func TestCivilDate(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	got := CivilDate(time.Date(2025, 6, 10, 23, 30, 0, 0, loc))
	assert.Equal(t, testToday, got)
}

func TestLocation_Key(t *testing.T) {
	assert.Equal(t, "38.4237,27.1428", Location{Latitude: 38.42371, Longitude: 27.14283}.Key())
}
