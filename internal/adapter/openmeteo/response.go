package openmeteo

import (
	"fmt"
	"time"

	"github.com/couchcryptid/irrigation-advisor/internal/domain"
)

// Open-Meteo forecast API response types.

type forecastResponse struct {
	Daily  daily  `json:"daily"`
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// daily holds parallel arrays. A missing value is null in the JSON.
type daily struct {
	Time          []string   `json:"time"`
	ET0           []*float64 `json:"et0_fao_evapotranspiration"`
	Precipitation []*float64 `json:"precipitation_sum"`
}

// records converts the daily block into a weather series. Days with a null
// value at the end of the horizon are dropped; a null anywhere else makes the
// response unusable because filling it would fabricate weather.
func (d daily) records() ([]domain.DailyWeatherRecord, error) {
	n := len(d.Time)
	if len(d.ET0) != n || len(d.Precipitation) != n {
		return nil, fmt.Errorf("%w: daily arrays differ in length (time %d, et0 %d, precipitation %d)",
			domain.ErrMalformedSeries, n, len(d.ET0), len(d.Precipitation))
	}

	cut := n
	for i := range n {
		missing := d.ET0[i] == nil || d.Precipitation[i] == nil
		switch {
		case missing && cut == n:
			cut = i
		case !missing && cut < n:
			return nil, fmt.Errorf("%w: missing values on %s inside the horizon",
				domain.ErrMalformedSeries, d.Time[cut])
		}
	}
	if cut == 0 && n > 0 {
		return nil, fmt.Errorf("%w: no values for %s", domain.ErrMalformedSeries, d.Time[0])
	}

	out := make([]domain.DailyWeatherRecord, 0, cut)
	for i := range cut {
		date, err := time.Parse(time.DateOnly, d.Time[i])
		if err != nil {
			return nil, fmt.Errorf("%w: day %d: %w", domain.ErrMalformedSeries, i, err)
		}
		out = append(out, domain.DailyWeatherRecord{
			Date:     date,
			ET0Mm:    *d.ET0[i],
			PrecipMm: *d.Precipitation[i],
		})
	}

	if err := domain.ValidateSeries(out); err != nil {
		return nil, err
	}
	return out, nil
}
