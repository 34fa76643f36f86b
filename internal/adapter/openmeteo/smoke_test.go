//go:build openmeteo

package openmeteo

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/irrigation-advisor/internal/domain"
	"github.com/couchcryptid/irrigation-advisor/internal/observability"
)

// These tests hit the real Open-Meteo API.
// Run with: go test -tags=openmeteo ./internal/adapter/openmeteo/ -v -count=1

func smokeClient() *Client {
	return NewClient(DefaultBaseURL, "auto", 20*time.Second, observability.NewMetricsForTesting(), testLogger())
}

func TestSmoke_DailySeries(t *testing.T) {
	series, err := smokeClient().DailySeries(context.Background(), izmir, 7)
	require.NoError(t, err)

	require.NotEmpty(t, series)
	assert.LessOrEqual(t, len(series), 7)
	require.NoError(t, domain.ValidateSeries(series))
	for _, rec := range series {
		assert.Less(t, rec.ET0Mm, 20.0, "ET0 should be a plausible daily value")
	}
}

func TestSmoke_CachedProvider(t *testing.T) {
	cached := NewCachedProvider(smokeClient(), 10, 15*time.Minute, clockwork.NewRealClock(), observability.NewMetricsForTesting())

	s1, err := cached.DailySeries(context.Background(), izmir, 3)
	require.NoError(t, err)
	s2, err := cached.DailySeries(context.Background(), izmir, 3)
	require.NoError(t, err)
	assert.Equal(t, s1, s2)
}
