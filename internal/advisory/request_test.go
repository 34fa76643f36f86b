package advisory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/irrigation-advisor/internal/domain"
)

func validRequest() Request {
	return Request{
		Latitude:  38.42,
		Longitude: 27.14,
		Crop:      "wheat",
		Stage:     "mid",
		Soil:      "loam",
		Method:    "drip",
	}
}

func TestRequest_Validate(t *testing.T) {
	require.NoError(t, validRequest().Validate())

	tests := []struct {
		name   string
		mutate func(*Request)
		field  string
	}{
		{"latitude too high", func(r *Request) { r.Latitude = 91 }, "latitude"},
		{"longitude too low", func(r *Request) { r.Longitude = -181 }, "longitude"},
		{"missing crop", func(r *Request) { r.Crop = "" }, "crop"},
		{"missing stage", func(r *Request) { r.Stage = "" }, "stage"},
		{"missing soil", func(r *Request) { r.Soil = "" }, "soil"},
		{"missing method", func(r *Request) { r.Method = "" }, "method"},
		{"negative root depth", func(r *Request) { r.RootDepthMeters = -0.5 }, "root_depth_m"},
		{"root depth too deep", func(r *Request) { r.RootDepthMeters = 6 }, "root_depth_m"},
		{"bad date", func(r *Request) { r.LastIrrigation = "10/06/2025" }, "last_irrigation"},
		{"horizon too long", func(r *Request) { r.HorizonDays = 17 }, "horizon_days"},
		{"negative horizon", func(r *Request) { r.HorizonDays = -1 }, "horizon_days"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			err := req.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRequest)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestRequest_ValidateReportsAllFields(t *testing.T) {
	req := validRequest()
	req.Latitude = 100
	req.Crop = ""

	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latitude: failed lte=90")
	assert.Contains(t, err.Error(), "crop: failed required")
}

func TestRequest_Resolve(t *testing.T) {
	tables, err := domain.DefaultTables()
	require.NoError(t, err)

	t.Run("defaults root depth to crop", func(t *testing.T) {
		in, err := validRequest().resolve(tables)
		require.NoError(t, err)
		assert.Equal(t, "wheat", in.Crop.ID)
		assert.Equal(t, domain.StageMid, in.Stage)
		assert.InDelta(t, 1.0, in.RootDepthMeters, 1e-9)
		assert.Nil(t, in.LastIrrigation)
	})

	t.Run("explicit root depth and last irrigation", func(t *testing.T) {
		req := validRequest()
		req.RootDepthMeters = 0.6
		req.LastIrrigation = "2025-06-07"

		in, err := req.resolve(tables)
		require.NoError(t, err)
		assert.InDelta(t, 0.6, in.RootDepthMeters, 1e-9)
		require.NotNil(t, in.LastIrrigation)
		assert.Equal(t, time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC), *in.LastIrrigation)
	})

	t.Run("unknown keys", func(t *testing.T) {
		for _, tc := range []struct {
			mutate func(*Request)
			kind   domain.ConfigKind
		}{
			{func(r *Request) { r.Crop = "rice" }, domain.KindCrop},
			{func(r *Request) { r.Stage = "flowering" }, domain.KindStage},
			{func(r *Request) { r.Soil = "silt" }, domain.KindSoil},
			{func(r *Request) { r.Method = "flood" }, domain.KindMethod},
		} {
			req := validRequest()
			tc.mutate(&req)
			_, err := req.resolve(tables)
			var cfgErr *domain.ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tc.kind, cfgErr.Kind)
		}
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"invalid request", ErrInvalidRequest, KindInvalidRequest},
		{"batch too large", ErrBatchTooLarge, KindInvalidRequest},
		{"configuration", &domain.ConfigurationError{Kind: domain.KindCrop, Key: "rice"}, KindConfiguration},
		{"fetch", &domain.DataFetchError{Provider: "p", Op: "o", Err: errors.New("boom")}, KindDataFetch},
		{"fetch timeout", &domain.DataFetchError{Provider: "p", Op: "o", Err: context.DeadlineExceeded}, KindTimeout},
		{"other", errors.New("boom"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
