package advisory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/irrigation-advisor/internal/domain"
	"github.com/couchcryptid/irrigation-advisor/internal/observability"
)

// Publisher delivers issued advisories to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event domain.AdvisoryEvent) error
}

// Options tunes the service. Zero values fall back to defaults.
type Options struct {
	Policy           domain.Policy
	HorizonDays      int
	FetchTimeout     time.Duration
	MaxBatchSize     int
	BatchConcurrency int
	Clock            clockwork.Clock
}

func (o Options) withDefaults() Options {
	if o.Policy == (domain.Policy{}) {
		o.Policy = domain.DefaultPolicy()
	}
	if o.HorizonDays <= 0 {
		o.HorizonDays = 7
	}
	if o.MaxBatchSize <= 0 {
		o.MaxBatchSize = 50
	}
	if o.BatchConcurrency <= 0 {
		o.BatchConcurrency = 1
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	return o
}

// Service resolves requests, fetches weather, and runs the water balance.
type Service struct {
	tables    *domain.Tables
	weather   domain.WeatherProvider
	publisher Publisher
	opts      Options
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewService creates an advisory service. publisher may be nil when events
// are not published.
func NewService(tables *domain.Tables, weather domain.WeatherProvider, publisher Publisher, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		tables:    tables,
		weather:   weather,
		publisher: publisher,
		opts:      opts.withDefaults(),
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once parameter tables and a weather provider are
// configured.
func (s *Service) CheckReadiness(_ context.Context) error {
	if s.tables == nil {
		return errors.New("parameter tables not loaded")
	}
	if s.weather == nil {
		return errors.New("weather provider not configured")
	}
	return nil
}

// Parameters returns the selectable crops, stages, soils, and methods.
func (s *Service) Parameters() domain.Catalog {
	return s.tables.Catalog()
}

// Advise computes one advisory. Configuration and fetch errors abort the
// request; a failed publish is logged and counted but does not.
func (s *Service) Advise(ctx context.Context, req Request) (domain.AdvisoryEvent, error) {
	event, err := s.advise(ctx, req)
	if err != nil {
		kind := Classify(err)
		s.metrics.AdvisoryErrors.WithLabelValues(string(kind)).Inc()
		s.logger.Warn("advisory failed", "kind", kind, "crop", req.Crop, "location", req.Location().Key(), "error", err)
		return domain.AdvisoryEvent{}, err
	}

	s.metrics.AdvisoriesIssued.WithLabelValues(string(event.Advisory.Decision)).Inc()
	s.logger.Info("advisory issued",
		"id", event.ID,
		"location", event.Location.Key(),
		"crop", event.CropID,
		"decision", event.Advisory.Decision,
		"depletion_mm", event.Advisory.Depletion.Mm,
		"raw_mm", event.Advisory.RAWMm,
	)
	s.publish(ctx, event)
	return event, nil
}

func (s *Service) advise(ctx context.Context, req Request) (domain.AdvisoryEvent, error) {
	if err := req.Validate(); err != nil {
		return domain.AdvisoryEvent{}, err
	}
	in, err := req.resolve(s.tables)
	if err != nil {
		return domain.AdvisoryEvent{}, err
	}

	horizon := req.HorizonDays
	if horizon == 0 {
		horizon = s.opts.HorizonDays
	}
	loc := req.Location()

	series, err := s.fetch(ctx, loc, horizon)
	if err != nil {
		return domain.AdvisoryEvent{}, err
	}

	adv, err := domain.ComputeAdvisory(in, series, s.opts.Policy)
	if err != nil {
		return domain.AdvisoryEvent{}, fmt.Errorf("compute advisory: %w", err)
	}

	return domain.AdvisoryEvent{
		ID:              uuid.NewString(),
		IssuedAt:        s.opts.Clock.Now().UTC(),
		Location:        loc,
		CropID:          in.Crop.ID,
		Stage:           in.Stage,
		SoilID:          in.Soil.ID,
		MethodID:        in.Method.ID,
		RootDepthMeters: in.RootDepthMeters,
		LastIrrigation:  in.LastIrrigation,
		HorizonDays:     horizon,
		Advisory:        adv,
	}, nil
}

// fetch bounds the weather call by FetchTimeout. Untyped provider failures
// and unusable series are wrapped so callers always see a
// *domain.DataFetchError.
func (s *Service) fetch(ctx context.Context, loc domain.Location, days int) ([]domain.DailyWeatherRecord, error) {
	if s.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.FetchTimeout)
		defer cancel()
	}

	series, err := s.weather.DailySeries(ctx, loc, days)
	if err == nil {
		err = domain.ValidateSeries(series)
	}
	if err == nil {
		return series, nil
	}
	var fetchErr *domain.DataFetchError
	if errors.As(err, &fetchErr) {
		return nil, err
	}
	return nil, &domain.DataFetchError{Provider: "weather", Op: "daily series", Err: err}
}

func (s *Service) publish(ctx context.Context, event domain.AdvisoryEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.EventsFailed.Inc()
		s.logger.Error("publish advisory event", "id", event.ID, "error", err)
		return
	}
	s.metrics.EventsPublished.Inc()
}
