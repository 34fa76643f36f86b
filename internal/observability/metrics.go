package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "irrigation"

// Metrics holds the Prometheus counters, histograms, and gauges for the advisory service.
type Metrics struct {
	AdvisoriesIssued *prometheus.CounterVec // labels: decision={not_required,optional,required}
	AdvisoryErrors   *prometheus.CounterVec // labels: kind={invalid_request,configuration,data_fetch,timeout,internal}
	BatchSize        prometheus.Histogram

	// Weather provider metrics.
	WeatherFetches       *prometheus.CounterVec // labels: outcome={success,error,malformed}
	WeatherFetchDuration prometheus.Histogram
	WeatherCache         *prometheus.CounterVec // labels: result={hit,miss}

	// Advisory event publishing.
	EventsPublished prometheus.Counter
	EventsFailed    prometheus.Counter
	KafkaEnabled    prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.AdvisoriesIssued,
		m.AdvisoryErrors,
		m.BatchSize,
		m.WeatherFetches,
		m.WeatherFetchDuration,
		m.WeatherCache,
		m.EventsPublished,
		m.EventsFailed,
		m.KafkaEnabled,
	)
	return m
}

// NewUnregisteredMetrics creates collectors that are never exposed. One-shot
// CLI commands use it.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AdvisoriesIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advisories_issued_total",
			Help:      "Advisories computed, by decision.",
		}, []string{"decision"}),
		AdvisoryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advisory_errors_total",
			Help:      "Advisory requests that failed, by error kind.",
		}, []string{"kind"}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of requests per batch advisory call.",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 40, 50},
		}),
		WeatherFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_fetches_total",
			Help:      "Weather provider requests by outcome.",
		}, []string{"outcome"}),
		WeatherFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "weather_fetch_duration_seconds",
			Help:      "Weather provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_cache_total",
			Help:      "Weather cache lookups by result.",
		}, []string{"result"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advisory_events_published_total",
			Help:      "Advisory events written to Kafka.",
		}),
		EventsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advisory_events_failed_total",
			Help:      "Advisory events that could not be written to Kafka.",
		}),
		KafkaEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "kafka_enabled",
			Help:      "1 when advisory events are published to Kafka, 0 otherwise.",
		}),
	}
}
