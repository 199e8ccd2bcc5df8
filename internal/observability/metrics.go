package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the monitor.
type Metrics struct {
	FeedPolls      prometheus.Counter
	FeedPollErrors prometheus.Counter
	RecordsDropped prometheus.Counter
	PollerRunning  prometheus.Gauge

	// Ingestion batch metrics.
	LiveFlights       prometheus.Gauge
	SnapshotsAppended prometheus.Counter
	SnapshotBatchSize prometheus.Histogram
	PollDuration      prometheus.Histogram

	// Weather provider metrics.
	WeatherRequests *prometheus.CounterVec // labels: outcome={success,error}
	WeatherCache    *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all monitor metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		FeedPolls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "airtraffic",
			Name:      "feed_polls_total",
			Help:      "Total state-vector feed polls attempted.",
		}),
		FeedPollErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "airtraffic",
			Name:      "feed_poll_errors_total",
			Help:      "Total feed polls that failed.",
		}),
		RecordsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "airtraffic",
			Name:      "records_dropped_total",
			Help:      "State vectors dropped at parse time (missing coordinates).",
		}),
		PollerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "airtraffic",
			Name:      "poller_running",
			Help:      "1 when the feed poller is active, 0 when shut down.",
		}),
		LiveFlights: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "airtraffic",
			Name:      "live_flights",
			Help:      "Flights in the current regional live set.",
		}),
		SnapshotsAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "airtraffic",
			Name:      "snapshots_appended_total",
			Help:      "Snapshot entries appended to the store.",
		}),
		SnapshotBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "airtraffic",
			Name:      "snapshot_batch_size",
			Help:      "Entries appended per poll cycle (after the cap).",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		PollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "airtraffic",
			Name:      "poll_duration_seconds",
			Help:      "Duration of a complete fetch-parse-filter-append cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		WeatherRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airtraffic",
			Name:      "weather_requests_total",
			Help:      "Weather provider requests by outcome.",
		}, []string{"outcome"}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airtraffic",
			Name:      "weather_cache_total",
			Help:      "Weather cache lookups by result.",
		}, []string{"result"}),
	}

	prometheus.MustRegister(
		m.FeedPolls,
		m.FeedPollErrors,
		m.RecordsDropped,
		m.PollerRunning,
		m.LiveFlights,
		m.SnapshotsAppended,
		m.SnapshotBatchSize,
		m.PollDuration,
		m.WeatherRequests,
		m.WeatherCache,
	)

	return m
}

// NewMetricsForTesting creates Metrics with unregistered collectors to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		FeedPolls:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "airtraffic", Name: "feed_polls_total"}),
		FeedPollErrors:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "airtraffic", Name: "feed_poll_errors_total"}),
		RecordsDropped:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "airtraffic", Name: "records_dropped_total"}),
		PollerRunning:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "airtraffic", Name: "poller_running"}),
		LiveFlights:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "airtraffic", Name: "live_flights"}),
		SnapshotsAppended: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "airtraffic", Name: "snapshots_appended_total"}),
		SnapshotBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "airtraffic", Name: "snapshot_batch_size"}),
		PollDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "airtraffic", Name: "poll_duration_seconds"}),
		WeatherRequests:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "airtraffic", Name: "weather_requests_total"}, []string{"outcome"}),
		WeatherCache:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "airtraffic", Name: "weather_cache_total"}, []string{"result"}),
	}
}
