// Package metrics defines the Prometheus collectors exported by housing-explorer.
//
// Collectors register with the default registry on package init and are exposed by
// the HTTP server on /metrics. CLI runs record into them too; nothing scrapes them
// there, which is harmless.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatasetLoads counts dataset load attempts.
	// Labels: source (file/upload), outcome (ok/cached/not_found/parse_error)
	DatasetLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "housing_dataset_loads_total",
			Help: "Dataset load attempts by source kind and outcome",
		},
		[]string{"source", "outcome"},
	)

	// DatasetRows records the row count of the most recently parsed dataset.
	DatasetRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "housing_dataset_rows",
			Help: "Rows in the most recently parsed dataset",
		},
	)

	// CacheLookups counts memo cache lookups.
	// Labels: cache (dataset/snapshot), result (hit/miss)
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "housing_cache_lookups_total",
			Help: "Memo cache lookups by cache and result",
		},
		[]string{"cache", "result"},
	)

	// PanelDuration tracks how long one panel recomputation takes, in seconds.
	// Labels: panel (overview/explore/statistics/manual)
	PanelDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "housing_panel_duration_seconds",
			Help:    "Panel recomputation latency",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
		[]string{"panel"},
	)

	// PanelErrors counts panels that degraded to a user-visible warning.
	PanelErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "housing_panel_errors_total",
			Help: "Panels rendered with an error instead of content",
		},
		[]string{"panel"},
	)

	// HTTPRequests counts API requests.
	// Labels: route (chi route pattern), method, code
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "housing_http_requests_total",
			Help: "HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "code"},
	)

	// HTTPLatency tracks API request latency in seconds.
	HTTPLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "housing_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// ActiveSessions tracks open dashboard sessions.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "housing_active_sessions",
			Help: "Open dashboard sessions",
		},
	)
)

// Timer measures an operation's duration.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObservePanel records the elapsed time for panel and returns it.
func (t *Timer) ObservePanel(panel string) time.Duration {
	d := time.Since(t.start)
	PanelDuration.WithLabelValues(panel).Observe(d.Seconds())
	return d
}

// Elapsed returns the time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
