// Package metrics exposes prometheus collectors for the dashboard server.
// Collectors live on their own registry so tests and multiple servers in one
// process do not collide on the default one.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "housedash"

// Metrics groups the collectors used by the server.
type Metrics struct {
	Registry *prometheus.Registry

	// HTTPRequests counts requests by route pattern, method and status code.
	HTTPRequests *prometheus.CounterVec
	// HTTPDuration tracks handler latency in seconds by route pattern.
	HTTPDuration *prometheus.HistogramVec
	// RenderDuration tracks chart rendering time by chart id and format.
	RenderDuration *prometheus.HistogramVec
	// QueryErrors counts rejected selections by chart id and reason.
	QueryErrors *prometheus.CounterVec

	DatasetRows    prometheus.Gauge
	DatasetColumns *prometheus.GaugeVec
	Sessions       prometheus.Gauge
	SessionsSwept  prometheus.Counter
}

// New registers all collectors, plus the Go runtime and process collectors,
// on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests handled",
		}, []string{"route", "method", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP handler latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		RenderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chart_render_duration_seconds",
			Help:      "Time spent querying and rendering a chart",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"chart", "format"}),
		QueryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_errors_total",
			Help:      "Chart requests rejected before rendering",
		}, []string{"chart", "reason"}),
		DatasetRows: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Rows in the loaded dataset",
		}),
		DatasetColumns: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_columns",
			Help:      "Columns in the loaded dataset by kind (categorical, numerical, dropped)",
		}, []string{"kind"}),
		Sessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Dashboard sessions held in memory",
		}),
		SessionsSwept: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_expired_total",
			Help:      "Sessions removed by the idle sweeper",
		}),
	}
}

// ObserveDataset records the dataset shape.
func (m *Metrics) ObserveDataset(rows, categorical, numerical, dropped int) {
	m.DatasetRows.Set(float64(rows))
	m.DatasetColumns.WithLabelValues("categorical").Set(float64(categorical))
	m.DatasetColumns.WithLabelValues("numerical").Set(float64(numerical))
	m.DatasetColumns.WithLabelValues("dropped").Set(float64(dropped))
}

// ObserveRender records one chart render.
func (m *Metrics) ObserveRender(chart, format string, d time.Duration) {
	m.RenderDuration.WithLabelValues(chart, format).Observe(d.Seconds())
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
