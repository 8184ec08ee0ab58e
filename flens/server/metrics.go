package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ZanzyTHEbar/file-lens/flens/aggregate"
	"github.com/ZanzyTHEbar/file-lens/flens/index"
)

// Metrics owns a dedicated prometheus registry so several servers (or tests)
// never collide on the default one.
type Metrics struct {
	registry *prometheus.Registry

	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	inFlight     prometheus.Gauge
	responseSize *prometheus.HistogramVec

	indexedFiles prometheus.Gauge
	skippedFiles prometheus.Gauge
	reindex      prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: `flens_http_requests_total`,
			Help: `A counter of total requests`,
		}, []string{`code`, `method`}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    `flens_http_request_duration_seconds`,
			Help:    `A histogram of request duration`,
			Buckets: []float64{.005, .025, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{`code`, `method`}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: `flens_http_in_flight`,
			Help: `A gauge of requests currently in flight`,
		}),
		responseSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    `flens_http_response_size_bytes`,
			Help:    `A histogram of response size`,
			Buckets: prometheus.ExponentialBuckets(200, 4, 8),
		}, []string{}),
		indexedFiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: `flens_indexed_files`,
			Help: `Number of files in the current snapshot`,
		}),
		skippedFiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: `flens_skipped_files`,
			Help: `Number of files left out of the current snapshot`,
		}),
		reindex: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    `flens_reindex_seconds`,
			Help:    `A histogram of index build duration`,
			Buckets: prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.inFlight,
		m.responseSize,
		m.indexedFiles,
		m.skippedFiles,
		m.reindex,
	)
	return m
}

// Instrument wraps next with request counters and histograms.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerInFlight(m.inFlight,
		promhttp.InstrumentHandlerDuration(m.duration,
			promhttp.InstrumentHandlerCounter(m.requests,
				promhttp.InstrumentHandlerResponseSize(m.responseSize, next),
			)))
}

// ObserveReindex records a published snapshot. It matches service.ReindexHook.
func (m *Metrics) ObserveReindex(idx *index.Index, elapsed time.Duration) {
	m.indexedFiles.Set(float64(idx.Len()))
	m.skippedFiles.Set(float64(len(aggregate.ErrorStrings(idx.Skipped()))))
	m.reindex.Observe(elapsed.Seconds())
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
