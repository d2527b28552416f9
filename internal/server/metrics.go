package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agbru/fibengine/internal/fibonacci"
)

// Metrics holds the server's Prometheus collectors. Each instance has its
// own registry so servers and tests do not share counters.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	activeRequests  prometheus.Gauge
	requestDuration *prometheus.HistogramVec
	overflowsTotal  *prometheus.CounterVec
	batchSize       prometheus.Histogram
	handler         http.Handler
}

// NewMetrics creates and registers the collectors, plus the Go runtime and
// process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fibengine_requests_total",
			Help: "HTTP requests by endpoint and status code.",
		}, []string{"endpoint", "status"}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fibengine_active_requests",
			Help: "Requests currently being served.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fibengine_request_duration_seconds",
			Help:    "Request latency by endpoint.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 12),
		}, []string{"endpoint"}),
		overflowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fibengine_overflows_total",
			Help: "Requests whose F(n) exceeds 32 bits, by overflow policy.",
		}, []string{"policy"}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fibengine_batch_size",
			Help:    "Number of elements requested per batch.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 11),
		}),
	}
	m.registry.MustRegister(
		m.requestsTotal,
		m.activeRequests,
		m.requestDuration,
		m.overflowsTotal,
		m.batchSize,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
}

func (m *Metrics) IncrementActiveRequests() { m.activeRequests.Inc() }
func (m *Metrics) DecrementActiveRequests() { m.activeRequests.Dec() }

// ObserveRequest records a finished request.
func (m *Metrics) ObserveRequest(endpoint string, status int, d time.Duration) {
	m.requestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ObserveOverflow records a request for an index beyond MaxExactIndex.
func (m *Metrics) ObserveOverflow(policy fibonacci.Policy) {
	m.overflowsTotal.WithLabelValues(policy.String()).Inc()
}

// ObserveBatch records the size of a batch request.
func (m *Metrics) ObserveBatch(count uint32) {
	m.batchSize.Observe(float64(count))
}

// WritePrometheus serves the registry in the text exposition format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}
