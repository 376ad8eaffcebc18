package fetch

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides Prometheus metrics for fetch attempts. A nil *Metrics
// records nothing. It is safe for concurrent use.
type Metrics struct {
	responsesTotal  *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	retriesTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics registers the fetch metrics on registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		responsesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adminrest_responses_total",
				Help: "Total number of HTTP responses received, per attempt",
			},
			[]string{"method", "status_code"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adminrest_network_errors_total",
				Help: "Total number of attempts that failed without a response",
			},
			[]string{"method"},
		),
		retriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adminrest_retries_total",
				Help: "Total number of retry attempts",
			},
			[]string{"method"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "adminrest_attempt_duration_seconds",
				Help:    "Duration of individual HTTP attempts in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
}

// ObserveResponse records a completed attempt.
func (m *Metrics) ObserveResponse(method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.responsesTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// ObserveError records an attempt that produced no response.
func (m *Metrics) ObserveError(method string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(method).Inc()
}

// ObserveRetry records a scheduled retry.
func (m *Metrics) ObserveRetry(method string) {
	if m == nil {
		return
	}
	m.retriesTotal.WithLabelValues(method).Inc()
}
