package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/turtacn/riskscore360/pkg/constants"
)

// Metrics manages the Prometheus metrics.
type Metrics struct {
	ScoreRequests   *prometheus.CounterVec
	ScoreLatency    *prometheus.HistogramVec
	RiskScore       prometheus.Histogram
	RiskLevels      *prometheus.CounterVec
	ComponentScores *prometheus.HistogramVec
	DecodeWarnings  *prometheus.CounterVec
	BatchSize       prometheus.Histogram
	BatchFailures   prometheus.Counter
	BatchLatency    prometheus.Histogram
	CacheAccess     *prometheus.CounterVec
	EmitRequests    *prometheus.CounterVec
	EmitLatency     *prometheus.HistogramVec

	HTTPRequests       *prometheus.CounterVec
	HTTPLatency        *prometheus.HistogramVec
	HTTPActiveRequests *prometheus.GaugeVec
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	ns := constants.MetricsNamespace

	return &Metrics{
		ScoreRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "score_requests_total",
				Help:      "Total number of scoring invocations.",
			},
			[]string{"source", "result", "error_code"},
		),
		ScoreLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "score_latency_seconds",
				Help:      "Latency of scoring invocations, including caching and emission.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		RiskScore: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "risk_score",
				Help:      "Distribution of normalized composite risk scores.",
				Buckets:   prometheus.LinearBuckets(0, 10, 11),
			},
		),
		RiskLevels: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "risk_level_total",
				Help:      "Total number of reports per composite risk level.",
			},
			[]string{"level"},
		),
		ComponentScores: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "component_score",
				Help:      "Distribution of component risk scores.",
				Buckets:   prometheus.LinearBuckets(0, 5, 9),
			},
			[]string{"component", "severity"},
		),
		DecodeWarnings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "decode_warnings_total",
				Help:      "Total number of malformed document sections scored as absent.",
			},
			[]string{"section"},
		),
		BatchSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "batch_size",
				Help:      "Number of documents per batch request.",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
			},
		),
		BatchFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "batch_item_failures_total",
				Help:      "Total number of batch items that failed to score.",
			},
		),
		BatchLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "batch_latency_seconds",
				Help:      "Latency of batch requests.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		CacheAccess: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "cache_access_total",
				Help:      "Total number of report cache lookups.",
			},
			[]string{"cache", "result"},
		),
		EmitRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "emit_requests_total",
				Help:      "Total number of report emissions per emitter.",
			},
			[]string{"emitter", "result"},
		),
		EmitLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "emit_latency_seconds",
				Help:      "Latency of report emissions per emitter.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"emitter"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests.",
			},
			[]string{"path", "method", "status"},
		),
		HTTPLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "http_request_duration_seconds",
				Help:      "Latency of HTTP requests.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		HTTPActiveRequests: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: ns,
				Name:      "http_active_requests",
				Help:      "Number of in-flight HTTP requests.",
			},
			[]string{"path", "method"},
		),
	}
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// RecordScore records metrics for one scoring invocation.
func (m *Metrics) RecordScore(source string, success bool, duration time.Duration, errorCode string) {
	m.ScoreRequests.WithLabelValues(source, result(success), errorCode).Inc()
	m.ScoreLatency.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordReport records the composite outcome of a report.
func (m *Metrics) RecordReport(riskLevel string, riskScore int) {
	m.RiskLevels.WithLabelValues(riskLevel).Inc()
	m.RiskScore.Observe(float64(riskScore))
}

// RecordComponentScore records one component score.
func (m *Metrics) RecordComponentScore(component, severity string, score int) {
	m.ComponentScores.WithLabelValues(component, severity).Observe(float64(score))
}

// RecordDecodeWarning records a malformed section.
func (m *Metrics) RecordDecodeWarning(section string) {
	m.DecodeWarnings.WithLabelValues(section).Inc()
}

// RecordBatch records one batch request.
func (m *Metrics) RecordBatch(size, failed int, duration time.Duration) {
	m.BatchSize.Observe(float64(size))
	m.BatchFailures.Add(float64(failed))
	m.BatchLatency.Observe(duration.Seconds())
}

// RecordCacheAccess records a cache hit or miss.
func (m *Metrics) RecordCacheAccess(cacheType string, hit bool) {
	label := "miss"
	if hit {
		label = "hit"
	}
	m.CacheAccess.WithLabelValues(cacheType, label).Inc()
}

// RecordEmit records one emitter call.
func (m *Metrics) RecordEmit(emitter string, success bool, duration time.Duration) {
	m.EmitRequests.WithLabelValues(emitter, result(success)).Inc()
	m.EmitLatency.WithLabelValues(emitter).Observe(duration.Seconds())
}

// ActiveRequestsInc increments the in-flight gauge of an endpoint.
func (m *Metrics) ActiveRequestsInc(path, method string) {
	m.HTTPActiveRequests.WithLabelValues(path, method).Inc()
}

// ActiveRequestsDec decrements the in-flight gauge of an endpoint.
func (m *Metrics) ActiveRequestsDec(path, method string) {
	m.HTTPActiveRequests.WithLabelValues(path, method).Dec()
}

// ObserveRequest records a completed HTTP request.
func (m *Metrics) ObserveRequest(path, method, status string, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(path, method, status).Inc()
	m.HTTPLatency.WithLabelValues(path, method).Observe(duration.Seconds())
}
