package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "saju_coach"

// Metrics exposes Prometheus collectors for chat, chart and HTTP activity.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	chatRequests        *prometheus.CounterVec
	streamDuration      *prometheus.HistogramVec
	postProcessFailures *prometheus.CounterVec
	chartComputations   *prometheus.CounterVec
	gapFallbacks        *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
}

// MustNewMetrics constructs a Metrics instance using the provided registerer.
// Tests pass a fresh prometheus.NewRegistry(); registration errors panic.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		chatRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "chat",
				Name:      "requests_total",
				Help:      "Chat turns by outcome.",
			},
			[]string{"outcome"},
		),
		streamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "chat",
				Name:      "stream_duration_seconds",
				Help:      "Time from first model call to the end of the streamed reply.",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
			},
			[]string{"status"},
		),
		postProcessFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "chat",
				Name:      "postprocess_failures_total",
				Help:      "Best-effort post-processing steps that failed after a reply was delivered.",
			},
			[]string{"stage"},
		),
		chartComputations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "chart",
				Name:      "computations_total",
				Help:      "Chart and neural-profile computations by result.",
			},
			[]string{"result"},
		),
		gapFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "gap",
				Name:      "fallbacks_total",
				Help:      "Gap scores that fell back to the neutral result.",
			},
			[]string{"reason"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by method and status code.",
			},
			[]string{"method", "code"},
		),
	}

	reg.MustRegister(
		m.chatRequests,
		m.streamDuration,
		m.postProcessFailures,
		m.chartComputations,
		m.gapFallbacks,
		m.httpRequests,
	)
	return m
}

// IncChatRequest counts a chat turn with the given outcome (ok, error, unavailable).
func (m *Metrics) IncChatRequest(outcome string) {
	if m == nil {
		return
	}
	m.chatRequests.WithLabelValues(outcome).Inc()
}

// ObserveStream records how long a streamed reply took.
func (m *Metrics) ObserveStream(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.streamDuration.WithLabelValues(status).Observe(d.Seconds())
}

// IncPostProcessFailure counts a failed post-processing stage.
func (m *Metrics) IncPostProcessFailure(stage string) {
	if m == nil {
		return
	}
	m.postProcessFailures.WithLabelValues(stage).Inc()
}

// IncChartComputation counts a chart computation with its result.
func (m *Metrics) IncChartComputation(result string) {
	if m == nil {
		return
	}
	m.chartComputations.WithLabelValues(result).Inc()
}

// IncGapFallback counts a gap score that used the fallback.
func (m *Metrics) IncGapFallback(reason string) {
	if m == nil || reason == "" {
		return
	}
	m.gapFallbacks.WithLabelValues(reason).Inc()
}

// IncHTTPRequest counts a served HTTP request.
func (m *Metrics) IncHTTPRequest(method string, code int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, statusLabel(code)).Inc()
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
