package llm

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusObserver exports call counts, latency and retries.
type PrometheusObserver struct {
	calls    *prometheus.CounterVec
	retries  *prometheus.CounterVec
	latency  prometheus.Histogram
	attempts prometheus.Histogram
}

// NewPrometheusObserver registers the reasoning metrics on reg.
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	o := &PrometheusObserver{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planbot",
			Subsystem: "llm",
			Name:      "calls_total",
			Help:      "Reasoning calls by final status.",
		}, []string{"status"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planbot",
			Subsystem: "llm",
			Name:      "retries_total",
			Help:      "Retried attempts by failure cause.",
		}, []string{"cause"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "planbot",
			Subsystem: "llm",
			Name:      "call_duration_seconds",
			Help:      "Wall time of a reasoning call including retries.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		}),
		attempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "planbot",
			Subsystem: "llm",
			Name:      "call_attempts",
			Help:      "Attempts used per reasoning call.",
			Buckets:   []float64{1, 2, 3, 4, 5},
		}),
	}
	reg.MustRegister(o.calls, o.retries, o.latency, o.attempts)
	return o
}

func (o *PrometheusObserver) OnRetry(event RetryEvent) {
	o.retries.WithLabelValues(string(event.Cause)).Inc()
}

func (o *PrometheusObserver) OnCallComplete(event CallEvent) {
	status := "ok"
	if !event.Success {
		status = event.ErrorCode
	}
	o.calls.WithLabelValues(status).Inc()
	o.latency.Observe(float64(event.LatencyMs) / 1000)
	o.attempts.Observe(float64(event.Attempts))
}
