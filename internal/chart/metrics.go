package chart

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lipohub/tg-planner-bot/internal/domain"
)

// Metrics counts renders by outcome and times them.
type Metrics struct {
	renders  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	queued   prometheus.Gauge
}

// NewMetrics registers the chart metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planbot",
			Subsystem: "chart",
			Name:      "renders_total",
			Help:      "Chart renders by graph type and outcome.",
		}, []string{"graph", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "planbot",
			Subsystem: "chart",
			Name:      "render_duration_seconds",
			Help:      "Time spent drawing and encoding a chart.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		}, []string{"graph"}),
		queued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "planbot",
			Subsystem: "chart",
			Name:      "pool_waiting",
			Help:      "Renders waiting for a pool slot.",
		}),
	}
	reg.MustRegister(m.renders, m.duration, m.queued)
	return m
}

func (m *Metrics) observe(g domain.GraphType, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(string(g), status).Inc()
	m.duration.WithLabelValues(string(g)).Observe(d.Seconds())
}

func (m *Metrics) waiting(delta float64) {
	if m == nil {
		return
	}
	m.queued.Add(delta)
}
