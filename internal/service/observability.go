package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// UseCaseEvent describes one finished service call.
type UseCaseEvent struct {
	Name      string
	StartedAt time.Time
	Duration  time.Duration
	Err       error
	Fields    map[string]any
}

// Success reports whether the call returned without error.
func (e UseCaseEvent) Success() bool { return e.Err == nil }

// UseCaseObserver receives use-case execution events.
type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

// NoopUseCaseObserver ignores all events.
type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

// MultiUseCaseObserver fans each event out in order.
type MultiUseCaseObserver []UseCaseObserver

func (m MultiUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	for _, o := range m {
		if o != nil {
			o.ObserveUseCase(ctx, event)
		}
	}
}

type logUseCaseObserver struct {
	logger *slog.Logger
}

// NewLogUseCaseObserver reports use cases through logger: info on success,
// error otherwise.
func NewLogUseCaseObserver(logger *slog.Logger) UseCaseObserver {
	if logger == nil {
		return NoopUseCaseObserver{}
	}
	return &logUseCaseObserver{logger: logger.With("component", "service")}
}

func (o *logUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	level := slog.LevelInfo
	attrs := []slog.Attr{
		slog.String("use_case", event.Name),
		slog.Int64("duration_ms", event.Duration.Milliseconds()),
		slog.Bool("success", event.Success()),
	}
	for k, v := range event.Fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	if event.Err != nil {
		level = slog.LevelError
		attrs = append(attrs, slog.String("error", event.Err.Error()))
	}
	o.logger.LogAttrs(ctx, level, "use case finished", attrs...)
}

type promUseCaseObserver struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPrometheusUseCaseObserver counts calls and times them per use case.
func NewPrometheusUseCaseObserver(reg prometheus.Registerer) UseCaseObserver {
	o := &promUseCaseObserver{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planbot",
			Subsystem: "service",
			Name:      "use_cases_total",
			Help:      "Service calls by use case and outcome.",
		}, []string{"use_case", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "planbot",
			Subsystem: "service",
			Name:      "use_case_duration_seconds",
			Help:      "Service call latency, including the reasoning call.",
			Buckets:   []float64{0.05, 0.25, 1, 5, 15, 60, 180, 600},
		}, []string{"use_case"}),
	}
	reg.MustRegister(o.calls, o.duration)
	return o
}

func (o *promUseCaseObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	outcome := "ok"
	if event.Err != nil {
		outcome = "error"
	}
	o.calls.WithLabelValues(event.Name, outcome).Inc()
	o.duration.WithLabelValues(event.Name).Observe(event.Duration.Seconds())
}

func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	var live MultiUseCaseObserver
	for _, obs := range observers {
		if obs != nil {
			live = append(live, obs)
		}
	}
	switch len(live) {
	case 0:
		return NoopUseCaseObserver{}
	case 1:
		return live[0]
	}
	return live
}

// observe reports a finished use case; defer it with a pointer to the
// named error result.
func observe(ctx context.Context, obs UseCaseObserver, name string, startedAt time.Time, fields map[string]any, err *error) {
	var e error
	if err != nil {
		e = *err
	}
	obs.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Err:       e,
		Fields:    fields,
	})
}
