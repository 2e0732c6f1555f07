package llm

import (
	"context"
	"log/slog"
)

// CallEvent records metadata about a single Generate invocation.
type CallEvent struct {
	Model     string
	LatencyMs int64
	Attempts  int
	Success   bool
	ErrorCode string
}

// RetryEvent records a failed attempt that will be retried.
type RetryEvent struct {
	Model   string
	Attempt int
	Cause   FailureKind
	DelayMs int64
	Err     error
}

// Observer receives events about reasoning calls for logging and metrics.
type Observer interface {
	OnRetry(event RetryEvent)
	OnCallComplete(event CallEvent)
}

// LogObserver writes call events to a structured logger.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an Observer that logs through logger.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger.With("component", "llm")}
}

func (o *LogObserver) OnRetry(event RetryEvent) {
	o.logger.Warn("llm_retry",
		"model", event.Model,
		"attempt", event.Attempt,
		"cause", string(event.Cause),
		"delay_ms", event.DelayMs,
		"error", event.Err,
	)
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	status := "ok"
	if !event.Success {
		status = "err:" + event.ErrorCode
	}
	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelError
	}
	o.logger.Log(context.Background(), level, "llm_call",
		"model", event.Model,
		"latency_ms", event.LatencyMs,
		"attempts", event.Attempts,
		"status", status,
	)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnRetry(RetryEvent)       {}
func (NoopObserver) OnCallComplete(CallEvent) {}

// MultiObserver fans events out to several observers.
type MultiObserver []Observer

func (m MultiObserver) OnRetry(event RetryEvent) {
	for _, o := range m {
		o.OnRetry(event)
	}
}

func (m MultiObserver) OnCallComplete(event CallEvent) {
	for _, o := range m {
		o.OnCallComplete(event)
	}
}
