package llm

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// sleepFunc waits d or until ctx is done.
type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// newBackoff yields 2^attempt * unit after attempt 1, 2, ... with no jitter
// and no elapsed-time cap; the attempt budget bounds the loop instead.
func newBackoff(unit time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * unit
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = 1 << 20 * unit
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// BackoffSchedule lists the waits between the given number of attempts.
func BackoffSchedule(unit time.Duration, attempts int) []time.Duration {
	if attempts < 2 {
		return nil
	}
	b := newBackoff(unit)
	out := make([]time.Duration, 0, attempts-1)
	for i := 1; i < attempts; i++ {
		out = append(out, b.NextBackOff())
	}
	return out
}
