package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Policy describes how an external call is retried: total attempts and
// an exponential backoff with a floor and a cap. The same policy wraps
// every Drive, Sheets and Vertex AI call.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Default returns the policy applied uniformly across the pipeline:
// 3 attempts, backoff starting at 4s and capped at 10s.
func Default() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   4 * time.Second,
		MaxDelay:    10 * time.Second,
	}
}

// Do runs fn until it succeeds or the policy is exhausted. The label
// identifies the call in logs. Backoff sleeps block the caller; the
// pipeline is sequential so that is the intended behavior.
func (p Policy) Do(ctx context.Context, label string, fn func() error) error {
	delay := p.BaseDelay
	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == p.MaxAttempts {
			break
		}
		slog.Warn("Call failed, retrying.",
			"call", label,
			"attempt", attempt,
			"delay", delay,
			"error", err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
		if delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", label, p.MaxAttempts, err)
}
