// Package retry runs an operation with exponential backoff.
package retry

import (
	"context"
	"time"
)

// Policy bounds the retries of one call.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	// Retryable reports whether err is worth another attempt. Nil retries everything.
	Retryable func(error) bool
}

// Do calls fn until it succeeds, returns a non-retryable error, exhausts the
// policy or ctx is done. The delay doubles after every failed attempt.
func Do(ctx context.Context, p Policy, fn func(context.Context) error) error {
	maxRetries := p.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	delay := p.BaseDelay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries {
			return err
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}
}
