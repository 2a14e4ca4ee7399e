package amm

import (
	"context"
	"time"
)

// Clock supplies the execution time deadlines are checked against.
type Clock interface {
	Now(ctx context.Context) (time.Time, error)
}

// ClockFunc adapts a function to Clock.
type ClockFunc func(ctx context.Context) (time.Time, error)

func (f ClockFunc) Now(ctx context.Context) (time.Time, error) {
	return f(ctx)
}

// SystemClock reads the local wall clock.
type SystemClock struct{}

func (SystemClock) Now(context.Context) (time.Time, error) {
	return time.Now().UTC(), nil
}

// FixedClock always reports t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func(context.Context) (time.Time, error) {
		return t, nil
	})
}
