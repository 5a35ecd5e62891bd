package service

import (
	"context"
	"time"
)

// Delay simulates processing time before a user-visible action completes.
type Delay time.Duration

// Wait blocks for the delay or until ctx is done.
func (d Delay) Wait(ctx context.Context) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(time.Duration(d))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Delayed runs fn after d. A cancelled ctx aborts before fn runs.
func Delayed[T any](ctx context.Context, d Delay, fn func() (T, error)) (T, error) {
	if err := d.Wait(ctx); err != nil {
		var zero T
		return zero, err
	}
	return fn()
}
