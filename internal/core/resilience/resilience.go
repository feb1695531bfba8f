// Package resilience bounds external calls with a per-attempt timeout and a
// small fixed number of retries.
package resilience

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const defaultInterval = 50 * time.Millisecond

// Policy configures one class of call. Read-only graph and vector calls use
// Retries=1; language-model calls use Retries=0.
type Policy struct {
	Timeout  time.Duration
	Retries  int
	Interval time.Duration
}

// Do runs fn under p. Each attempt gets its own timeout derived from ctx.
// Cancellation of ctx itself is never retried.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	op := func() (T, error) {
		attemptCtx, cancel := ctx, context.CancelFunc(func() {})
		if p.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		}
		defer cancel()

		v, err := fn(attemptCtx)
		if err != nil && ctx.Err() != nil {
			return v, backoff.Permanent(ctx.Err())
		}
		return v, err
	}

	interval := p.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	retries := p.Retries
	if retries < 0 {
		retries = 0
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(interval), uint64(retries)), ctx)
	return backoff.RetryWithData(op, b)
}
