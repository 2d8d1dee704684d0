// File: internal/retry/retry.go
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/xkilldash9x/automaweb/internal/config"
)

// Classifier reports whether an error is expected to resolve itself if the
// operation is tried again shortly.
type Classifier func(error) bool

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy is a fixed-delay retry policy. There is no backoff and no jitter.
type Policy struct {
	Attempts  int
	Delay     time.Duration
	Retryable Classifier

	// sleep is swapped out in tests.
	sleep SleepFunc
}

// DefaultAttempts and DefaultDelay mirror the browser.retry defaults.
const (
	DefaultAttempts = 3
	DefaultDelay    = time.Second
)

// New builds a Policy. Non-positive attempts fall back to one attempt.
func New(attempts int, delay time.Duration, retryable Classifier) Policy {
	if attempts <= 0 {
		attempts = 1
	}
	return Policy{Attempts: attempts, Delay: delay, Retryable: retryable}
}

// FromConfig builds a Policy from the browser.retry section.
func FromConfig(cfg config.RetryConfig, retryable Classifier) Policy {
	return New(cfg.Attempts, cfg.Delay, retryable)
}

// WithSleep returns a copy of the policy that waits using fn.
func (p Policy) WithSleep(fn SleepFunc) Policy {
	p.sleep = fn
	return p
}

// Do runs op until it succeeds, returns a non-retryable error, or the
// attempts are used up. The last error is returned unchanged unless the
// wait between attempts was cut short, in which case the context error is
// joined to it.
func (p Policy) Do(ctx context.Context, op func(context.Context) error) error {
	_, err := Value(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Value is Do for operations that produce a result. On failure the zero
// value of T is returned alongside the error.
func Value[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = Sleep
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		// Only transient failures earn another attempt.
		if p.Retryable == nil || !p.Retryable(err) {
			return zero, err
		}
		if attempt == attempts {
			break
		}
		if serr := sleep(ctx, p.Delay); serr != nil {
			return zero, errors.Join(lastErr, serr)
		}
	}
	return zero, lastErr
}

// Sleep pauses for d, returning early with ctx.Err() if the context is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
