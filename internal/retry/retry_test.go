// File: internal/retry/retry_test.go
package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/automaweb/internal/config"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	errTransient = errors.New("element is obstructed")
	errFatal     = errors.New("no such element")
)

func isTransient(err error) bool { return errors.Is(err, errTransient) }

// recordingSleep captures requested delays without actually waiting.
type recordingSleep struct {
	delays []time.Duration
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func TestPolicyDo(t *testing.T) {
	t.Run("success on first attempt does not sleep", func(t *testing.T) {
		rec := &recordingSleep{}
		p := New(3, time.Second, isTransient).WithSleep(rec.sleep)

		calls := 0
		err := p.Do(context.Background(), func(context.Context) error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Empty(t, rec.delays)
	})

	t.Run("transient failure then success", func(t *testing.T) {
		rec := &recordingSleep{}
		p := New(3, time.Second, isTransient).WithSleep(rec.sleep)

		calls := 0
		err := p.Do(context.Background(), func(context.Context) error {
			calls++
			if calls < 3 {
				return errTransient
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []time.Duration{time.Second, time.Second}, rec.delays)
	})

	t.Run("exhausted attempts return last transient error", func(t *testing.T) {
		rec := &recordingSleep{}
		p := New(3, time.Second, isTransient).WithSleep(rec.sleep)

		calls := 0
		err := p.Do(context.Background(), func(context.Context) error {
			calls++
			return errTransient
		})
		assert.ErrorIs(t, err, errTransient)
		assert.Equal(t, 3, calls)
		// Delay happens between attempts, never after the last one.
		assert.Len(t, rec.delays, 2)
	})

	t.Run("non-transient error propagates after one attempt", func(t *testing.T) {
		rec := &recordingSleep{}
		p := New(3, time.Second, isTransient).WithSleep(rec.sleep)

		calls := 0
		err := p.Do(context.Background(), func(context.Context) error {
			calls++
			return errFatal
		})
		assert.Same(t, errFatal, err)
		assert.Equal(t, 1, calls)
		assert.Empty(t, rec.delays)
	})

	t.Run("transient then fatal stops immediately", func(t *testing.T) {
		rec := &recordingSleep{}
		p := New(5, time.Second, isTransient).WithSleep(rec.sleep)

		calls := 0
		err := p.Do(context.Background(), func(context.Context) error {
			calls++
			if calls == 1 {
				return errTransient
			}
			return errFatal
		})
		assert.ErrorIs(t, err, errFatal)
		assert.Equal(t, 2, calls)
		assert.Len(t, rec.delays, 1)
	})

	t.Run("nil classifier never retries", func(t *testing.T) {
		p := New(3, time.Second, nil).WithSleep((&recordingSleep{}).sleep)
		calls := 0
		err := p.Do(context.Background(), func(context.Context) error {
			calls++
			return errTransient
		})
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("cancelled context aborts the wait", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		p := New(3, time.Hour, isTransient)

		calls := 0
		err := p.Do(ctx, func(context.Context) error {
			calls++
			cancel()
			return errTransient
		})
		assert.ErrorIs(t, err, errTransient)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}

func TestValue(t *testing.T) {
	rec := &recordingSleep{}
	p := New(3, 10*time.Millisecond, isTransient).WithSleep(rec.sleep)

	calls := 0
	got, err := Value(context.Background(), p, func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "partial", errTransient
		}
		return "done", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "done", got)

	got, err = Value(context.Background(), p, func(context.Context) (string, error) {
		return "ignored", errFatal
	})
	assert.Error(t, err)
	assert.Empty(t, got, "failures return the zero value")
}

func TestFromConfig(t *testing.T) {
	p := FromConfig(config.RetryConfig{Attempts: 0, Delay: time.Second}, isTransient)
	assert.Equal(t, 1, p.Attempts)
	assert.Equal(t, time.Second, p.Delay)
}

func TestSleep(t *testing.T) {
	start := time.Now()
	require.NoError(t, Sleep(context.Background(), 5*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
	assert.ErrorIs(t, Sleep(ctx, 0), context.Canceled)
}
