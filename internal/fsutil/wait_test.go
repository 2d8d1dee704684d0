// File: internal/fsutil/wait_test.go
package fsutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitForFile(t *testing.T) {
	t.Run("already present", func(t *testing.T) {
		f, fs := setupFiles(t)
		writeFile(t, fs, "/dl/file.pdf", "x")
		require.NoError(t, f.WaitForFile(context.Background(), "/dl/file.pdf", time.Second))
	})

	t.Run("appears before the timeout", func(t *testing.T) {
		f, fs := setupFiles(t, WithPollInterval(10*time.Millisecond))

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			time.Sleep(50 * time.Millisecond)
			_ = afero.WriteFile(fs, "/dl/late.pdf", []byte("x"), 0o644)
		}()

		start := time.Now()
		err := f.WaitForFile(context.Background(), "/dl/late.pdf", 2*time.Second)
		wg.Wait()
		require.NoError(t, err)
		assert.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("appears after the timeout", func(t *testing.T) {
		f, fs := setupFiles(t, WithPollInterval(10*time.Millisecond))

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			time.Sleep(300 * time.Millisecond)
			_ = afero.WriteFile(fs, "/dl/too-late.pdf", []byte("x"), 0o644)
		}()

		start := time.Now()
		err := f.WaitForFile(context.Background(), "/dl/too-late.pdf", 100*time.Millisecond)
		elapsed := time.Since(start)
		wg.Wait()

		assert.ErrorIs(t, err, ErrWaitTimeout)
		assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	})

	t.Run("parent context cancelled", func(t *testing.T) {
		f, _ := setupFiles(t, WithPollInterval(10*time.Millisecond))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := f.WaitForFile(ctx, "/never", time.Second)
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, ErrWaitTimeout)
	})
}
