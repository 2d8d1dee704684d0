// File: internal/fsutil/wait.go
package fsutil

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// WaitForFile blocks until path exists, the timeout elapses, or ctx is done.
// The filesystem is checked once per poll interval.
func (f *Files) WaitForFile(ctx context.Context, path string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(f.pollInterval), 1)
	for {
		if f.Exists(path) {
			f.logger.Debug("File is present.", zap.String("path", path))
			return nil
		}

		if err := limiter.Wait(waitCtx); err != nil {
			// The limiter gives up as soon as the next token would land past
			// the deadline, so sit out the remainder before the final check.
			<-waitCtx.Done()
			if f.Exists(path) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.logger.Warn("File did not appear in time.", zap.String("path", path), zap.Duration("timeout", timeout))
			return fmt.Errorf("%w: %s was not found within %s", ErrWaitTimeout, path, timeout)
		}
	}
}
