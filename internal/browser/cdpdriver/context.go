// File: internal/browser/cdpdriver/context.go
package cdpdriver

import (
	"context"
	"time"
)

// combineContext derives a context from tabCtx, which carries the CDP
// target, that is also cancelled when opCtx is. Values come from tabCtx only.
func combineContext(tabCtx, opCtx context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(tabCtx)
	if deadline, ok := opCtx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		combined, cancelDeadline = context.WithDeadline(combined, deadline)
		parentCancel := cancel
		cancel = func() {
			cancelDeadline()
			parentCancel()
		}
	}

	go func() {
		select {
		case <-opCtx.Done():
			cancel()
		case <-combined.Done():
		}
	}()
	return combined, cancel
}

// valueOnlyContext keeps the values of its parent but never expires.
type valueOnlyContext struct {
	context.Context
}

func (valueOnlyContext) Deadline() (deadline time.Time, ok bool) { return }
func (valueOnlyContext) Done() <-chan struct{} { return nil }
func (valueOnlyContext) Err() error { return nil }

// detach returns a context with the values of ctx that outlives it. Used so
// cleanup can still reach the browser after the caller has given up.
func detach(ctx context.Context) context.Context {
	return valueOnlyContext{ctx}
}
