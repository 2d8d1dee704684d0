// File: internal/browser/navigator.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/xkilldash9x/automaweb/internal/config"
	"github.com/xkilldash9x/automaweb/internal/dialog"
	"github.com/xkilldash9x/automaweb/internal/retry"
	"go.uber.org/zap"
)

// Navigator is the scripting facade over a single browser session. It is
// not safe for concurrent use; one automation script drives one Navigator.
type Navigator struct {
	cfg      *config.Config
	launch   Launcher
	notifier dialog.Notifier
	fs       afero.Fs
	baseLog  *zap.Logger
	logger   *zap.Logger

	retry retry.Policy
	sleep retry.SleepFunc
	now   func() time.Time

	driver    Driver
	sessionID string
}

// Option customises a Navigator.
type Option func(*Navigator)

// WithFs sets the filesystem used for screenshots and cookie files.
func WithFs(fs afero.Fs) Option {
	return func(n *Navigator) { n.fs = fs }
}

// WithSleep replaces the function used for the pre-action delay and the
// retry delay.
func WithSleep(fn retry.SleepFunc) Option {
	return func(n *Navigator) { n.sleep = fn }
}

// WithClock replaces time.Now, which names default screenshots.
func WithClock(now func() time.Time) Option {
	return func(n *Navigator) { n.now = now }
}

// New creates a Navigator. No browser is started until Open.
func New(cfg *config.Config, launch Launcher, notifier dialog.Notifier, logger *zap.Logger, opts ...Option) *Navigator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = dialog.NewHeadless(logger)
	}
	n := &Navigator{
		cfg:      cfg,
		launch:   launch,
		notifier: notifier,
		fs:       afero.NewOsFs(),
		baseLog:  logger.Named("navigator"),
		sleep:    retry.Sleep,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	n.logger = n.baseLog
	n.retry = retry.FromConfig(cfg.Browser().Retry, IsTransient).WithSleep(n.sleep)
	return n
}

// IsOpen reports whether a browser session is live.
func (n *Navigator) IsOpen() bool { return n.driver != nil }

// SessionID returns the identifier of the live session, or "".
func (n *Navigator) SessionID() string { return n.sessionID }

// Open launches the configured browser. The element wait timeout is fixed
// for the lifetime of the session.
func (n *Navigator) Open(ctx context.Context) error {
	if n.driver != nil {
		return fmt.Errorf("Open: %w", ErrAlreadyOpen)
	}
	bcfg := n.cfg.Browser()
	id := uuid.NewString()
	logger := n.baseLog.With(zap.String("session_id", id), zap.String("browser", bcfg.Name))

	logger.Info("Starting browser.", zap.String("driver", bcfg.ResolvedDriver()), zap.Bool("headless", bcfg.Headless))
	d, err := n.launch(ctx, bcfg, logger)
	if err != nil {
		logger.Error("Failed to start the browser.", zap.Error(err))
		return fmt.Errorf("failed to start %s: %w", bcfg.Name, err)
	}

	n.driver = d
	n.sessionID = id
	n.logger = logger
	logger.Info("Browser ready.", zap.Duration("wait_timeout", bcfg.WaitTimeout))
	return nil
}

// Close quits the browser. The session is released even if quitting fails.
func (n *Navigator) Close(ctx context.Context) error {
	d, err := n.guard(ctx, "Close")
	if err != nil {
		return err
	}
	err = d.Quit(ctx)
	n.driver = nil
	n.sessionID = ""
	logger := n.logger
	n.logger = n.baseLog
	if err != nil {
		logger.Error("Error while closing the browser.", zap.Error(err))
		return err
	}
	logger.Info("Browser closed.")
	return nil
}

// guard returns the live driver. Without one it shows a single error
// notification naming op and returns ErrNotOpen.
func (n *Navigator) guard(ctx context.Context, op string) (Driver, error) {
	if n.driver != nil {
		return n.driver, nil
	}
	n.logger.Error("Browser operation attempted without an open session.", zap.String("op", op))
	n.notifier.Error(ctx, "Critical Error",
		fmt.Sprintf("Attempted to run '%s' without a browser.\nCall Open first.", op))
	return nil, fmt.Errorf("%s: %w", op, ErrNotOpen)
}

// stun applies the configured pause before an action.
func (n *Navigator) stun(ctx context.Context) error {
	delay := n.cfg.Browser().ActionDelay
	if delay <= 0 {
		return nil
	}
	return n.sleep(ctx, delay)
}

func (n *Navigator) waitTimeout() time.Duration {
	return n.cfg.Browser().WaitTimeout
}

// logFailure records a failed operation unless it was just the caller giving up.
func (n *Navigator) logFailure(op, xpath string, err error) {
	if errors.Is(err, context.Canceled) {
		n.logger.Debug("Operation cancelled.", zap.String("op", op), zap.String("xpath", xpath))
		return
	}
	n.logger.Error("Browser operation failed.", zap.String("op", op), zap.String("xpath", xpath), zap.Error(err))
}
