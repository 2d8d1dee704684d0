// File: internal/recipe/runner.go
package recipe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xkilldash9x/automaweb/internal/retry"
	"go.uber.org/zap"
)

// ErrAssertion marks an assert_* step whose expectation did not hold.
var ErrAssertion = errors.New("assertion failed")

// Browser is the part of browser.Navigator a recipe drives.
type Browser interface {
	IsOpen() bool
	Open(ctx context.Context) error
	OpenURL(ctx context.Context, url string) error
	NewTab(ctx context.Context, url string) error
	SwitchTab(ctx context.Context, index int) error
	CloseTab(ctx context.Context) error
	Reload(ctx context.Context) error
	EnterFrame(ctx context.Context, xpath string) error
	ExitFrame(ctx context.Context) error
	Screenshot(ctx context.Context, name string) (string, error)

	Click(ctx context.Context, xpath string) error
	Type(ctx context.Context, xpath, text string) error
	Clear(ctx context.Context, xpath string) error
	Hover(ctx context.Context, xpath string) error
	SelectByText(ctx context.Context, xpath, text string) error
	SelectByValue(ctx context.Context, xpath, value string) error
	ScrollIntoView(ctx context.Context, xpath string) error
	WaitInvisible(ctx context.Context, xpath string) error

	Text(ctx context.Context, xpath string) (string, error)
	TypedTextEquals(ctx context.Context, xpath, want string) (bool, error)
	SelectedTextEquals(ctx context.Context, xpath, want string) (bool, error)
	Exists(ctx context.Context, xpath string, timeout time.Duration) bool

	SaveCookies(ctx context.Context, path string) error
	LoadCookies(ctx context.Context, path string) error
}

// StepError reports which step stopped a run.
type StepError struct {
	// Index is the 1-based position of the failing step.
	Index  int
	Action string
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Action, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Runner executes recipes in order against one Browser.
type Runner struct {
	browser        Browser
	logger         *zap.Logger
	sleep          retry.SleepFunc
	defaultTimeout time.Duration
}

// RunnerOption customises a Runner.
type RunnerOption func(*Runner)

// WithSleep replaces the function used by sleep steps.
func WithSleep(fn retry.SleepFunc) RunnerOption {
	return func(r *Runner) { r.sleep = fn }
}

// WithDefaultTimeout sets the wait used by assert_exists steps without a timeout.
func WithDefaultTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) { r.defaultTimeout = d }
}

// NewRunner creates a Runner for b.
func NewRunner(b Browser, logger *zap.Logger, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{
		browser:        b,
		logger:         logger.Named("recipe"),
		sleep:          retry.Sleep,
		defaultTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the steps in order and stops at the first failure, returning
// a *StepError. The browser is left as the recipe leaves it.
func (r *Runner) Run(ctx context.Context, rec *Recipe) error {
	logger := r.logger.With(zap.String("recipe", rec.Name))
	logger.Info("Running recipe.", zap.Int("steps", len(rec.Steps)))
	start := time.Now()

	for i, step := range rec.Steps {
		if err := ctx.Err(); err != nil {
			return &StepError{Index: i + 1, Action: step.Action, Err: err}
		}
		logger.Debug("Step.", zap.Int("step", i+1), zap.String("action", step.Action), zap.String("xpath", step.XPath))
		if err := r.exec(ctx, step); err != nil {
			logger.Error("Recipe stopped.", zap.Int("step", i+1), zap.String("action", step.Action), zap.Error(err))
			return &StepError{Index: i + 1, Action: step.Action, Err: err}
		}
	}

	logger.Info("Recipe finished.", zap.Duration("duration", time.Since(start)))
	return nil
}

func (r *Runner) exec(ctx context.Context, s Step) error {
	b := r.browser
	switch s.Action {
	case ActionOpen:
		if !b.IsOpen() {
			if err := b.Open(ctx); err != nil {
				return err
			}
		}
		if s.URL == "" {
			return nil
		}
		return b.OpenURL(ctx, s.URL)
	case ActionNewTab:
		return b.NewTab(ctx, s.URL)
	case ActionSwitchTab:
		return b.SwitchTab(ctx, s.Index)
	case ActionCloseTab:
		return b.CloseTab(ctx)
	case ActionReload:
		return b.Reload(ctx)
	case ActionClick:
		return b.Click(ctx, s.XPath)
	case ActionType:
		return b.Type(ctx, s.XPath, s.Text)
	case ActionClear:
		return b.Clear(ctx, s.XPath)
	case ActionHover:
		return b.Hover(ctx, s.XPath)
	case ActionSelectText:
		return b.SelectByText(ctx, s.XPath, s.Text)
	case ActionSelectValue:
		return b.SelectByValue(ctx, s.XPath, s.Value)
	case ActionScroll:
		return b.ScrollIntoView(ctx, s.XPath)
	case ActionWaitInvisible:
		return b.WaitInvisible(ctx, s.XPath)
	case ActionEnterFrame:
		return b.EnterFrame(ctx, s.XPath)
	case ActionExitFrame:
		return b.ExitFrame(ctx)
	case ActionScreenshot:
		path, err := b.Screenshot(ctx, s.Name)
		if err == nil {
			r.logger.Info("Screenshot saved.", zap.String("path", path))
		}
		return err
	case ActionSaveCookies:
		return b.SaveCookies(ctx, s.Path)
	case ActionLoadCookies:
		return b.LoadCookies(ctx, s.Path)
	case ActionSleep:
		return r.sleep(ctx, s.Duration)
	case ActionAssertText:
		got, err := b.Text(ctx, s.XPath)
		if err != nil {
			return err
		}
		if got != s.Text {
			return fmt.Errorf("%w: text of %s is %q, want %q", ErrAssertion, s.XPath, got, s.Text)
		}
		return nil
	case ActionAssertValue:
		ok, err := b.TypedTextEquals(ctx, s.XPath, s.Text)
		return expect(s, "value", ok, err)
	case ActionAssertSelected:
		ok, err := b.SelectedTextEquals(ctx, s.XPath, s.Text)
		return expect(s, "selected option", ok, err)
	case ActionAssertExists:
		timeout := s.Timeout
		if timeout == 0 {
			timeout = r.defaultTimeout
		}
		if !b.Exists(ctx, s.XPath, timeout) {
			return fmt.Errorf("%w: %s not found within %s", ErrAssertion, s.XPath, timeout)
		}
		return nil
	}
	return fmt.Errorf("unknown action %q", s.Action)
}

// expect turns a comparison result into a step error.
func expect(s Step, what string, ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s of %s is not %q", ErrAssertion, what, s.XPath, s.Text)
	}
	return nil
}
