// File: internal/browser/pwdriver/driver.go
package pwdriver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/xkilldash9x/automaweb/internal/browser"
	"go.uber.org/zap"
)

const (
	// actionTimeout bounds how long Playwright's own actionability checks may
	// run. The facade has already waited for the element.
	actionTimeout = 2 * time.Second
	// pollInterval is how often Wait re-evaluates its condition.
	pollInterval = 100 * time.Millisecond
	closeTimeout = 10 * time.Second
)

// Driver implements browser.Driver on top of a Playwright browser context.
type Driver struct {
	logger  *zap.Logger
	pw      *playwright.Playwright
	browser playwright.Browser
	bctx    playwright.BrowserContext

	mu     sync.Mutex
	page   playwright.Page
	frames []string
}

var _ browser.Driver = (*Driver)(nil)

// current returns the focused page and the entered frame chain.
func (d *Driver) current() (playwright.Page, []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.page, append([]string(nil), d.frames...)
}

func (d *Driver) focus(p playwright.Page) {
	d.mu.Lock()
	d.page = p
	d.frames = nil
	d.mu.Unlock()
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	page, _ := d.current()
	if _, err := page.Goto(url, playwright.PageGotoOptions{Timeout: timeoutMs(ctx, 0)}); err != nil {
		return classify(err)
	}
	d.focus(page)
	return nil
}

func (d *Driver) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	page, _ := d.current()
	if _, err := page.Reload(playwright.PageReloadOptions{Timeout: timeoutMs(ctx, 0)}); err != nil {
		return classify(err)
	}
	d.focus(page)
	return nil
}

func (d *Driver) NewTab(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	page, err := d.bctx.NewPage()
	if err != nil {
		return fmt.Errorf("failed to open tab: %w", err)
	}
	if url != "" {
		if _, err := page.Goto(url, playwright.PageGotoOptions{Timeout: timeoutMs(ctx, 0)}); err != nil {
			return classify(err)
		}
	}
	if err := page.BringToFront(); err != nil {
		return err
	}
	d.focus(page)
	return nil
}

func (d *Driver) SwitchTab(ctx context.Context, index int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	pages := d.bctx.Pages()
	if index < 0 || index >= len(pages) {
		return fmt.Errorf("%w: index %d, %d open", browser.ErrNoSuchTab, index, len(pages))
	}
	if err := pages[index].BringToFront(); err != nil {
		return err
	}
	d.focus(pages[index])
	return nil
}

func (d *Driver) CloseTab(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	page, _ := d.current()
	if err := page.Close(); err != nil {
		return err
	}
	pages := d.bctx.Pages()
	if len(pages) == 0 {
		return fmt.Errorf("%w: last tab closed", browser.ErrNoSuchTab)
	}
	last := pages[len(pages)-1]
	if err := last.BringToFront(); err != nil {
		return err
	}
	d.focus(last)
	return nil
}

func (d *Driver) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page, _ := d.current()
	png, err := page.Screenshot(playwright.PageScreenshotOptions{
		Type:    playwright.ScreenshotTypePng,
		Timeout: timeoutMs(ctx, 0),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return png, nil
}

// Quit closes the browser and stops the Playwright driver process.
func (d *Driver) Quit(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		var errs []error
		if err := d.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
		if err := d.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
		done <- errors.Join(errs...)
	}()

	timer := time.NewTimer(closeTimeout)
	defer timer.Stop()
	select {
	case err := <-done:
		return err
	case <-timer.C:
		d.logger.Warn("Timed out waiting for the browser to close.")
		return fmt.Errorf("browser did not close within %s", closeTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// timeoutMs converts the time left on ctx into a Playwright timeout in
// milliseconds, capped at limit when limit is positive. Playwright treats 0
// as no timeout, so an unbounded ctx with no limit returns nil to keep the
// library default.
func timeoutMs(ctx context.Context, limit time.Duration) *float64 {
	d := limit
	if deadline, ok := ctx.Deadline(); ok {
		left := time.Until(deadline)
		if left < time.Millisecond {
			left = time.Millisecond
		}
		if d <= 0 || left < d {
			d = left
		}
	}
	if d <= 0 {
		return nil
	}
	return playwright.Float(float64(d.Milliseconds()))
}
