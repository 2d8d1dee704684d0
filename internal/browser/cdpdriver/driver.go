// File: internal/browser/cdpdriver/driver.go

// Package cdpdriver drives Chrome and Edge over the DevTools protocol with chromedp.
package cdpdriver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/xkilldash9x/automaweb/internal/browser"
	"github.com/xkilldash9x/automaweb/internal/config"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// tab is one page target attached to the browser.
type tab struct {
	ctx    context.Context
	cancel context.CancelFunc
	id     target.ID
}

// Driver implements browser.Driver for Chromium-based browsers.
type Driver struct {
	logger *zap.Logger

	allocCancel context.CancelFunc
	// root is the context of the first tab. Cancelling it ends the browser,
	// so it stays alive until Quit even if that tab gets closed.
	root       context.Context
	rootCancel context.CancelFunc

	mu      sync.Mutex
	tabs    []*tab
	current int
	// frames holds the iframe locators entered, outermost first.
	frames []string
}

var _ browser.Driver = (*Driver)(nil)

// Launch starts a Chrome or Edge process and attaches to its first tab.
func Launch(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (browser.Driver, error) {
	if cfg.Name == config.BrowserFirefox {
		return nil, fmt.Errorf("%w: chromedp cannot drive %s", browser.ErrUnsupportedBrowser, cfg.Name)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("chromedp")

	// The browser must outlive the context it was opened with.
	allocCtx, allocCancel := chromedp.NewExecAllocator(detach(ctx), execOptions(cfg)...)
	rootCtx, rootCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logger.Sugar().Debugf),
		chromedp.WithErrorf(logger.Sugar().Debugf),
	)

	d := &Driver{
		logger:      logger,
		allocCancel: allocCancel,
		root:        rootCtx,
		rootCancel:  rootCancel,
	}

	// The first Run starts the process and attaches to the initial tab.
	startCtx, cancel := combineContext(rootCtx, ctx)
	defer cancel()
	if err := chromedp.Run(startCtx, hideAutomation()); err != nil {
		rootCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to launch %s: %w", cfg.Name, err)
	}

	var id target.ID
	if t := chromedp.FromContext(rootCtx).Target; t != nil {
		id = t.TargetID
	}
	d.tabs = []*tab{{ctx: rootCtx, cancel: func() {}, id: id}}
	logger.Debug("Browser process started.", zap.String("target_id", string(id)))
	return d, nil
}

// currentTab returns the focused tab.
func (d *Driver) currentTab() (*tab, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current < 0 || d.current >= len(d.tabs) {
		return nil, fmt.Errorf("%w %d: no tabs are open", browser.ErrNoSuchTab, d.current)
	}
	return d.tabs[d.current], nil
}

// run executes actions on the focused tab, bounded by ctx.
func (d *Driver) run(ctx context.Context, actions ...chromedp.Action) error {
	t, err := d.currentTab()
	if err != nil {
		return err
	}
	runCtx, cancel := combineContext(t.ctx, ctx)
	defer cancel()
	return classify(chromedp.Run(runCtx, actions...))
}

func (d *Driver) resetFrames() {
	d.mu.Lock()
	d.frames = nil
	d.mu.Unlock()
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	d.resetFrames()
	return d.run(ctx, chromedp.Navigate(url))
}

func (d *Driver) Reload(ctx context.Context) error {
	d.resetFrames()
	return d.run(ctx, chromedp.Reload())
}

// NewTab opens a new page target in the same browser and focuses it.
func (d *Driver) NewTab(ctx context.Context, url string) error {
	tabCtx, tabCancel := chromedp.NewContext(d.root)

	runCtx, cancel := combineContext(tabCtx, ctx)
	defer cancel()
	if err := chromedp.Run(runCtx, hideAutomation(), chromedp.Navigate(url)); err != nil {
		tabCancel()
		return classify(err)
	}

	t := &tab{ctx: tabCtx, cancel: tabCancel, id: chromedp.FromContext(tabCtx).Target.TargetID}
	d.mu.Lock()
	d.tabs = append(d.tabs, t)
	d.current = len(d.tabs) - 1
	d.frames = nil
	d.mu.Unlock()
	return d.activate(ctx, t)
}

func (d *Driver) activate(ctx context.Context, t *tab) error {
	runCtx, cancel := combineContext(t.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		return target.ActivateTarget(t.id).Do(ctx)
	}))
}

// SwitchTab focuses the tab at index. Tabs opened by the page itself, such
// as popups, are picked up and appended in discovery order.
func (d *Driver) SwitchTab(ctx context.Context, index int) error {
	if err := d.syncTabs(ctx); err != nil {
		d.logger.Debug("Could not refresh the tab list.", zap.Error(err))
	}

	d.mu.Lock()
	if index < 0 || index >= len(d.tabs) {
		n := len(d.tabs)
		d.mu.Unlock()
		return fmt.Errorf("%w %d (%d open)", browser.ErrNoSuchTab, index, n)
	}
	d.current = index
	d.frames = nil
	t := d.tabs[index]
	d.mu.Unlock()
	return d.activate(ctx, t)
}

// syncTabs attaches page targets that were not opened through NewTab.
func (d *Driver) syncTabs(ctx context.Context) error {
	listCtx, cancel := combineContext(d.root, ctx)
	defer cancel()
	infos, err := chromedp.Targets(listCtx)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	known := make(map[target.ID]bool, len(d.tabs))
	for _, t := range d.tabs {
		known[t.id] = true
	}
	for _, info := range infos {
		if info.Type != "page" || known[info.TargetID] {
			continue
		}
		tabCtx, tabCancel := chromedp.NewContext(d.root, chromedp.WithTargetID(info.TargetID))
		d.tabs = append(d.tabs, &tab{ctx: tabCtx, cancel: tabCancel, id: info.TargetID})
	}
	return nil
}

// CloseTab closes the focused tab and focuses the last remaining one.
func (d *Driver) CloseTab(ctx context.Context) error {
	t, err := d.currentTab()
	if err != nil {
		return err
	}

	if t.ctx == d.root {
		// Cancelling the root context would end the browser; close the page instead.
		if err := d.run(ctx, page.Close()); err != nil {
			return err
		}
	} else {
		t.cancel()
	}

	d.mu.Lock()
	d.tabs = append(d.tabs[:d.current], d.tabs[d.current+1:]...)
	d.current = len(d.tabs) - 1
	d.frames = nil
	var next *tab
	if d.current >= 0 {
		next = d.tabs[d.current]
	}
	d.mu.Unlock()

	if next == nil {
		return nil
	}
	return d.activate(ctx, next)
}

func (d *Driver) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := d.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

// Quit ends the browser process and releases every context.
func (d *Driver) Quit(ctx context.Context) error {
	d.mu.Lock()
	tabs := d.tabs
	d.tabs = nil
	d.mu.Unlock()

	for _, t := range tabs {
		if t.ctx != d.root {
			t.cancel()
		}
	}

	// chromedp.Cancel waits for the process to exit; bound it.
	done := make(chan error, 1)
	go func() { done <- chromedp.Cancel(d.root) }()

	var err error
	select {
	case err = <-done:
	case <-time.After(shutdownTimeout):
		err = errors.New("timed out waiting for the browser to exit")
	case <-ctx.Done():
		err = ctx.Err()
	}
	d.rootCancel()
	d.allocCancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}
