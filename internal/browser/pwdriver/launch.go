// File: internal/browser/pwdriver/launch.go

// Package pwdriver drives Firefox, and optionally Chrome or Edge, through Playwright.
package pwdriver

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/xkilldash9x/automaweb/internal/browser"
	"github.com/xkilldash9x/automaweb/internal/config"
	"go.uber.org/zap"
)

const (
	installTimeout = 5 * time.Minute
	launchTimeout  = 60 * time.Second
)

// firefoxPrefs hide the webdriver flag from pages.
var firefoxPrefs = map[string]interface{}{
	"dom.webdriver.enabled":  false,
	"useAutomationExtension": false,
}

// Launch starts Playwright and the configured browser with one blank page.
func Launch(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (browser.Driver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("playwright")

	// 1. Make sure the browser binaries exist. Branded Chrome and Edge are
	// used from the system installation.
	if cfg.Name == config.BrowserFirefox && cfg.ExecPath == "" {
		if err := ensureInstallation(ctx, logger); err != nil {
			return nil, err
		}
	}

	// 2. Start the driver process.
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright driver: %w", err)
	}

	// 3. Launch the browser.
	bt, opts, err := launchTarget(pw, cfg)
	if err != nil {
		_ = pw.Stop()
		return nil, err
	}
	b, err := bt.Launch(opts)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch %s: %w", cfg.Name, err)
	}

	// 4. One context per session; without a fixed viewport the page fills the window.
	bctx, err := b.NewContext(playwright.BrowserNewContextOptions{
		NoViewport:      playwright.Bool(true),
		AcceptDownloads: playwright.Bool(true),
	})
	if err != nil {
		_ = b.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}
	if err := bctx.AddInitScript(playwright.Script{Content: playwright.String(browser.HideWebdriverScript)}); err != nil {
		_ = b.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to inject automation evasion: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = b.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to open first page: %w", err)
	}

	logger.Debug("Browser launched.", zap.String("version", b.Version()))
	return &Driver{
		logger:  logger,
		pw:      pw,
		browser: b,
		bctx:    bctx,
		page:    page,
	}, nil
}

// launchTarget picks the browser type and launch options for cfg.
func launchTarget(pw *playwright.Playwright, cfg config.BrowserConfig) (playwright.BrowserType, playwright.BrowserTypeLaunchOptions, error) {
	opts := launchOptions(cfg)
	switch cfg.Name {
	case config.BrowserFirefox:
		return pw.Firefox, opts, nil
	case config.BrowserChrome, config.BrowserEdge:
		return pw.Chromium, opts, nil
	default:
		return nil, opts, fmt.Errorf("%w: %q", browser.ErrUnsupportedBrowser, cfg.Name)
	}
}

// launchOptions translates the browser config into Playwright launch options.
func launchOptions(cfg config.BrowserConfig) playwright.BrowserTypeLaunchOptions {
	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		Timeout:  playwright.Float(float64(launchTimeout.Milliseconds())),
		Args:     append([]string(nil), cfg.Args...),
	}
	if cfg.ExecPath != "" {
		opts.ExecutablePath = playwright.String(cfg.ExecPath)
	}

	switch cfg.Name {
	case config.BrowserFirefox:
		opts.FirefoxUserPrefs = firefoxPrefs
	case config.BrowserChrome, config.BrowserEdge:
		if cfg.ExecPath == "" {
			channel := "chrome"
			if cfg.Name == config.BrowserEdge {
				channel = "msedge"
			}
			opts.Channel = playwright.String(channel)
		}
		opts.IgnoreDefaultArgs = []string{"--enable-automation"}
		opts.Args = append([]string{"--start-maximized", "--disable-blink-features=AutomationControlled"}, opts.Args...)
	}
	return opts
}

// ensureInstallation downloads the Playwright Firefox build if it is missing.
func ensureInstallation(ctx context.Context, logger *zap.Logger) error {
	logger.Info("Verifying Playwright browser installation...")
	installCtx, cancel := context.WithTimeout(ctx, installTimeout)
	defer cancel()

	// Install blocks and cannot be cancelled, so it runs on its own goroutine.
	errCh := make(chan error, 1)
	go func() {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"firefox"}}); err != nil {
			errCh <- fmt.Errorf("failed to install playwright browsers: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-installCtx.Done():
		return fmt.Errorf("timeout waiting for Playwright installation: %w", installCtx.Err())
	}
}
