// File: internal/browser/launcher/launcher.go

// Package launcher picks the browser backend for a configuration.
package launcher

import (
	"context"
	"fmt"

	"github.com/xkilldash9x/automaweb/internal/browser"
	"github.com/xkilldash9x/automaweb/internal/browser/cdpdriver"
	"github.com/xkilldash9x/automaweb/internal/browser/pwdriver"
	"github.com/xkilldash9x/automaweb/internal/config"
	"go.uber.org/zap"
)

// For returns the launcher registered for a driver name.
func For(driver string) (browser.Launcher, error) {
	switch driver {
	case config.DriverChromedp:
		return cdpdriver.Launch, nil
	case config.DriverPlaywright:
		return pwdriver.Launch, nil
	default:
		return nil, fmt.Errorf("%w: no driver named %q", browser.ErrUnsupportedBrowser, driver)
	}
}

// Launch starts the backend selected by cfg.ResolvedDriver. It satisfies
// browser.Launcher.
func Launch(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (browser.Driver, error) {
	driver := cfg.ResolvedDriver()
	launch, err := For(driver)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Info("Launching browser.",
			zap.String("browser", cfg.Name),
			zap.String("driver", driver),
			zap.Bool("headless", cfg.Headless),
		)
	}
	return launch(ctx, cfg, logger)
}

var _ browser.Launcher = Launch
