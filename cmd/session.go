// File: cmd/session.go
package cmd

import (
	"context"
	"time"

	"github.com/xkilldash9x/automaweb/internal/browser"
	"github.com/xkilldash9x/automaweb/internal/config"
	"github.com/xkilldash9x/automaweb/internal/dialog"
	"github.com/xkilldash9x/automaweb/internal/observability"
	"go.uber.org/zap"
)

// closeTimeout bounds browser shutdown once the command context is gone.
const closeTimeout = 15 * time.Second

// newNavigator wires a navigator to the configured backend and dialogs.
func newNavigator(cfg *config.Config) (*browser.Navigator, dialog.Dialogs) {
	logger := observability.GetLogger()
	dlg := newDialogs(cfg.Dialogs(), logger)
	return browser.New(cfg, launchBrowser, dlg, logger, browser.WithFs(appFs)), dlg
}

// closeNavigator shuts the browser down even when ctx was cancelled by a signal.
func closeNavigator(ctx context.Context, nav *browser.Navigator) {
	if !nav.IsOpen() {
		return
	}
	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()
	if err := nav.Close(closeCtx); err != nil {
		observability.GetLogger().Warn("Failed to close the browser cleanly.", zap.Error(err))
	}
}

// withSession opens a browser at url, runs fn and closes the browser.
func withSession(ctx context.Context, cfg *config.Config, url string, fn func(ctx context.Context, nav *browser.Navigator, dlg dialog.Dialogs) error) error {
	nav, dlg := newNavigator(cfg)
	defer closeNavigator(ctx, nav)

	if err := nav.Open(ctx); err != nil {
		return err
	}
	if err := nav.OpenURL(ctx, url); err != nil {
		return err
	}
	return fn(ctx, nav, dlg)
}
