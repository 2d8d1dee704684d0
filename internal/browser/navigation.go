// File: internal/browser/navigation.go
package browser

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// do runs a guarded, non-retried driver call and logs its failure.
func (n *Navigator) do(ctx context.Context, op string, fn func(Driver) error) error {
	d, err := n.guard(ctx, op)
	if err != nil {
		return err
	}
	if err := fn(d); err != nil {
		n.logFailure(op, "", err)
		return err
	}
	return nil
}

// OpenURL loads url in the current tab.
func (n *Navigator) OpenURL(ctx context.Context, url string) error {
	return n.do(ctx, "OpenURL", func(d Driver) error {
		n.logger.Debug("Navigating.", zap.String("url", url))
		return d.Navigate(ctx, url)
	})
}

// NewTab opens url in a new tab and focuses it.
func (n *Navigator) NewTab(ctx context.Context, url string) error {
	return n.do(ctx, "NewTab", func(d Driver) error { return d.NewTab(ctx, url) })
}

// SwitchTab focuses the tab at index, counting from 0 in opening order.
func (n *Navigator) SwitchTab(ctx context.Context, index int) error {
	return n.do(ctx, "SwitchTab", func(d Driver) error { return d.SwitchTab(ctx, index) })
}

// CloseTab closes the current tab; focus moves to the last remaining tab.
func (n *Navigator) CloseTab(ctx context.Context) error {
	return n.do(ctx, "CloseTab", func(d Driver) error { return d.CloseTab(ctx) })
}

// Reload refreshes the current page.
func (n *Navigator) Reload(ctx context.Context) error {
	return n.do(ctx, "Reload", func(d Driver) error { return d.Reload(ctx) })
}

// EnterFrame waits for the iframe at xpath and makes it the lookup scope.
func (n *Navigator) EnterFrame(ctx context.Context, xpath string) error {
	return n.do(ctx, "EnterFrame", func(d Driver) error {
		return d.EnterFrame(ctx, xpath, n.waitTimeout())
	})
}

// ExitFrame returns the lookup scope to the top-level document.
func (n *Navigator) ExitFrame(ctx context.Context) error {
	return n.do(ctx, "ExitFrame", func(d Driver) error { return d.ExitFrame(ctx) })
}

// Screenshot saves a PNG of the viewport in the downloads directory and
// returns its path. An empty name becomes screenshot_YYYYMMDD_HHMMSS.
func (n *Navigator) Screenshot(ctx context.Context, name string) (string, error) {
	var path string
	err := n.do(ctx, "Screenshot", func(d Driver) error {
		if name == "" {
			name = n.now().Format("screenshot_20060102_150405")
		}
		dir := n.cfg.Browser().DownloadsDir
		if err := n.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
		png, err := d.Screenshot(ctx)
		if err != nil {
			return err
		}
		path = filepath.Join(dir, name+".png")
		if err := afero.WriteFile(n.fs, path, png, 0o644); err != nil {
			return fmt.Errorf("failed to write screenshot: %w", err)
		}
		n.logger.Info("Screenshot saved.", zap.String("path", path))
		return nil
	})
	if err != nil {
		return "", err
	}
	return path, nil
}
