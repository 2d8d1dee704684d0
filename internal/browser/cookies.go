// File: internal/browser/cookies.go
package browser

import (
	"context"
	"fmt"

	"github.com/xkilldash9x/automaweb/internal/cookies"
	"go.uber.org/zap"
)

func (n *Navigator) cookieFile(path string) string {
	if path == "" {
		return n.cfg.Cookies().File
	}
	return path
}

// SaveCookies asks the user to confirm they are ready (typically after a
// manual login) and then writes every cookie of the session to path.
// An empty path uses the configured cookies file.
func (n *Navigator) SaveCookies(ctx context.Context, path string) error {
	d, err := n.guard(ctx, "SaveCookies")
	if err != nil {
		return err
	}
	path = n.cookieFile(path)

	if err := n.notifier.Acknowledge(ctx, "Attention", `Click "OK" only when you are ready to save the cookies.`); err != nil {
		n.logger.Warn("Cookie export not confirmed.", zap.Error(err))
		return err
	}

	records, err := d.Cookies(ctx)
	if err != nil {
		n.logger.Error("Failed to read cookies from the browser.", zap.Error(err))
		return fmt.Errorf("failed to read cookies: %w", err)
	}
	if err := cookies.Save(n.fs, path, records); err != nil {
		n.logger.Error("Failed to save cookies.", zap.Error(err))
		return err
	}
	n.logger.Info("Cookies saved.", zap.String("path", path), zap.Int("count", len(records)))
	return nil
}

// LoadCookies adds the cookies stored at path to the current page and
// reloads it. The page must already be on the cookies' site. A missing file
// only produces a warning. Cookies the browser rejects are skipped.
func (n *Navigator) LoadCookies(ctx context.Context, path string) error {
	d, err := n.guard(ctx, "LoadCookies")
	if err != nil {
		return err
	}
	path = n.cookieFile(path)

	records, err := cookies.Load(n.fs, path)
	if cookies.IsNotExist(err) {
		n.logger.Warn("Cookie file not found.", zap.String("path", path))
		n.notifier.Warning(ctx, "Warning", fmt.Sprintf("File '%s' does not exist. Log in manually first.", path))
		return nil
	}
	if err != nil {
		n.logger.Error("Failed to load cookies.", zap.Error(err))
		return err
	}

	added := 0
	for _, rec := range records {
		clean, err := rec.Normalize()
		if err == nil {
			err = d.AddCookie(ctx, clean)
		}
		if err != nil {
			// Expired session cookies are routinely rejected.
			n.logger.Info("Skipping cookie.", zap.String("name", rec.Name()), zap.Error(err))
			continue
		}
		added++
	}
	n.logger.Info("Cookies loaded.", zap.String("path", path), zap.Int("added", added), zap.Int("total", len(records)))

	if err := d.Reload(ctx); err != nil {
		n.logFailure("Reload", "", err)
		return err
	}
	return nil
}
