// File: internal/browser/cdpdriver/stealth.go
package cdpdriver

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/xkilldash9x/automaweb/internal/browser"
)

// hideAutomation registers the webdriver evasion on the current target, so
// it runs in every document the tab loads from now on.
func hideAutomation() chromedp.Action {
	// AddScriptToEvaluateOnNewDocument returns an identifier as well, which
	// does not fit chromedp.Action.
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if _, err := page.AddScriptToEvaluateOnNewDocument(browser.HideWebdriverScript).Do(ctx); err != nil {
			return fmt.Errorf("failed to inject automation evasion: %w", err)
		}
		return nil
	})
}
