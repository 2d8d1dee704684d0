// File: internal/browser/cdpdriver/options.go
package cdpdriver

import (
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/chromedp/chromedp"
	"github.com/xkilldash9x/automaweb/internal/config"
)

// edgeCandidates lists where Microsoft Edge is usually installed.
var edgeCandidates = map[string][]string{
	"windows": {
		`C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`,
		`C:\Program Files\Microsoft\Edge\Application\msedge.exe`,
	},
	"darwin": {
		"/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge",
	},
	"linux": {
		"microsoft-edge",
		"microsoft-edge-stable",
		"msedge",
	},
}

// lookPath and statPath are replaced in tests.
var (
	lookPath = exec.LookPath
	statPath = func(p string) bool {
		_, err := os.Stat(p)
		return err == nil
	}
)

// findEdge returns the first Edge binary that exists, or "".
func findEdge(goos string) string {
	for _, c := range edgeCandidates[goos] {
		if strings.ContainsRune(c, os.PathSeparator) || strings.Contains(c, `\`) {
			if statPath(c) {
				return c
			}
			continue
		}
		if p, err := lookPath(c); err == nil {
			return p
		}
	}
	return ""
}

// execOptions builds the allocator options for a Chromium-family browser.
// Automation banners are suppressed and the window starts maximized.
func execOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("log-level", "3"),
		chromedp.Flag("start-maximized", true),
	}

	// 1. Headless uses the new headless mode; headed runs need the flag off
	// explicitly since chromedp would otherwise assume headless.
	if cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", "new"), chromedp.Flag("hide-scrollbars", true))
	} else {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	// 2. Binary selection. Chrome is found by chromedp itself.
	execPath := cfg.ExecPath
	if execPath == "" && cfg.Name == config.BrowserEdge {
		execPath = findEdge(runtime.GOOS)
	}
	if execPath != "" {
		opts = append(opts, chromedp.ExecPath(execPath))
	}

	// 3. Extra switches from the config, as "--name" or "--name=value".
	for _, arg := range cfg.Args {
		key, value, found := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if key == "" {
			continue
		}
		if found {
			opts = append(opts, chromedp.Flag(key, value))
		} else {
			opts = append(opts, chromedp.Flag(key, true))
		}
	}
	return opts
}
