// File: internal/browser/cdpdriver/options_test.go
package cdpdriver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xkilldash9x/automaweb/internal/config"
)

func TestFindEdge(t *testing.T) {
	origLook, origStat := lookPath, statPath
	t.Cleanup(func() { lookPath, statPath = origLook, origStat })

	t.Run("linux uses PATH lookup", func(t *testing.T) {
		lookPath = func(name string) (string, error) {
			if name == "microsoft-edge-stable" {
				return "/usr/bin/microsoft-edge-stable", nil
			}
			return "", errors.New("not found")
		}
		assert.Equal(t, "/usr/bin/microsoft-edge-stable", findEdge("linux"))
	})

	t.Run("windows checks install locations", func(t *testing.T) {
		statPath = func(p string) bool {
			return p == `C:\Program Files\Microsoft\Edge\Application\msedge.exe`
		}
		assert.Equal(t, `C:\Program Files\Microsoft\Edge\Application\msedge.exe`, findEdge("windows"))
	})

	t.Run("nothing installed", func(t *testing.T) {
		lookPath = func(string) (string, error) { return "", errors.New("not found") }
		statPath = func(string) bool { return false }
		assert.Empty(t, findEdge("linux"))
		assert.Empty(t, findEdge("darwin"))
		assert.Empty(t, findEdge("plan9"))
	})
}

func TestExecOptions(t *testing.T) {
	origLook, origStat := lookPath, statPath
	t.Cleanup(func() { lookPath, statPath = origLook, origStat })
	lookPath = func(string) (string, error) { return "", errors.New("not found") }
	statPath = func(string) bool { return false }

	base := len(execOptions(config.BrowserConfig{Name: config.BrowserChrome}))

	withPath := execOptions(config.BrowserConfig{Name: config.BrowserChrome, ExecPath: "/opt/chrome"})
	assert.Len(t, withPath, base+1, "an explicit binary adds one option")

	headless := execOptions(config.BrowserConfig{Name: config.BrowserChrome, Headless: true})
	assert.Len(t, headless, base+1, "headless also hides scrollbars")

	withArgs := execOptions(config.BrowserConfig{
		Name: config.BrowserChrome,
		Args: []string{"--user-agent=bot", "--disable-dev-shm-usage", "--"},
	})
	assert.Len(t, withArgs, base+2, "empty switches are ignored")

	edge := execOptions(config.BrowserConfig{Name: config.BrowserEdge})
	assert.Len(t, edge, base, "no edge binary found means chromedp's default lookup")
}
