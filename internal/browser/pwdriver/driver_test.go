// File: internal/browser/pwdriver/driver_test.go
package pwdriver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/automaweb/internal/browser"
	"github.com/xkilldash9x/automaweb/internal/config"
	"github.com/xkilldash9x/automaweb/internal/cookies"
)

func TestLaunchOptions(t *testing.T) {
	t.Run("firefox", func(t *testing.T) {
		cfg := config.BrowserConfig{Name: config.BrowserFirefox, Headless: true, Args: []string{"-private"}}
		opts := launchOptions(cfg)

		require.NotNil(t, opts.Headless)
		assert.True(t, *opts.Headless)
		assert.Nil(t, opts.Channel)
		assert.Equal(t, []string{"-private"}, opts.Args)
		assert.Equal(t, false, opts.FirefoxUserPrefs["dom.webdriver.enabled"])
		assert.Equal(t, false, opts.FirefoxUserPrefs["useAutomationExtension"])
	})

	t.Run("edge uses the msedge channel", func(t *testing.T) {
		opts := launchOptions(config.BrowserConfig{Name: config.BrowserEdge})

		require.NotNil(t, opts.Channel)
		assert.Equal(t, "msedge", *opts.Channel)
		assert.Contains(t, opts.Args, "--start-maximized")
		assert.Contains(t, opts.IgnoreDefaultArgs, "--enable-automation")
		assert.Nil(t, opts.FirefoxUserPrefs)
	})

	t.Run("explicit binary replaces the channel", func(t *testing.T) {
		opts := launchOptions(config.BrowserConfig{Name: config.BrowserChrome, ExecPath: "/opt/chrome/chrome"})

		assert.Nil(t, opts.Channel)
		require.NotNil(t, opts.ExecutablePath)
		assert.Equal(t, "/opt/chrome/chrome", *opts.ExecutablePath)
	})

	t.Run("config args are not aliased", func(t *testing.T) {
		args := []string{"--a"}
		opts := launchOptions(config.BrowserConfig{Name: config.BrowserFirefox, Args: args})
		opts.Args[0] = "--b"
		assert.Equal(t, "--a", args[0])
	})
}

func TestTimeoutMs(t *testing.T) {
	assert.Nil(t, timeoutMs(context.Background(), 0))

	got := timeoutMs(context.Background(), 2*time.Second)
	require.NotNil(t, got)
	assert.Equal(t, 2000.0, *got)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	got = timeoutMs(ctx, 2*time.Second)
	require.NotNil(t, got)
	assert.LessOrEqual(t, *got, 500.0)
	assert.Greater(t, *got, 0.0)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"intercepted", errors.New("<div class=\"overlay\"> intercepts pointer events"), browser.ErrClickIntercepted},
		{"detached", errors.New("Element is not attached to the DOM"), browser.ErrStaleElement},
		{"hidden", errors.New("waiting for element to be visible, enabled and stable\n - element is not visible"), browser.ErrNotInteractable},
		{"bare timeout", playwright.ErrTimeout, browser.ErrElementTimeout},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, classify(tc.err), tc.want)
		})
	}

	assert.NoError(t, classify(nil))
	plain := errors.New("boom")
	assert.Same(t, plain, classify(plain))
}

func TestSelector(t *testing.T) {
	assert.Equal(t, "xpath=//div[@id='x']", selector("//div[@id='x']"))
}

func TestCookieConversion(t *testing.T) {
	lax := playwright.SameSiteAttributeLax

	t.Run("from playwright", func(t *testing.T) {
		rec := fromPlaywrightCookie(playwright.Cookie{
			Name: "sid", Value: "abc", Domain: ".example.com", Path: "/",
			Expires: 1893456000, HttpOnly: true, Secure: true, SameSite: lax,
		})
		assert.Equal(t, "sid", rec.Name())
		exp, ok := rec.Expiry()
		require.True(t, ok)
		assert.Equal(t, int64(1893456000), exp)
		assert.Equal(t, "Lax", rec[cookies.KeySameSite])
	})

	t.Run("session cookies carry no expiry", func(t *testing.T) {
		rec := fromPlaywrightCookie(playwright.Cookie{Name: "s", Expires: -1})
		_, ok := rec.Expiry()
		assert.False(t, ok)
	})

	t.Run("url when no path or domain", func(t *testing.T) {
		oc, err := toOptionalCookie(cookies.Record{cookies.KeyName: "a", cookies.KeyValue: "1"}, "https://example.com/app")
		require.NoError(t, err)
		require.NotNil(t, oc.URL)
		assert.Equal(t, "https://example.com/app", *oc.URL)
		assert.Nil(t, oc.Domain)
		assert.Nil(t, oc.Path)
	})

	t.Run("path derives the domain from the page", func(t *testing.T) {
		rec := cookies.Record{cookies.KeyName: "a", cookies.KeyPath: "/app", cookies.KeyExpiry: 1893456000}
		oc, err := toOptionalCookie(rec, "https://example.com:8443/app/login")
		require.NoError(t, err)
		assert.Nil(t, oc.URL)
		assert.Equal(t, "example.com", *oc.Domain)
		assert.Equal(t, "/app", *oc.Path)
		require.NotNil(t, oc.Expires)
		assert.Equal(t, 1893456000.0, *oc.Expires)
	})

	t.Run("nameless cookies are rejected", func(t *testing.T) {
		_, err := toOptionalCookie(cookies.Record{cookies.KeyValue: "1"}, "https://example.com")
		assert.Error(t, err)
	})

	t.Run("blank page cannot anchor a path", func(t *testing.T) {
		_, err := toOptionalCookie(cookies.Record{cookies.KeyName: "a", cookies.KeyPath: "/"}, "about:blank")
		assert.Error(t, err)
	})
}
