// File: internal/browser/navigator_test.go
package browser_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/automaweb/internal/browser"
	"github.com/xkilldash9x/automaweb/internal/browser/browsertest"
	"github.com/xkilldash9x/automaweb/internal/config"
	"github.com/xkilldash9x/automaweb/internal/dialog"
	"go.uber.org/zap/zaptest"
)

// sleepRecorder captures every pause the navigator asks for.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func (s *sleepRecorder) all() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

type fixture struct {
	nav    *browser.Navigator
	driver *browsertest.Driver
	dialog *dialog.Recorder
	fs     afero.Fs
	sleeps *sleepRecorder
	cfg    *config.Config
}

func newFixture(t *testing.T, mutate ...func(*config.Config)) *fixture {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.BrowserCfg.DownloadsDir = "/downloads"
	cfg.CookiesCfg.File = "/downloads/cookies.json"
	for _, m := range mutate {
		m(cfg)
	}

	f := &fixture{
		driver: browsertest.New(),
		dialog: &dialog.Recorder{},
		fs:     afero.NewMemMapFs(),
		sleeps: &sleepRecorder{},
		cfg:    cfg,
	}
	f.nav = browser.New(cfg, f.driver.Launcher(), f.dialog, zaptest.NewLogger(t),
		browser.WithFs(f.fs),
		browser.WithSleep(f.sleeps.sleep),
		browser.WithClock(func() time.Time { return time.Date(2025, 3, 9, 14, 5, 7, 0, time.UTC) }),
	)
	return f
}

func (f *fixture) open(t *testing.T) {
	t.Helper()
	require.NoError(t, f.nav.Open(context.Background()))
}

// -- Readiness guard --

func TestGuardBeforeOpen(t *testing.T) {
	ctx := context.Background()
	ops := map[string]func(n *browser.Navigator) (any, error){
		"OpenURL":        func(n *browser.Navigator) (any, error) { return nil, n.OpenURL(ctx, "https://example.com") },
		"NewTab":         func(n *browser.Navigator) (any, error) { return nil, n.NewTab(ctx, "https://example.com") },
		"SwitchTab":      func(n *browser.Navigator) (any, error) { return nil, n.SwitchTab(ctx, 0) },
		"CloseTab":       func(n *browser.Navigator) (any, error) { return nil, n.CloseTab(ctx) },
		"Reload":         func(n *browser.Navigator) (any, error) { return nil, n.Reload(ctx) },
		"Close":          func(n *browser.Navigator) (any, error) { return nil, n.Close(ctx) },
		"EnterFrame":     func(n *browser.Navigator) (any, error) { return nil, n.EnterFrame(ctx, "//iframe") },
		"ExitFrame":      func(n *browser.Navigator) (any, error) { return nil, n.ExitFrame(ctx) },
		"Screenshot":     func(n *browser.Navigator) (any, error) { return n.Screenshot(ctx, "") },
		"Click":          func(n *browser.Navigator) (any, error) { return nil, n.Click(ctx, "//button") },
		"Type":           func(n *browser.Navigator) (any, error) { return nil, n.Type(ctx, "//input", "x") },
		"Clear":          func(n *browser.Navigator) (any, error) { return nil, n.Clear(ctx, "//input") },
		"Hover":          func(n *browser.Navigator) (any, error) { return nil, n.Hover(ctx, "//a") },
		"SelectByText":   func(n *browser.Navigator) (any, error) { return nil, n.SelectByText(ctx, "//select", "a") },
		"SelectByValue":  func(n *browser.Navigator) (any, error) { return nil, n.SelectByValue(ctx, "//select", "1") },
		"Text":           func(n *browser.Navigator) (any, error) { return n.Text(ctx, "//p") },
		"Attribute":      func(n *browser.Navigator) (any, error) { return n.Attribute(ctx, "//a", "href") },
		"ScrollIntoView": func(n *browser.Navigator) (any, error) { return nil, n.ScrollIntoView(ctx, "//p") },
		"WaitInvisible":  func(n *browser.Navigator) (any, error) { return nil, n.WaitInvisible(ctx, "//div") },
		"FindAll":        func(n *browser.Navigator) (any, error) { return n.FindAll(ctx, "//li") },
		"SelectedText":   func(n *browser.Navigator) (any, error) { return n.SelectedText(ctx, "//select") },
		"IsSelected":     func(n *browser.Navigator) (any, error) { return n.IsSelected(ctx, "//input") },
		"IsEnabled":      func(n *browser.Navigator) (any, error) { return n.IsEnabled(ctx, "//input") },
		"SaveCookies":    func(n *browser.Navigator) (any, error) { return nil, n.SaveCookies(ctx, "") },
		"LoadCookies":    func(n *browser.Navigator) (any, error) { return nil, n.LoadCookies(ctx, "") },
	}

	for op, call := range ops {
		t.Run(op, func(t *testing.T) {
			f := newFixture(t)

			var (
				result any
				err    error
			)
			require.NotPanics(t, func() { result, err = call(f.nav) })

			assert.ErrorIs(t, err, browser.ErrNotOpen)
			assert.Contains(t, err.Error(), op)
			switch v := result.(type) {
			case nil:
			case string:
				assert.Empty(t, v)
			case bool:
				assert.False(t, v)
			case []browser.Element:
				assert.Empty(t, v)
			default:
				t.Fatalf("unexpected result type %T", v)
			}

			errs := f.dialog.Kind("error")
			require.Len(t, errs, 1, "exactly one notification per guarded call")
			assert.Contains(t, errs[0].Message, fmt.Sprintf("'%s'", op))
			assert.Len(t, f.dialog.Messages(), 1)
			assert.Empty(t, f.driver.Calls(""), "the driver must never be touched")
		})
	}

	t.Run("verification helpers report false", func(t *testing.T) {
		f := newFixture(t)
		assert.False(t, f.nav.IsClickable(ctx, "//button", time.Second))
		assert.False(t, f.nav.Exists(ctx, "//button", time.Second))
		assert.Len(t, f.dialog.Kind("error"), 2)
	})
}

// -- Session lifecycle --

func TestOpenClose(t *testing.T) {
	ctx := context.Background()

	t.Run("open and close", func(t *testing.T) {
		f := newFixture(t)
		assert.False(t, f.nav.IsOpen())

		f.open(t)
		assert.True(t, f.nav.IsOpen())
		assert.NotEmpty(t, f.nav.SessionID())

		assert.ErrorIs(t, f.nav.Open(ctx), browser.ErrAlreadyOpen)

		require.NoError(t, f.nav.Close(ctx))
		assert.True(t, f.driver.Quitted)
		assert.False(t, f.nav.IsOpen())
		assert.Empty(t, f.nav.SessionID())

		assert.ErrorIs(t, f.nav.Click(ctx, "//a"), browser.ErrNotOpen)
	})

	t.Run("launch failure leaves the navigator closed", func(t *testing.T) {
		cfg := config.NewDefaultConfig()
		nav := browser.New(cfg, browsertest.FailingLauncher(browser.ErrUnsupportedBrowser), &dialog.Recorder{}, zaptest.NewLogger(t))
		err := nav.Open(ctx)
		assert.ErrorIs(t, err, browser.ErrUnsupportedBrowser)
		assert.False(t, nav.IsOpen())
	})

	t.Run("quit failure still releases the session", func(t *testing.T) {
		f := newFixture(t)
		f.open(t)
		f.driver.Fail("Quit", errors.New("process already gone"))

		assert.Error(t, f.nav.Close(ctx))
		assert.False(t, f.nav.IsOpen())
	})
}

func TestTabsAndFrames(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.open(t)

	require.NoError(t, f.nav.OpenURL(ctx, "https://one.example"))
	require.NoError(t, f.nav.NewTab(ctx, "https://two.example"))
	assert.Equal(t, "https://two.example", f.driver.URL())

	require.NoError(t, f.nav.SwitchTab(ctx, 0))
	assert.Equal(t, "https://one.example", f.driver.URL())
	assert.ErrorIs(t, f.nav.SwitchTab(ctx, 5), browser.ErrNoSuchTab)

	require.NoError(t, f.nav.CloseTab(ctx))
	assert.Equal(t, "https://two.example", f.driver.URL(), "focus falls back to the last tab")

	require.NoError(t, f.nav.Reload(ctx))

	f.driver.Add("//iframe[@id='pay']", &browsertest.Node{Tag: "iframe"})
	require.NoError(t, f.nav.EnterFrame(ctx, "//iframe[@id='pay']"))
	assert.Equal(t, []string{"//iframe[@id='pay']"}, f.driver.Frames)
	require.NoError(t, f.nav.ExitFrame(ctx))
	assert.Empty(t, f.driver.Frames)

	assert.ErrorIs(t, f.nav.EnterFrame(ctx, "//iframe[@id='missing']"), browser.ErrElementTimeout)
}

func TestScreenshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.open(t)

	path, err := f.nav.Screenshot(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/downloads", "screenshot_20250309_140507.png"), path)

	data, err := afero.ReadFile(f.fs, path)
	require.NoError(t, err)
	assert.Equal(t, f.driver.PNG, data)

	path, err = f.nav.Screenshot(ctx, "checkout")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/downloads", "checkout.png"), path)
}
