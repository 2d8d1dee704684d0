// File: cmd/root_test.go
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/automaweb/internal/browser"
	"github.com/xkilldash9x/automaweb/internal/browser/browsertest"
	"github.com/xkilldash9x/automaweb/internal/config"
	"github.com/xkilldash9x/automaweb/internal/dialog"
	"github.com/xkilldash9x/automaweb/internal/observability"
	"go.uber.org/zap"
)

// harness swaps the injected dependencies for in-memory fakes.
type harness struct {
	fs     afero.Fs
	driver *browsertest.Driver
	dialog *dialog.Recorder
}

// resetForTest provides the single source of truth for resetting test state.
func resetForTest(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		fs:     afero.NewMemMapFs(),
		driver: browsertest.New(),
		dialog: &dialog.Recorder{},
	}

	origLaunch, origDialogs, origFs := launchBrowser, newDialogs, appFs
	launchBrowser = h.driver.Launcher()
	newDialogs = func(config.DialogsConfig, *zap.Logger) dialog.Dialogs { return h.dialog }
	appFs = h.fs
	observability.ResetForTest()

	t.Cleanup(func() {
		launchBrowser, newDialogs, appFs = origLaunch, origDialogs, origFs
		observability.ResetForTest()
	})

	t.Setenv("AUTOMAWEB_LOGGER_LEVEL", "error")
	t.Setenv("AUTOMAWEB_BROWSER_DOWNLOADS_DIR", "/downloads")
	t.Setenv("AUTOMAWEB_COOKIES_FILE", "/downloads/cookies.json")
	t.Setenv("AUTOMAWEB_BROWSER_RETRY_DELAY", "0s")
	return h
}

// executeCommand runs the root command with args and returns stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCmd_VersionFlag(t *testing.T) {
	resetForTest(t)
	out, err := executeCommand(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "automaweb version "+Version+"\n", out)
}

func TestVersionCmd(t *testing.T) {
	resetForTest(t)
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "automaweb version "+Version+"\n", out)
}

func TestRootCmd_NoArgsPrintsHelp(t *testing.T) {
	resetForTest(t)
	out, err := executeCommand(t)
	require.NoError(t, err)
	assert.Contains(t, out, "automaweb runs scripted browser sessions")
	assert.Contains(t, out, "screenshot")
}

func TestRootCmd_InvalidConfigFromEnv(t *testing.T) {
	resetForTest(t)
	t.Setenv("AUTOMAWEB_BROWSER_NAME", "safari")

	_, err := executeCommand(t, "files", "mkdir", "/tmp/x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load or validate config")
	assert.Contains(t, err.Error(), `name "safari" is not supported`)
}

func TestRootCmd_FlagsOverrideConfigFile(t *testing.T) {
	h := resetForTest(t)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("browser:\n  name: chrome\n  headless: false\n"), 0o644))

	var seen config.BrowserConfig
	launchBrowser = func(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (browser.Driver, error) {
		seen = cfg
		return h.driver, nil
	}

	_, err := executeCommand(t, "--config", cfgPath, "--headless", "--browser", "firefox", "screenshot", "https://example.com", "--name", "shot")
	require.NoError(t, err)
	assert.Equal(t, config.BrowserFirefox, seen.Name)
	assert.True(t, seen.Headless)
	assert.Equal(t, config.DriverPlaywright, seen.ResolvedDriver())
}

func TestRootCmd_ConfigFileErrors(t *testing.T) {
	resetForTest(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("browser: [unclosed"), 0o644))

	_, err := executeCommand(t, "--config", cfgPath, "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestConfigFromContext_Missing(t *testing.T) {
	_, err := configFromContext(context.Background())
	assert.EqualError(t, err, "configuration not loaded")
}
