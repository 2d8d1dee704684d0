// File: internal/browser/launcher/launcher_test.go
package launcher

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/automaweb/internal/browser"
	"github.com/xkilldash9x/automaweb/internal/browser/cdpdriver"
	"github.com/xkilldash9x/automaweb/internal/browser/pwdriver"
	"github.com/xkilldash9x/automaweb/internal/config"
	"go.uber.org/zap/zaptest"
)

func funcPointer(f any) uintptr {
	return reflect.ValueOf(f).Pointer()
}

func TestFor(t *testing.T) {
	got, err := For(config.DriverChromedp)
	require.NoError(t, err)
	assert.Equal(t, funcPointer(cdpdriver.Launch), funcPointer(got))

	got, err = For(config.DriverPlaywright)
	require.NoError(t, err)
	assert.Equal(t, funcPointer(pwdriver.Launch), funcPointer(got))

	_, err = For("selenium")
	assert.ErrorIs(t, err, browser.ErrUnsupportedBrowser)
}

func TestLaunch_UnknownDriver(t *testing.T) {
	cfg := config.BrowserConfig{Name: config.BrowserChrome, Driver: "selenium"}
	d, err := Launch(context.Background(), cfg, zaptest.NewLogger(t))
	assert.Nil(t, d)
	assert.ErrorIs(t, err, browser.ErrUnsupportedBrowser)
}
