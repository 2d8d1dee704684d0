// File: internal/dialog/dialog_test.go
package dialog

import (
	"context"
	"testing"

	"github.com/ncruces/zenity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/automaweb/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewSelectsImplementation(t *testing.T) {
	assert.IsType(t, &Native{}, New(config.DialogsConfig{Enabled: true}, nil))
	assert.IsType(t, &Headless{}, New(config.DialogsConfig{Enabled: false}, nil))
}

func TestHeadless(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := NewHeadless(zap.New(core))
	ctx := context.Background()

	h.Error(ctx, "Error", "boom")
	h.Warning(ctx, "Warning", "careful")
	h.Info(ctx, "Success", "done")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "boom", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[2].Level)
	assert.Equal(t, "Success", entries[2].ContextMap()["title"])

	t.Run("pickers behave as cancelled", func(t *testing.T) {
		file, err := h.SelectFile(ctx, TitleSelectFile, Filter{Name: "PDF", Patterns: []string{"*.pdf"}})
		require.NoError(t, err)
		assert.Empty(t, file)

		files, err := h.SelectFiles(ctx, TitleSelectFiles)
		require.NoError(t, err)
		assert.NotNil(t, files)
		assert.Empty(t, files)

		dir, err := h.SelectDir(ctx, TitleSelectDir)
		require.NoError(t, err)
		assert.Empty(t, dir)
	})

	t.Run("acknowledge follows the context", func(t *testing.T) {
		assert.NoError(t, h.Acknowledge(ctx, "Attention", "ready?"))

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, h.Acknowledge(cancelled, "Attention", "ready?"), context.Canceled)
	})
}

func TestToZenityFilters(t *testing.T) {
	got := toZenityFilters([]Filter{
		{Name: "All files", Patterns: []string{"*.*"}},
		{Name: "Spreadsheets", Patterns: []string{"*.xlsx", "*.csv"}},
	})
	require.Len(t, got, 2)
	assert.Equal(t, zenity.FileFilter{Name: "Spreadsheets", Patterns: []string{"*.xlsx", "*.csv"}, CaseFold: true}, got[1])
}

func TestRecorder(t *testing.T) {
	r := &Recorder{File: "/tmp/a.txt"}
	ctx := context.Background()

	r.Error(ctx, "Error", "Click: browser not open")
	r.Info(ctx, "Success", "ok")

	assert.Len(t, r.Messages(), 2)
	require.Len(t, r.Kind("error"), 1)
	assert.Equal(t, "Click: browser not open", r.Kind("error")[0].Message)

	file, err := r.SelectFile(ctx, "t", Filter{Name: "Text", Patterns: []string{"*.txt"}})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/a.txt", file)
	assert.Equal(t, "Text", r.Filters[0].Name)

	files, err := r.SelectFiles(ctx, "t")
	require.NoError(t, err)
	assert.Empty(t, files)
}
