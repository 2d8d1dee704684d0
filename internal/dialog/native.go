// File: internal/dialog/native.go
package dialog

import (
	"context"
	"errors"
	"fmt"

	"github.com/ncruces/zenity"
	"go.uber.org/zap"
)

// Native shows real desktop dialogs through zenity.
type Native struct {
	logger *zap.Logger
}

var _ Dialogs = (*Native)(nil)

// NewNative creates a Native dialog provider.
func NewNative(logger *zap.Logger) *Native {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Native{logger: logger.Named("dialog")}
}

func (n *Native) Error(ctx context.Context, title, message string) {
	n.show(ctx, zenity.Error, title, message)
}

func (n *Native) Warning(ctx context.Context, title, message string) {
	n.show(ctx, zenity.Warning, title, message)
}

func (n *Native) Info(ctx context.Context, title, message string) {
	n.show(ctx, zenity.Info, title, message)
}

// Acknowledge shows a warning box and waits for OK. Closing the box counts
// as a refusal.
func (n *Native) Acknowledge(ctx context.Context, title, message string) error {
	err := zenity.Warning(message, zenity.Title(title), zenity.Context(ctx))
	if errors.Is(err, zenity.ErrCanceled) {
		return fmt.Errorf("%s: %w", title, ErrDeclined)
	}
	if err != nil {
		return fmt.Errorf("failed to show confirmation dialog: %w", err)
	}
	return nil
}

func (n *Native) show(ctx context.Context, fn func(string, ...zenity.Option) error, title, message string) {
	if err := fn(message, zenity.Title(title), zenity.Context(ctx)); err != nil && !errors.Is(err, zenity.ErrCanceled) {
		// The message still reaches the log even when no display is available.
		n.logger.Warn("Could not display dialog.", zap.String("title", title), zap.String("message", message), zap.Error(err))
	}
}

func (n *Native) SelectFile(ctx context.Context, title string, filters ...Filter) (string, error) {
	opts := []zenity.Option{zenity.Title(title), zenity.Context(ctx)}
	if len(filters) > 0 {
		opts = append(opts, toZenityFilters(filters))
	}
	path, err := zenity.SelectFile(opts...)
	if errors.Is(err, zenity.ErrCanceled) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("file selection failed: %w", err)
	}
	return path, nil
}

func (n *Native) SelectFiles(ctx context.Context, title string) ([]string, error) {
	paths, err := zenity.SelectFileMultiple(zenity.Title(title), zenity.Context(ctx))
	if errors.Is(err, zenity.ErrCanceled) {
		return []string{}, nil
	}
	if err != nil {
		return []string{}, fmt.Errorf("file selection failed: %w", err)
	}
	if paths == nil {
		paths = []string{}
	}
	return paths, nil
}

func (n *Native) SelectDir(ctx context.Context, title string) (string, error) {
	path, err := zenity.SelectFile(zenity.Title(title), zenity.Directory(), zenity.Context(ctx))
	if errors.Is(err, zenity.ErrCanceled) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("folder selection failed: %w", err)
	}
	return path, nil
}

func toZenityFilters(filters []Filter) zenity.FileFilters {
	out := make(zenity.FileFilters, 0, len(filters))
	for _, f := range filters {
		out = append(out, zenity.FileFilter{Name: f.Name, Patterns: f.Patterns, CaseFold: true})
	}
	return out
}
