// File: internal/dialog/headless.go
package dialog

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// ErrDeclined is returned by Acknowledge when the user dismisses the prompt.
var ErrDeclined = errors.New("confirmation declined")

// Headless logs messages instead of displaying them. Pickers always behave
// as if the user cancelled, and Acknowledge succeeds immediately.
type Headless struct {
	logger *zap.Logger
}

var _ Dialogs = (*Headless)(nil)

func NewHeadless(logger *zap.Logger) *Headless {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Headless{logger: logger.Named("dialog")}
}

func (h *Headless) Error(_ context.Context, title, message string) {
	h.logger.Error(message, zap.String("title", title))
}

func (h *Headless) Warning(_ context.Context, title, message string) {
	h.logger.Warn(message, zap.String("title", title))
}

func (h *Headless) Info(_ context.Context, title, message string) {
	h.logger.Info(message, zap.String("title", title))
}

func (h *Headless) Acknowledge(ctx context.Context, title, message string) error {
	h.logger.Info(message, zap.String("title", title), zap.Bool("auto_confirmed", true))
	return ctx.Err()
}

func (h *Headless) SelectFile(_ context.Context, title string, _ ...Filter) (string, error) {
	h.logger.Warn("File picker unavailable without dialogs; treating as cancelled.", zap.String("title", title))
	return "", nil
}

func (h *Headless) SelectFiles(_ context.Context, title string) ([]string, error) {
	h.logger.Warn("File picker unavailable without dialogs; treating as cancelled.", zap.String("title", title))
	return []string{}, nil
}

func (h *Headless) SelectDir(_ context.Context, title string) (string, error) {
	h.logger.Warn("Folder picker unavailable without dialogs; treating as cancelled.", zap.String("title", title))
	return "", nil
}
