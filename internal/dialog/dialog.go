// File: internal/dialog/dialog.go
package dialog

import (
	"context"

	"github.com/xkilldash9x/automaweb/internal/config"
	"go.uber.org/zap"
)

// Notifier shows messages to the person running an automation.
// Every method blocks until the message has been dismissed, except for
// implementations that have nobody to show it to.
type Notifier interface {
	Error(ctx context.Context, title, message string)
	Warning(ctx context.Context, title, message string)
	Info(ctx context.Context, title, message string)
	// Acknowledge blocks until the user confirms they are ready to continue.
	Acknowledge(ctx context.Context, title, message string) error
}

// Filter restricts a file picker to matching names, e.g. {"PDF", ["*.pdf"]}.
type Filter struct {
	Name     string
	Patterns []string
}

// Picker asks the user to choose files or folders. A cancelled dialog is
// not an error: it yields "" or an empty slice with a nil error.
type Picker interface {
	SelectFile(ctx context.Context, title string, filters ...Filter) (string, error)
	SelectFiles(ctx context.Context, title string) ([]string, error)
	SelectDir(ctx context.Context, title string) (string, error)
}

// Dialogs combines both capabilities.
type Dialogs interface {
	Notifier
	Picker
}

// Default titles used by callers that do not supply their own.
const (
	TitleSelectFile  = "Select a file"
	TitleSelectFiles = "Select files"
	TitleSelectDir   = "Select a folder"
)

// New returns native dialogs when enabled, otherwise a log-only implementation.
func New(cfg config.DialogsConfig, logger *zap.Logger) Dialogs {
	if cfg.Enabled {
		return NewNative(logger)
	}
	return NewHeadless(logger)
}
