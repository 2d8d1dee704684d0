// File: internal/fsutil/files.go
package fsutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/xkilldash9x/automaweb/internal/dialog"
	"go.uber.org/zap"
)

// ErrWaitTimeout is returned by WaitForFile when the path never appears.
var ErrWaitTimeout = errors.New("timed out waiting for file")

// DefaultPollInterval is used when no interval is configured.
const DefaultPollInterval = 250 * time.Millisecond

// Files groups the local filesystem helpers used by automation scripts.
// All operations go through an afero.Fs so they can run against memory in tests.
type Files struct {
	fs           afero.Fs
	logger       *zap.Logger
	notifier     dialog.Notifier
	pollInterval time.Duration
}

// Option configures a Files instance.
type Option func(*Files)

// WithNotifier makes DeleteTree, Compress and Extract report their outcome
// through n in addition to the log.
func WithNotifier(n dialog.Notifier) Option {
	return func(f *Files) { f.notifier = n }
}

// WithPollInterval sets how often WaitForFile checks for the path.
func WithPollInterval(d time.Duration) Option {
	return func(f *Files) {
		if d > 0 {
			f.pollInterval = d
		}
	}
}

// New creates a Files helper. A nil fs means the real operating system.
func New(fs afero.Fs, logger *zap.Logger, opts ...Option) *Files {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Files{
		fs:           fs,
		logger:       logger.Named("fsutil"),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fs exposes the underlying filesystem.
func (f *Files) Fs() afero.Fs { return f.fs }

// Rename gives a file a new name inside its current directory and returns the new path.
func (f *Files) Rename(path, newName string) (string, error) {
	newPath := filepath.Join(filepath.Dir(path), newName)
	if err := f.fs.Rename(path, newPath); err != nil {
		f.logger.Error("Failed to rename file.", zap.String("path", path), zap.Error(err))
		return "", fmt.Errorf("failed to rename %s: %w", path, err)
	}
	f.logger.Info("File renamed.", zap.String("from", path), zap.String("to", newPath))
	return newPath, nil
}

// Move relocates src to dst. When dst is an existing directory the file keeps
// its name inside it. If a plain rename is impossible, as across devices,
// the file is copied and the original removed.
func (f *Files) Move(src, dst string) error {
	dst = f.resolveTarget(src, dst)

	if err := f.fs.Rename(src, dst); err != nil {
		var linkErr *os.LinkError
		if !errors.As(err, &linkErr) {
			f.logger.Error("Failed to move file.", zap.String("src", src), zap.Error(err))
			return fmt.Errorf("failed to move %s: %w", src, err)
		}
		f.logger.Debug("Rename failed, falling back to copy and remove.", zap.String("src", src), zap.Error(err))
		if err := f.copyFile(src, dst); err != nil {
			return fmt.Errorf("failed to move %s: %w", src, err)
		}
		if err := f.fs.Remove(src); err != nil {
			return fmt.Errorf("moved %s but could not remove the original: %w", src, err)
		}
	}
	f.logger.Info("File moved.", zap.String("from", src), zap.String("to", dst))
	return nil
}

// Copy duplicates src at dst, keeping the permission bits and modification time.
func (f *Files) Copy(src, dst string) error {
	dst = f.resolveTarget(src, dst)
	if err := f.copyFile(src, dst); err != nil {
		f.logger.Error("Failed to copy file.", zap.String("src", src), zap.Error(err))
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	f.logger.Info("File copied.", zap.String("to", dst))
	return nil
}

// Delete removes a single file. A missing file is logged and not treated as an error.
func (f *Files) Delete(path string) error {
	if !f.Exists(path) {
		f.logger.Warn("File not found for deletion.", zap.String("path", path))
		return nil
	}
	if err := f.fs.Remove(path); err != nil {
		f.logger.Error("Failed to delete file.", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	f.logger.Info("File deleted.", zap.String("path", path))
	return nil
}

// Exists reports whether a file or directory is present. Errors count as absent.
func (f *Files) Exists(path string) bool {
	ok, err := afero.Exists(f.fs, path)
	return err == nil && ok
}

// resolveTarget places src inside dst when dst is an existing directory.
func (f *Files) resolveTarget(src, dst string) string {
	if isDir, err := afero.IsDir(f.fs, dst); err == nil && isDir {
		return filepath.Join(dst, filepath.Base(src))
	}
	return dst
}

func (f *Files) copyFile(src, dst string) (err error) {
	info, err := f.fs.Stat(src)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", src)
	}

	in, err := f.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := f.fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	if err = f.fs.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return f.fs.Chtimes(dst, info.ModTime(), info.ModTime())
}

// notify forwards a message to the optional notifier.
func (f *Files) notify(ctx context.Context, kind, title, message string) {
	if f.notifier == nil {
		return
	}
	switch kind {
	case "info":
		f.notifier.Info(ctx, title, message)
	case "warning":
		f.notifier.Warning(ctx, title, message)
	}
}
