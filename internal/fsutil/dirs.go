// File: internal/fsutil/dirs.go
package fsutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// CreateDir makes the directory and any missing parents. Existing directories are fine.
func (f *Files) CreateDir(path string) error {
	if err := f.fs.MkdirAll(path, 0o755); err != nil {
		f.logger.Error("Failed to create directory.", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	f.logger.Debug("Directory ensured.", zap.String("path", path))
	return nil
}

// List returns the sorted entry names in dir, optionally keeping only names
// ending in ext (e.g. ".pdf").
func (f *Files) List(dir, ext string) ([]string, error) {
	entries, err := afero.ReadDir(f.fs, dir)
	if err != nil {
		f.logger.Error("Failed to list directory.", zap.String("dir", dir), zap.Error(err))
		return []string{}, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if ext == "" || strings.HasSuffix(e.Name(), ext) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ListRecursive returns the full paths of every file below dir, optionally
// filtered by extension. Directories themselves are not listed.
func (f *Files) ListRecursive(dir, ext string) ([]string, error) {
	found := []string{}
	err := afero.Walk(f.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if ext == "" || strings.HasSuffix(info.Name(), ext) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		f.logger.Error("Recursive listing failed.", zap.String("dir", dir), zap.Error(err))
		return []string{}, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	return found, nil
}

// IsEmpty reports whether dir has no files or subdirectories.
func (f *Files) IsEmpty(dir string) (bool, error) {
	empty, err := afero.IsEmpty(f.fs, dir)
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s: %w", dir, err)
	}
	return empty, nil
}

// DeleteTree removes dir and everything in it. A missing directory produces a
// warning notification and no error.
func (f *Files) DeleteTree(ctx context.Context, dir string) error {
	if !f.Exists(dir) {
		f.logger.Warn("Folder not found.", zap.String("dir", dir))
		f.notify(ctx, "warning", "Warning", "Folder not found.")
		return nil
	}
	if err := f.fs.RemoveAll(dir); err != nil {
		f.logger.Error("Failed to delete folder.", zap.String("dir", dir), zap.Error(err))
		return fmt.Errorf("failed to delete folder %s: %w", dir, err)
	}
	f.logger.Info("Folder removed.", zap.String("dir", dir))
	f.notify(ctx, "info", "Success", fmt.Sprintf("Folder removed: %s", dir))
	return nil
}

// Newest returns the path of the most recently modified file in dir,
// optionally filtered by extension. It returns "" when nothing matches,
// which is how the latest browser download is usually located.
func (f *Files) Newest(dir, ext string) (string, error) {
	entries, err := afero.ReadDir(f.fs, dir)
	if err != nil {
		f.logger.Error("Failed to search for newest file.", zap.String("dir", dir), zap.Error(err))
		return "", fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var newest os.FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext != "" && !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		if newest == nil || e.ModTime().After(newest.ModTime()) {
			newest = e
		}
	}
	if newest == nil {
		return "", nil
	}
	return filepath.Join(dir, newest.Name()), nil
}
