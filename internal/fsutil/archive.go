// File: internal/fsutil/archive.go
package fsutil

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Compress packs src into "<name>.zip" and returns the archive path. When src
// is a directory its contents are stored relative to it; a single file is
// stored under its base name.
func (f *Files) Compress(ctx context.Context, src, name string) (archivePath string, err error) {
	target := strings.TrimSuffix(name, ".zip") + ".zip"

	info, err := f.fs.Stat(src)
	if err != nil {
		return "", fmt.Errorf("failed to compress %s: %w", src, err)
	}

	out, err := f.fs.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create archive %s: %w", target, err)
	}
	// Runs after the close below; a truncated archive is never left behind.
	defer func() {
		if err != nil {
			if rerr := f.fs.Remove(target); rerr != nil {
				f.logger.Warn("Could not remove partial archive.", zap.String("archive", target), zap.Error(rerr))
			}
		}
	}()
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			archivePath = ""
			err = fmt.Errorf("failed to finalize archive %s: %w", target, cerr)
		}
	}()

	zw := zip.NewWriter(out)
	if info.IsDir() {
		err = f.addDir(zw, src, target)
	} else {
		err = f.addFile(zw, src, filepath.Base(src), info)
	}
	if err != nil {
		_ = zw.Close()
		f.logger.Error("Compression failed.", zap.String("src", src), zap.Error(err))
		return "", fmt.Errorf("failed to compress %s: %w", src, err)
	}
	if err = zw.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize archive %s: %w", target, err)
	}

	f.logger.Info("Archive created.", zap.String("archive", target))
	f.notify(ctx, "info", "Success", fmt.Sprintf("File %s created!", target))
	return target, nil
}

func (f *Files) addDir(zw *zip.Writer, root, archivePath string) error {
	absArchive, _ := filepath.Abs(archivePath)
	return afero.Walk(f.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		// Never include the archive in itself when it is written inside root.
		if abs, _ := filepath.Abs(path); abs == absArchive {
			return nil
		}
		name := filepath.ToSlash(rel)
		if info.IsDir() {
			hdr, err := zip.FileInfoHeader(info)
			if err != nil {
				return err
			}
			hdr.Name = name + "/"
			_, err = zw.CreateHeader(hdr)
			return err
		}
		return f.addFile(zw, path, name, info)
	})
}

func (f *Files) addFile(zw *zip.Writer, path, name string, info os.FileInfo) error {
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	in, err := f.fs.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()
	_, err = io.Copy(w, in)
	return err
}

// Extract unpacks a zip archive into dest, creating it if needed. Entries that
// would land outside dest are rejected.
func (f *Files) Extract(ctx context.Context, archivePath, dest string) error {
	in, err := f.fs.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat archive %s: %w", archivePath, err)
	}
	zr, err := zip.NewReader(in, info.Size())
	if err != nil {
		return fmt.Errorf("failed to read archive %s: %w", archivePath, err)
	}

	if err := f.fs.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}

	for _, entry := range zr.File {
		name := filepath.FromSlash(entry.Name)
		if !filepath.IsLocal(name) {
			return fmt.Errorf("archive entry %q escapes destination", entry.Name)
		}
		target := filepath.Join(dest, name)

		if entry.FileInfo().IsDir() {
			if err := f.fs.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := f.extractEntry(entry, target); err != nil {
			f.logger.Error("Extraction failed.", zap.String("entry", entry.Name), zap.Error(err))
			return fmt.Errorf("failed to extract %s: %w", entry.Name, err)
		}
	}

	f.logger.Info("Archive extracted.", zap.String("archive", archivePath), zap.String("dest", dest))
	f.notify(ctx, "info", "Success", fmt.Sprintf("Extracted to: %s", dest))
	return nil
}

func (f *Files) extractEntry(entry *zip.File, target string) (err error) {
	if err := f.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := entry.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	mode := entry.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := f.fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(out, rc)
	return err
}
