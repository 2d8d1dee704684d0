// File: internal/fsutil/archive_test.go
package fsutil

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/automaweb/internal/dialog"
	"go.uber.org/zap/zaptest"
)

// snapshot maps every file below root, relative to it, to its contents.
func snapshot(t *testing.T, fs afero.Fs, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	paths, err := New(fs, nil).ListRecursive(root, "")
	require.NoError(t, err)
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		data, err := afero.ReadFile(fs, p)
		require.NoError(t, err)
		out[filepath.ToSlash(rel)] = string(data)
	}
	return out
}

func TestCompressExtractRoundTrip(t *testing.T) {
	rec := &dialog.Recorder{}
	f, fs := setupFiles(t, WithNotifier(rec))
	ctx := context.Background()

	writeFile(t, fs, "/project/readme.md", "# hello")
	writeFile(t, fs, "/project/src/main.txt", "main body")
	writeFile(t, fs, "/project/src/nested/deep.bin", string([]byte{0, 1, 2, 3}))
	require.NoError(t, fs.MkdirAll("/project/empty", 0o755))

	require.NoError(t, f.CreateDir("/out"))
	archive, err := f.Compress(ctx, "/project", "/out/backup")
	require.NoError(t, err)
	assert.Equal(t, "/out/backup.zip", archive)

	require.NoError(t, f.Extract(ctx, archive, "/restored"))

	if diff := cmp.Diff(snapshot(t, fs, "/project"), snapshot(t, fs, "/restored")); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, f.Exists("/restored/empty"), "empty directories survive the round trip")

	infos := rec.Kind("info")
	require.Len(t, infos, 2)
	assert.Equal(t, "File /out/backup.zip created!", infos[0].Message)
	assert.Equal(t, "Extracted to: /restored", infos[1].Message)
}

func TestCompressSingleFile(t *testing.T) {
	f, fs := setupFiles(t)
	ctx := context.Background()
	writeFile(t, fs, "/docs/invoice.pdf", "pdf-bytes")

	archive, err := f.Compress(ctx, "/docs/invoice.pdf", "/docs/invoice.zip")
	require.NoError(t, err)
	assert.Equal(t, "/docs/invoice.zip", archive)

	require.NoError(t, f.Extract(ctx, archive, "/unpacked"))
	data, err := afero.ReadFile(fs, "/unpacked/invoice.pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(data))
}

func TestCompressSkipsArchiveInsideSource(t *testing.T) {
	f, fs := setupFiles(t)
	writeFile(t, fs, "/dir/a.txt", "a")

	archive, err := f.Compress(context.Background(), "/dir", "/dir/self")
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, archive)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "a.txt", zr.File[0].Name)
}

func TestExtractRejectsTraversal(t *testing.T) {
	f, fs := setupFiles(t)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("../../etc/evil.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("nope"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, afero.WriteFile(fs, "/evil.zip", buf.Bytes(), 0o644))

	err = f.Extract(context.Background(), "/evil.zip", "/safe/dest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes destination")
	assert.False(t, f.Exists("/etc/evil.txt"))
}

func TestExtractMissingArchive(t *testing.T) {
	f, _ := setupFiles(t)
	assert.Error(t, f.Extract(context.Background(), "/nope.zip", "/dest"))
}

func TestExtractIntoRelativeAndRootDestinations(t *testing.T) {
	ctx := context.Background()

	t.Run("current directory", func(t *testing.T) {
		base := t.TempDir()
		f := New(afero.NewOsFs(), zaptest.NewLogger(t))
		writeFile(t, f.Fs(), filepath.Join(base, "src", "a.txt"), "alpha")
		writeFile(t, f.Fs(), filepath.Join(base, "src", "sub", "b.txt"), "beta")

		archive, err := f.Compress(ctx, filepath.Join(base, "src"), filepath.Join(base, "bundle"))
		require.NoError(t, err)

		dest := filepath.Join(base, "dest")
		require.NoError(t, os.Mkdir(dest, 0o755))
		t.Chdir(dest)

		require.NoError(t, f.Extract(ctx, archive, "."))
		if diff := cmp.Diff(snapshot(t, f.Fs(), filepath.Join(base, "src")), snapshot(t, f.Fs(), dest)); diff != "" {
			t.Errorf("extract into . mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("filesystem root", func(t *testing.T) {
		fs := afero.NewBasePathFs(afero.NewOsFs(), t.TempDir())
		f := New(fs, zaptest.NewLogger(t))
		writeFile(t, fs, "/src/a.txt", "alpha")

		archive, err := f.Compress(ctx, "/src", "/bundle")
		require.NoError(t, err)
		require.NoError(t, f.Extract(ctx, archive, "/"))

		data, err := afero.ReadFile(fs, "/a.txt")
		require.NoError(t, err)
		assert.Equal(t, "alpha", string(data))
	})
}

// unreadableFs fails to open one path so compression breaks midway.
type unreadableFs struct {
	afero.Fs
	path string
}

func (u unreadableFs) Open(name string) (afero.File, error) {
	if filepath.Clean(name) == u.path {
		return nil, errors.New("permission denied")
	}
	return u.Fs.Open(name)
}

func TestCompressRemovesPartialArchive(t *testing.T) {
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/project/a.txt", "a")
	writeFile(t, mem, "/project/b.txt", "b")
	require.NoError(t, mem.MkdirAll("/out", 0o755))

	f := New(unreadableFs{Fs: mem, path: "/project/b.txt"}, zaptest.NewLogger(t))
	archive, err := f.Compress(context.Background(), "/project", "/out/backup")
	require.Error(t, err)
	assert.Empty(t, archive)

	exists, err := afero.Exists(mem, "/out/backup.zip")
	require.NoError(t, err)
	assert.False(t, exists, "a failed compression leaves no archive behind")
}
