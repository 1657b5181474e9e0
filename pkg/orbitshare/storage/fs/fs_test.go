package fs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()

	backend, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)

	return backend
}

func TestNew(t *testing.T) {
	t.Run("requires base directory", func(t *testing.T) {
		_, err := New(Config{})
		assert.Error(t, err)
	})

	t.Run("creates base directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "data")
		_, err := New(Config{BaseDir: dir})
		require.NoError(t, err)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}

func TestBackendRoundTrip(t *testing.T) {
	backend := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, backend.Upload(ctx, "resources/ab/cdef_notes.pdf", strings.NewReader("pdf bytes")))

	rc, err := backend.Download(ctx, "resources/ab/cdef_notes.pdf")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(data))
}

func TestBackendMeta(t *testing.T) {
	backend := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, backend.Upload(ctx, "key.txt", strings.NewReader("plain text here")))

	meta, err := backend.Meta(ctx, "key.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(len("plain text here")), meta.Size)
	assert.Contains(t, meta.ContentType, "text/plain")
}

func TestBackendDeleteCleansEmptyDirectories(t *testing.T) {
	backend := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, backend.Upload(ctx, "resources/ab/only-file", strings.NewReader("x")))
	require.NoError(t, backend.Delete(ctx, "resources/ab/only-file"))

	_, err := os.Stat(filepath.Join(backend.baseDir, "resources"))
	assert.True(t, os.IsNotExist(err))

	// Base directory itself survives.
	_, err = os.Stat(backend.baseDir)
	assert.NoError(t, err)
}

func TestBackendMissingObject(t *testing.T) {
	backend := newTestBackend(t)
	ctx := context.Background()

	_, err := backend.Download(ctx, "missing")
	assert.EqualError(t, err, "object not found")

	assert.EqualError(t, backend.Delete(ctx, "missing"), "object not found")

	_, err = backend.Meta(ctx, "missing")
	assert.EqualError(t, err, "object not found")
}
