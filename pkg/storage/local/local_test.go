package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestNewCreatesBaseDirectory(t *testing.T) {
	base := filepath.Join(t.TempDir(), "wwwroot", "uploads")
	store, err := New(base)
	require.NoError(t, err)
	assert.DirExists(t, base)
	assert.Equal(t, base, store.BasePath())
	assert.Equal(t, "local", store.Type())
	require.NoError(t, store.Ping(context.Background()))
}

func TestPutGetDelete(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.PutObject(ctx, "abc.png", bytes.NewReader([]byte("data")), "image/png", 4))

	exists, err := store.ObjectExists(ctx, "abc.png")
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := store.GetObject(ctx, "abc.png")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "data", string(body))

	require.NoError(t, store.DeleteObject(ctx, "abc.png"))
	exists, err = store.ObjectExists(ctx, "abc.png")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeleteAbsentObjectIsTolerated(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.DeleteObject(context.Background(), "never-written.png"))
}

func TestGetMissingObjectWrapsNotExist(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	_, err = store.GetObject(context.Background(), "missing.png")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestPutObjectRemovesPartialFile(t *testing.T) {
	base := t.TempDir()
	store, err := New(base)
	require.NoError(t, err)

	err = store.PutObject(context.Background(), "partial.mp4", failingReader{}, "video/mp4", 10)
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(base, "partial.mp4"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestPutObjectHonoursCancelledContext(t *testing.T) {
	base := t.TempDir()
	store, err := New(base)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = store.PutObject(ctx, "cancelled.png", bytes.NewReader([]byte("data")), "image/png", 4)
	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(base, "cancelled.png"))
}

func TestKeysCannotEscapeBasePath(t *testing.T) {
	base := t.TempDir()
	store, err := New(filepath.Join(base, "uploads"))
	require.NoError(t, err)

	require.NoError(t, store.PutObject(context.Background(), "../escape.png", bytes.NewReader([]byte("x")), "", 1))
	assert.NoFileExists(t, filepath.Join(base, "escape.png"))
	assert.FileExists(t, filepath.Join(base, "uploads", "escape.png"))

	_, err = store.keyToPath("")
	require.Error(t, err)
}
