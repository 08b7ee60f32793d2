package segments

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutAndCleanup(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	path, cleanup, err := store.Put([]byte("audio"), ".webm")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("audio"), data)
	assert.Equal(t, ".webm", filepath.Ext(path))

	cleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// cleanup is idempotent
	cleanup()
}

func TestSweepRemovesStaleSegments(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "segment-stale.webm")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	_, err := NewStore(dir)
	require.NoError(t, err)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}

func TestNewStoreCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	store, err := NewStore(dir)
	require.NoError(t, err)

	_, cleanup, err := store.Put([]byte("x"), ".ogg")
	require.NoError(t, err)
	cleanup()
}
