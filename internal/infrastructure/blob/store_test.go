package blob

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveCreatesUserDirAndCountsBytes(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	path, size, err := store.Save(7, "blob.txt", strings.NewReader("0123456789"))
	require.NoError(t, err)
	assert.Equal(t, int64(10), size)
	assert.Equal(t, filepath.Join(filepath.Dir(filepath.Dir(path)), "user_7", "blob.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(data))
}

func TestStore_SaveTwiceSameDirIdempotent(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, _, err = store.Save(7, "a.txt", strings.NewReader("a"))
	require.NoError(t, err)
	_, _, err = store.Save(7, "b.txt", strings.NewReader("b"))
	require.NoError(t, err)
}

func TestStore_OpenRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	path, _, err := store.Save(1, "blob.txt", strings.NewReader("hello"))
	require.NoError(t, err)

	rc, err := store.Open(path)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestStore_RemoveMissingIsNotAnError(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	path, _, err := store.Save(1, "blob.txt", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, store.Remove(path))
	require.NoError(t, store.Remove(path))

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
