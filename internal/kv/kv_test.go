package kv

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()

	_, ok := s.Get("missing")
	assert.False(t, ok)

	require.NoError(t, s.Set("k", "v"))
	v, ok := s.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, s.Set("k", "w"))
	v, _ = s.Get("k")
	assert.Equal(t, "w", v)
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	s := NewFileStore(path, nil)

	_, ok := s.Get("k")
	assert.False(t, ok, "missing file reads as empty")

	require.NoError(t, s.Set("k", "v"))
	require.NoError(t, s.Set("other", `["a","b"]`))

	v, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	// A second store over the same file sees the same data.
	again := NewFileStore(path, nil)
	v, ok = again.Get("other")
	require.True(t, ok)
	assert.Equal(t, `["a","b"]`, v)

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestFileStore_MalformedFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("not-json"), 0o600))

	s := NewFileStore(path, nil)
	_, ok := s.Get("k")
	assert.False(t, ok)

	// The next write replaces the corrupt contents.
	require.NoError(t, s.Set("k", "v"))
	v, ok := s.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestFileStore_WrongShapeIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`["not","an","object"]`), 0o600))

	s := NewFileStore(path, nil)
	_, ok := s.Get("not")
	assert.False(t, ok)
}

func TestFileStore_SetFailsWhenDirectoryIsAFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	s := NewFileStore(filepath.Join(blocker, "state.json"), nil)
	err := s.Set("k", "v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create state directory")
}

func TestFileStore_UnreadableFileIsNotOverwritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	original := `{"hunt_device_id":"dev","hunt_completed_slugs":"[\"A\"]"}`
	require.NoError(t, os.WriteFile(path, []byte(original), 0o600))

	s := NewFileStore(path, nil)
	s.readFile = func(string) ([]byte, error) { return nil, syscall.EIO }

	_, ok := s.Get("hunt_device_id")
	assert.False(t, ok, "unreadable state reads as absent")

	err := s.Set("hunt_completed_slugs", `["A","B"]`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read state")
	assert.ErrorIs(t, err, syscall.EIO)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(raw), "existing keys must survive a failed read")
}
