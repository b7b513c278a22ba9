package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExists(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "song.flac")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))

	exists, err := Exists(f)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = Exists(filepath.Join(dir, "missing.flac"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestIsSub(t *testing.T) {
	parent := t.TempDir()
	child := filepath.Join(parent, "a", "b")
	require.NoError(t, os.MkdirAll(child, 0o755))

	ok, err := IsSub(child, parent)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IsSub(parent, child)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = IsSub(parent, parent)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPathTrunk(t *testing.T) {
	assert.Equal(t, "/a/b/song", PathTrunk("/a/b/song.flac"))
	assert.Equal(t, "/a/b/song", PathTrunk("/a/b/song"))
}

func TestHasExtension(t *testing.T) {
	assert.True(t, HasExtension("/a/song.FLAC", "flac", "mp3"))
	assert.False(t, HasExtension("/a/song.wav", "flac", "mp3"))
}
