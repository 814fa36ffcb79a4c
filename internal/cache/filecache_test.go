package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c, err := NewFileCache(dir, "1")
	require.NoError(t, err)

	require.NoError(t, c.SetString("k", "etag1", "hello"))
	v, ok := c.GetString("k", "etag1")
	require.True(t, ok)
	require.Equal(t, "hello", v)
}

func TestFileCacheEtagMismatchMisses(t *testing.T) {
	dir := t.TempDir()
	c, err := NewFileCache(dir, "1")
	require.NoError(t, err)

	require.NoError(t, c.SetString("k", "etag1", "hello"))
	_, ok := c.GetString("k", "etag2")
	require.False(t, ok)
}

func TestFileCacheVersionBumpClears(t *testing.T) {
	dir := t.TempDir()
	c1, err := NewFileCache(dir, "1")
	require.NoError(t, err)
	require.NoError(t, c1.SetString("k", "etag1", "hello"))

	c2, err := NewFileCache(dir, "2")
	require.NoError(t, err)
	_, ok := c2.GetString("k", "etag1")
	require.False(t, ok)

	data, err := filepath.Glob(filepath.Join(dir, "VERSION"))
	require.NoError(t, err)
	require.Len(t, data, 1)
}

func TestNullCacheAlwaysMisses(t *testing.T) {
	var c NullCache
	require.NoError(t, c.SetString("k", "e", "v"))
	_, ok := c.GetString("k", "e")
	require.False(t, ok)
}
