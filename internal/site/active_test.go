package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weavedocs/weave/internal/cache"
	"github.com/weavedocs/weave/internal/storage"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestSiteCurrentBuildsAndCachesSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.md"), "# Home")
	writeFile(t, filepath.Join(dir, "guide.md"), "# Guide")

	store := storage.NewFileStorage(dir, "", "")
	s := NewSite(store, cache.NullCache{}, cache.NullCache{}, cache.NullCache{}, "1")

	state, err := s.Current()
	require.NoError(t, err)
	require.NotNil(t, state)

	_, _, ok := state.GetPage("guide")
	require.True(t, ok)

	// Second call must reuse the lock-free snapshot, not rescan.
	same, err := s.Current()
	require.NoError(t, err)
	require.Same(t, state, same)
}

func TestSiteInvalidateForcesRebuild(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.md"), "# Home")

	store := storage.NewFileStorage(dir, "", "")
	s := NewSite(store, cache.NullCache{}, cache.NullCache{}, cache.NullCache{}, "1")

	first, err := s.Current()
	require.NoError(t, err)

	writeFile(t, filepath.Join(dir, "new.md"), "# New")
	s.Invalidate()

	second, err := s.Current()
	require.NoError(t, err)
	require.NotSame(t, first, second)

	_, _, ok := second.GetPage("new")
	require.True(t, ok)
}

func TestSiteStructureCacheIsConsulted(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.md"), "# Home")

	store := storage.NewFileStorage(dir, "", "")
	structure, err := cache.NewFileCache(t.TempDir(), "1")
	require.NoError(t, err)

	s := NewSite(store, structure, cache.NullCache{}, cache.NullCache{}, "1")
	_, err = s.Current()
	require.NoError(t, err)

	_, ok := structure.GetString(structureCacheKey, "1")
	require.True(t, ok)
}
