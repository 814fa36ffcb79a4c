package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMatchAnyDoubleStar(t *testing.T) {
	require.True(t, matchAny([]string{"**/*.md"}, "a/b/c.md"))
	require.True(t, matchAny([]string{"**/*.md"}, "c.md"))
	require.False(t, matchAny([]string{"**/*.md"}, "a/b/c.txt"))
	require.True(t, matchAny([]string{"**/meta.yaml"}, "a/b/meta.yaml"))
}

func TestWatchDebouncesBurstToSingleModified(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "page.md")
	require.NoError(t, os.WriteFile(file, []byte("one"), 0o644))

	debounce := 30 * time.Millisecond
	events, handle, err := New(dir, []string{"**/*.md"}, &debounce)
	require.NoError(t, err)
	defer handle.Close()

	time.Sleep(20 * time.Millisecond) // let the watcher settle before writing

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(file, []byte("change"), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case ev := <-events:
		require.Equal(t, file, ev.Path)
		require.Equal(t, Modified, ev.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for debounced event")
	}

	select {
	case ev := <-events:
		t.Fatalf("burst produced a second event: %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestGlobMatchSingleSegmentWildcard(t *testing.T) {
	require.True(t, globMatch([]string{"*.md"}, []string{"a.md"}))
	require.False(t, globMatch([]string{"*.md"}, []string{"a", "b.md"}))
}
