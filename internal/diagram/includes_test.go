package diagram

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIncludeResolverExpandsFromConfiguredDirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shared.iuml"), []byte("actor Foo"), 0o644))

	r := NewIncludeResolver([]string{dir})
	out, warnings := r.Resolve("@startuml\n!include shared.iuml\n@enduml")
	require.Empty(t, warnings)
	require.Contains(t, out, "actor Foo")
	require.NotContains(t, out, "!include")
}

func TestIncludeResolverDetectsCycle(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.iuml"), []byte("!include b.iuml"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.iuml"), []byte("!include a.iuml"), 0o644))

	r := NewIncludeResolver([]string{dir})
	_, warnings := r.Resolve("!include a.iuml")
	require.True(t, containsAny(warnings, "cycle"))
}

func TestIncludeResolverMissingFileWarns(t *testing.T) {
	r := NewIncludeResolver([]string{t.TempDir()})
	out, warnings := r.Resolve("!include missing.iuml")
	require.True(t, containsAny(warnings, "not found"))
	require.Contains(t, out, "missing.iuml")
}

func TestIncludeResolverLeavesIncludeURLAlone(t *testing.T) {
	r := NewIncludeResolver(nil)
	out, warnings := r.Resolve("!includeurl https://example.com/shared.iuml")
	require.Empty(t, warnings)
	require.Contains(t, out, "!includeurl https://example.com/shared.iuml")
}

func TestInjectDPIAndMergePreamble(t *testing.T) {
	out := InjectDPI("@startuml\nA -> B\n@enduml", 150)
	require.Contains(t, out, "skinparam dpi 150")

	merged := MergePreamble("@startuml\nA -> B\n@enduml", "skinparam monochrome true")
	require.Contains(t, merged, "@startuml\nskinparam monochrome true")
}

func containsAny(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.Contains(h, needle) {
			return true
		}
	}
	return false
}
