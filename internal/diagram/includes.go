package diagram

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var includeLineRe = regexp.MustCompile(`(?m)^\s*!(include|includeurl)\s+(\S+)\s*$`)

// IncludeResolver expands PlantUML "!include path" directives by searching
// dirs in order. "!includeurl" lines are matched but not resolved: they are
// left in the source exactly as written.
type IncludeResolver struct {
	dirs []string
}

func NewIncludeResolver(dirs []string) *IncludeResolver {
	return &IncludeResolver{dirs: dirs}
}

// Resolve expands every "!include path" line in source, recursively, up
// to the point where a repeat is detected (a visited set keyed by the
// resolved absolute path, shared by the whole call) — a file already
// included anywhere earlier in this Resolve call, whether on the current
// chain or on a sibling branch, is left as a comment rather than
// re-included, which for a true cycle would otherwise recurse forever.
func (r *IncludeResolver) Resolve(source string) (string, []string) {
	var warnings []string
	visited := map[string]bool{}
	out := r.resolve(source, visited, &warnings)
	return out, warnings
}

func (r *IncludeResolver) resolve(source string, visited map[string]bool, warnings *[]string) string {
	return includeLineRe.ReplaceAllStringFunc(source, func(line string) string {
		m := includeLineRe.FindStringSubmatch(line)
		directive, path := m[1], m[2]
		if directive == "includeurl" {
			return line
		}

		abs, content, err := r.readInclude(path)
		if err != nil {
			*warnings = append(*warnings, fmt.Sprintf("diagram include %q: %v", path, err))
			return "' include not found: " + path
		}
		if visited[abs] {
			*warnings = append(*warnings, fmt.Sprintf("diagram include cycle detected at %q", path))
			return "' include cycle: " + path
		}
		visited[abs] = true
		return r.resolve(content, visited, warnings)
	})
}

func (r *IncludeResolver) readInclude(path string) (abs string, content string, err error) {
	for _, dir := range r.dirs {
		candidate := filepath.Join(dir, path)
		data, err := os.ReadFile(candidate)
		if err == nil {
			resolvedAbs, _ := filepath.Abs(candidate)
			return resolvedAbs, string(data), nil
		}
	}
	return "", "", fmt.Errorf("not found in configured include directories")
}

// InjectDPI appends a "skinparam dpi N" line so SVG sizing from Kroki is
// consistent with the configured DPI.
func InjectDPI(source string, dpi int) string {
	if dpi <= 0 {
		return source
	}
	return source + fmt.Sprintf("\nskinparam dpi %d\n", dpi)
}

// MergePreamble prepends a config preamble to source, inserted right
// after the opening "@startuml"/"@startc4..." line if one is present so
// the preamble doesn't itself need to repeat the directive.
func MergePreamble(source, preamble string) string {
	preamble = strings.TrimSpace(preamble)
	if preamble == "" {
		return source
	}
	lines := strings.SplitN(source, "\n", 2)
	if len(lines) == 2 && strings.HasPrefix(strings.TrimSpace(lines[0]), "@start") {
		return lines[0] + "\n" + preamble + "\n" + lines[1]
	}
	return preamble + "\n" + source
}
