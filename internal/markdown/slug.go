package markdown

import (
	"strconv"
	"strings"
)

// Slugify implements the heading-id rule: lowercase, keep ASCII
// alphanumerics, collapse whitespace/"-"/"_" runs into a single "-", trim
// leading and trailing "-". Non-ASCII letters are dropped rather than
// transliterated.
func Slugify(text string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case r == ' ', r == '\t', r == '-', r == '_':
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		default:
			// non-ASCII letters and punctuation are dropped entirely
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// idAllocator hands out collision-free slugs within a single render,
// suffixing repeats with "-1", "-2", ...
type idAllocator struct {
	seen map[string]int
}

func newIDAllocator() *idAllocator {
	return &idAllocator{seen: make(map[string]int)}
}

func (a *idAllocator) allocate(base string) string {
	if base == "" {
		base = "section"
	}
	n, exists := a.seen[base]
	a.seen[base] = n + 1
	if !exists {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}
