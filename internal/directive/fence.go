package directive

import "strings"

// FenceTracker keeps the pre-pass from touching directive-like text inside
// a fenced code block. It only recognises backtick/tilde fences of length
// 3 or more, matching CommonMark's own fence rule.
type FenceTracker struct {
	active bool
	marker string
}

func NewFenceTracker() *FenceTracker { return &FenceTracker{} }

// Update advances the tracker by one line. Call this for every line before
// asking InFence.
func (f *FenceTracker) Update(line string) {
	trimmed := strings.TrimSpace(line)
	if !f.active {
		if m := fenceMarker(trimmed); m != "" {
			f.active = true
			f.marker = m
		}
		return
	}
	if strings.HasPrefix(trimmed, f.marker) {
		f.active = false
		f.marker = ""
	}
}

// InFence reports whether the line just passed to Update sits inside an
// open fence. The opening delimiter line counts as "in fence"; the closing
// delimiter line does not, since Update has already closed the fence.
func (f *FenceTracker) InFence() bool { return f.active }

func fenceMarker(trimmed string) string {
	for _, ch := range []byte{'`', '~'} {
		n := 0
		for n < len(trimmed) && trimmed[n] == ch {
			n++
		}
		if n >= 3 {
			return strings.Repeat(string(ch), n)
		}
	}
	return ""
}
