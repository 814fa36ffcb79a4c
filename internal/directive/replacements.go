package directive

import "strings"

// Replacements collects literal substitutions enqueued by directive
// handlers during PostProcess and applies them in a single left-to-right
// scan, so a render never re-scans its own HTML once per handler.
type Replacements struct {
	pairs []string // old, new, old, new, ...
}

// Add enqueues a literal substring replacement.
func (r *Replacements) Add(old, new string) {
	r.pairs = append(r.pairs, old, new)
}

// Len reports how many replacements are queued.
func (r *Replacements) Len() int { return len(r.pairs) / 2 }

// Apply runs every queued replacement over html in one pass.
func (r *Replacements) Apply(html string) string {
	if len(r.pairs) == 0 {
		return html
	}
	return strings.NewReplacer(r.pairs...).Replace(html)
}
