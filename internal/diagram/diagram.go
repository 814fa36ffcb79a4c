// Package diagram implements the Kroki-backed diagram pipeline: a
// codeblock.Processor that extracts fenced diagram sources during the
// markdown render pass, prepares PlantUML/C4 includes, content-addresses
// the result against a cache, and batch-renders cache misses through a
// bounded worker pool at PostProcess time.
package diagram

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DiagramKey is the stable identity of a prepared diagram: two diagrams
// that prepare to identical content, format, endpoint and dpi share a
// cache slot regardless of where they appear in the document.
type DiagramKey struct {
	Endpoint string
	Format   string
	DPI      int
	Source   string
}

// Hash returns the hex-encoded SHA-256 digest used as the cache key and
// filename-safe identifier for k.
func (k DiagramKey) Hash() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%d\x00", k.Endpoint, k.Format, k.DPI)
	h.Write([]byte(k.Source))
	return hex.EncodeToString(h.Sum(nil))
}

// ExtractedDiagram is the per-occurrence record kept between Process and
// PostProcess: the prepared source plus enough context to render or
// substitute it later.
type ExtractedDiagram struct {
	Index          int
	Language       string
	Endpoint       string
	Format         string
	DPI            int
	PreparedSource string
	Key            DiagramKey
}

// TagGenerator renders diagram bytes to files under an output directory
// and returns the HTML tag that should replace the placeholder, for
// static-site builds that want diagrams as on-disk assets (e.g.
// "<img src=\"/diagrams/xyz.png\">") instead of inlined SVG/data URIs.
// When a Factory has no TagGenerator configured, Processor falls back to
// inlining the diagram directly in the substitution.
type TagGenerator interface {
	Tag(d *ExtractedDiagram, data []byte) (tag string, err error)
}
