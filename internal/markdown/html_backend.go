package markdown

import (
	"fmt"
	"path"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark/util"
)

// HTMLBackend renders plain, standalone HTML: headings keep their H1,
// code blocks are Chroma-highlighted when their language is recognised and
// otherwise use <pre><code class="language-...">, and images are plain
// <img> tags.
type HTMLBackend struct{}

func (HTMLBackend) Name() string            { return "html" }
func (HTMLBackend) TitleAsMetadata() bool   { return false }

func (HTMLBackend) BlockquoteStart(out util.BufWriter) { out.WriteString("<blockquote>\n") }
func (HTMLBackend) BlockquoteEnd(out util.BufWriter)   { out.WriteString("</blockquote>\n") }

var alertIcons = map[AlertKind]string{
	AlertNote:      `<svg class="octicon" viewBox="0 0 16 16"><path d="M0 8a8 8 0 1 1 16 0A8 8 0 0 1 0 8Z"/></svg>`,
	AlertTip:       `<svg class="octicon" viewBox="0 0 16 16"><path d="M8 1a5 5 0 0 0-3 9l1 4h4l1-4a5 5 0 0 0-3-9Z"/></svg>`,
	AlertImportant: `<svg class="octicon" viewBox="0 0 16 16"><path d="M8 1 15 14H1Z"/></svg>`,
	AlertWarning:   `<svg class="octicon" viewBox="0 0 16 16"><path d="M8 1 15 14H1Z"/></svg>`,
	AlertCaution:   `<svg class="octicon" viewBox="0 0 16 16"><path d="M8 1 15 14H1Z"/></svg>`,
}

var alertTitles = map[AlertKind]string{
	AlertNote:      "Note",
	AlertTip:       "Tip",
	AlertImportant: "Important",
	AlertWarning:   "Warning",
	AlertCaution:   "Caution",
}

func (HTMLBackend) AlertStart(out util.BufWriter, kind AlertKind) {
	fmt.Fprintf(out, `<div class="alert alert-%s">`+"\n", kind)
	fmt.Fprintf(out, `<p class="alert-title">%s%s</p>`+"\n", alertIcons[kind], alertTitles[kind])
}

func (HTMLBackend) AlertEnd(out util.BufWriter, kind AlertKind) {
	out.WriteString("</div>\n")
}

// chromaFormatter renders with CSS classes (not inline styles) so a single
// stylesheet, generated once by ChromaCSS, covers every highlighted block.
var chromaFormatter = chromahtml.New(chromahtml.WithClasses(true))

// CodeBlock syntax-highlights content with Chroma when lang names a
// recognized lexer, falling back to a plain escaped <pre><code> block
// (still tagged with a "language-..." class for any client-side
// highlighter a reader's own tooling might apply) when it doesn't.
func (HTMLBackend) CodeBlock(out util.BufWriter, lang, content string) {
	if lang != "" {
		if lexer := lexers.Get(lang); lexer != nil {
			if iterator, err := lexer.Tokenise(nil, content); err == nil {
				if err := chromaFormatter.Format(out, styles.Get("github"), iterator); err == nil {
					return
				}
			}
		}
	}

	class := "language-plaintext"
	if lang != "" {
		class = "language-" + lang
	}
	fmt.Fprintf(out, `<pre><code class="%s">`, class)
	out.Write(util.EscapeHTML([]byte(content)))
	out.WriteString("</code></pre>\n")
}

// ChromaCSS produces the stylesheet for Chroma's class-based output,
// using styleName (e.g. "github", "monokai"; any name known to
// github.com/alecthomas/chroma/v2/styles). Falls back to chroma's
// built-in fallback style if styleName is unrecognized.
func ChromaCSS(styleName string) (string, error) {
	var buf strings.Builder
	if err := chromaFormatter.WriteCSS(&buf, styles.Get(styleName)); err != nil {
		return "", fmt.Errorf("generating chroma css: %w", err)
	}
	return buf.String(), nil
}

func (HTMLBackend) Image(out util.BufWriter, src, alt, title string) {
	fmt.Fprintf(out, `<img src="%s" alt="%s"`, util.EscapeHTML([]byte(src)), util.EscapeHTML([]byte(alt)))
	if title != "" {
		fmt.Fprintf(out, ` title="%s"`, util.EscapeHTML([]byte(title)))
	}
	out.WriteString(">")
}

// TransformLink resolves a relative "./x.md"-style destination against
// basePath, strips ".md", and keeps fragments. External and fragment-only
// URLs are untouched.
func (HTMLBackend) TransformLink(dest, basePath string) string {
	return transformRelativeLink(dest, basePath)
}

func transformRelativeLink(dest, basePath string) string {
	if dest == "" || isExternalURL(dest) || strings.HasPrefix(dest, "#") {
		return dest
	}

	fragment := ""
	if i := strings.Index(dest, "#"); i >= 0 {
		fragment = dest[i:]
		dest = dest[:i]
	}

	resolved := dest
	if !strings.HasPrefix(dest, "/") {
		dir := path.Dir(basePath)
		if dir == "." {
			dir = ""
		}
		resolved = path.Join(dir, dest)
	}
	resolved = strings.TrimPrefix(resolved, "/")
	resolved = strings.TrimSuffix(resolved, ".md")
	return resolved + fragment
}

func isExternalURL(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") ||
		strings.HasPrefix(u, "mailto:") || strings.HasPrefix(u, "//")
}

func (HTMLBackend) HardBreak(out util.BufWriter)     { out.WriteString("<br>\n") }
func (HTMLBackend) HorizontalRule(out util.BufWriter) { out.WriteString("<hr>\n") }

func (HTMLBackend) TaskListMarker(out util.BufWriter, checked bool) {
	if checked {
		out.WriteString(`<input type="checkbox" disabled checked> `)
		return
	}
	out.WriteString(`<input type="checkbox" disabled> `)
}
