package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestRenderer(backend RenderBackend) *Renderer {
	return New(backend, nil, nil, Options{GFM: true})
}

// S1: two headings that slugify to the same base get collision-suffixed ids.
func TestHeadingSlugCollisionSuffix(t *testing.T) {
	r := newTestRenderer(HTMLBackend{})
	src := "# Title\n\n## FAQ\n\nsome text\n\n## FAQ\n\nmore text\n"
	res, err := r.Render(src, "docs/guide")
	require.NoError(t, err)

	require.Contains(t, res.HTML, `id="faq"`)
	require.Contains(t, res.HTML, `id="faq-1"`)

	require.Len(t, res.TOC, 3)
	require.Equal(t, "faq", res.TOC[1].ID)
	require.Equal(t, "faq-1", res.TOC[2].ID)
}

// S2: a relative link resolves against the page's own base_path and loses
// its .md suffix.
func TestRelativeLinkResolution(t *testing.T) {
	r := newTestRenderer(HTMLBackend{})
	src := "See [other page](../other.md) for details.\n"
	res, err := r.Render(src, "a/b")
	require.NoError(t, err)
	require.Contains(t, res.HTML, `href="other"`)
}

// S3: a GitHub-style alert blockquote renders with the alert wrapper and
// the "[!NOTE]" marker is stripped from the body.
func TestGitHubStyleAlertBlockquote(t *testing.T) {
	r := newTestRenderer(HTMLBackend{})
	src := "> [!NOTE]\n> Remember to save your work.\n"
	res, err := r.Render(src, "")
	require.NoError(t, err)

	require.Contains(t, res.HTML, `class="alert alert-note"`)
	require.NotContains(t, res.HTML, "[!NOTE]")
	require.Contains(t, res.HTML, "Remember to save your work.")
}

// S4: the Confluence backend emits a CDATA-wrapped code macro, and a body
// containing "]]>" gets the CDATA-end escape applied.
func TestConfluenceCodeBlockCDATA(t *testing.T) {
	r := newTestRenderer(ConfluenceBackend{})
	src := "```go\nfmt.Println(\"a]]>b\")\n```\n"
	res, err := r.Render(src, "")
	require.NoError(t, err)

	require.Contains(t, res.HTML, `<ac:structured-macro ac:name="code">`)
	require.Contains(t, res.HTML, `<ac:parameter ac:name="language">go</ac:parameter>`)
	require.Contains(t, res.HTML, "a]]]]><![CDATA[>b")
}

// The Confluence backend drops the first H1 from the body and surfaces it
// as the render result's title instead.
func TestConfluenceTitleExtraction(t *testing.T) {
	r := newTestRenderer(ConfluenceBackend{})
	src := "# My Page\n\nBody text.\n"
	res, err := r.Render(src, "")
	require.NoError(t, err)

	require.Equal(t, "My Page", res.Title)
	require.False(t, strings.Contains(res.HTML, "My Page"))
}

func TestPlainBlockquoteIsNotTreatedAsAlert(t *testing.T) {
	r := newTestRenderer(HTMLBackend{})
	src := "> just a quote\n"
	res, err := r.Render(src, "")
	require.NoError(t, err)
	require.Contains(t, res.HTML, "<blockquote>")
	require.NotContains(t, res.HTML, "alert")
}

func TestTaskListMarkerRendering(t *testing.T) {
	r := newTestRenderer(HTMLBackend{})
	src := "- [x] done\n- [ ] todo\n"
	res, err := r.Render(src, "")
	require.NoError(t, err)
	require.Contains(t, res.HTML, "checked")
}

// A hard line break (two trailing spaces before the newline) routes through
// the active backend's HardBreak rather than goldmark's own non-XHTML
// "<br>\n", which would otherwise fire regardless of backend.
func TestHardBreakUsesHTMLBackend(t *testing.T) {
	r := newTestRenderer(HTMLBackend{})
	src := "first line  \nsecond line\n"
	res, err := r.Render(src, "")
	require.NoError(t, err)
	require.Contains(t, res.HTML, "<br>\n")
	require.NotContains(t, res.HTML, "<br/>")
}

func TestHardBreakUsesConfluenceXHTMLBackend(t *testing.T) {
	r := newTestRenderer(ConfluenceBackend{})
	src := "first line  \nsecond line\n"
	res, err := r.Render(src, "")
	require.NoError(t, err)
	require.Contains(t, res.HTML, "<br/>\n")
}
