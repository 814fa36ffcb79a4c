package markdown

import (
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"
)

// navTreeParser is a plain GFM goldmark instance used only to obtain an
// AST for toc.Inspect; it never renders anything itself, so it carries no
// RenderBackend and isn't related to the Renderer event-stream pipeline.
var navTreeParser = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// BuildNavTree parses source and extracts its heading structure as a
// goldmark-native *toc.TOC, for callers that want a nested navigation
// tree distinct from the page's own inline heading ids (RenderResult.TOC
// already covers the in-page case with the renderer's own slug rule).
func BuildNavTree(source string) (*toc.TOC, error) {
	src := []byte(source)
	doc := navTreeParser.Parser().Parse(text.NewReader(src))

	tree, err := toc.Inspect(doc, src)
	if err != nil {
		return nil, fmt.Errorf("building nav tree: %w", err)
	}
	return tree, nil
}
