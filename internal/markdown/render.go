// Package markdown converts page source into backend-specific HTML. The
// renderer walks the goldmark AST exactly like goldmark's own HTML
// renderer, but a pluggable RenderBackend owns every output decision that
// differs between a standalone HTML page and a Confluence storage-format
// document, and a chain of code-block processors gets first refusal on
// every fenced block (used by the diagram pipeline).
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	ghtml "github.com/yuin/goldmark/renderer/html"
	gmtext "github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/weavedocs/weave/internal/markdown/codeblock"
)

// Options configures a Renderer.
type Options struct {
	GFM             bool
	RelativeLinks   bool
	TrailingSlash   bool
	MaxIncludeDepth int
}

// Renderer is the markdown-to-backend-HTML pipeline described by the
// render entrypoint: optional directive pre-pass, GFM parse, event-stream
// render, processor post-pass, relative-link rewrite.
type Renderer struct {
	backend    RenderBackend
	processors []codeblock.Processor
	directive  DirectivePreprocessor
	opts       Options
}

// New creates a Renderer for backend with the given code-block processors
// (tried in order; first non-pass-through wins) and an optional directive
// preprocessor.
func New(backend RenderBackend, processors []codeblock.Processor, directive DirectivePreprocessor, opts Options) *Renderer {
	return &Renderer{backend: backend, processors: processors, directive: directive, opts: opts}
}

// Render executes the full pipeline described in §4.D: directive pre-pass,
// GFM parse, backend-driven event-stream render, processor post-pass, and
// (when enabled) relative-link rewriting. basePath is the page's own
// url_path, used to resolve relative links and images.
func (r *Renderer) Render(source, basePath string) (*RenderResult, error) {
	var warnings []string

	src := source
	if r.directive != nil {
		processed, dwarn, err := r.directive.PrePass(src)
		if err != nil {
			return nil, fmt.Errorf("directive pre-pass: %w", err)
		}
		src = processed
		warnings = append(warnings, dwarn...)
	}

	md := r.buildGoldmark()
	sess := newSession(r.backend, r.processors, basePath, r.opts)

	md.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(sess, 0)))

	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	htmlOut := buf.String()

	for _, p := range r.processors {
		processed, err := p.PostProcess(htmlOut)
		if err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		htmlOut = processed
		warnings = append(warnings, p.Warnings()...)
	}

	if r.directive != nil {
		processed, err := r.directive.ApplyPostProcessReplacements(htmlOut)
		if err != nil {
			warnings = append(warnings, err.Error())
		} else {
			htmlOut = processed
		}
	}

	if r.opts.RelativeLinks {
		htmlOut = rewriteAbsoluteLinks(htmlOut, basePath)
	}

	return &RenderResult{
		HTML:     htmlOut,
		Title:    sess.headings.title,
		TOC:      sess.headings.toc,
		Warnings: warnings,
	}, nil
}

func (r *Renderer) buildGoldmark() goldmark.Markdown {
	var exts []goldmark.Extender
	if r.opts.GFM {
		exts = append(exts, extension.GFM)
	}
	return goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parser.WithAttribute()),
		goldmark.WithRendererOptions(ghtml.WithUnsafe()),
	)
}

// session holds the per-render mutable state (headings, code blocks,
// tables, images) and implements goldmark's NodeRenderer so a fresh
// instance backs every Render call — Renderer itself stays stateless and
// safe for concurrent use.
type session struct {
	backend      RenderBackend
	processors   []codeblock.Processor
	basePath     string
	opts         Options
	headings     *headingState
	table        tableState
	codeBlockIdx int
}

func newSession(backend RenderBackend, processors []codeblock.Processor, basePath string, opts Options) *session {
	return &session{
		backend:    backend,
		processors: processors,
		basePath:   basePath,
		opts:       opts,
		headings:   newHeadingState(),
	}
}

func (s *session) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindText, s.renderText)
	reg.Register(ast.KindHeading, s.renderHeading)
	reg.Register(ast.KindCodeBlock, s.renderCodeBlock)
	reg.Register(ast.KindFencedCodeBlock, s.renderFencedCodeBlock)
	reg.Register(ast.KindBlockquote, s.renderBlockquote)
	reg.Register(ast.KindImage, s.renderImage)
	reg.Register(ast.KindLink, s.renderLink)
	reg.Register(ast.KindAutoLink, s.renderAutoLink)
	reg.Register(ast.KindThematicBreak, s.renderThematicBreak)
	reg.Register(east.KindTaskCheckBox, s.renderTaskCheckBox)
	reg.Register(east.KindTableCell, s.renderTableCell)
	reg.Register(east.KindTableHeader, s.renderTableHeader)
}

// linedNode is satisfied by ast.BaseBlock (CodeBlock, FencedCodeBlock, ...);
// Lines isn't part of the generic ast.Node interface, so call sites pass
// the already type-asserted concrete node.
type linedNode interface {
	Lines() *gmtext.Segments
}

func linesContent(n linedNode, source []byte) []byte {
	lines := n.Lines()
	var buf bytes.Buffer
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.Bytes()
}

func plainText(n ast.Node, source []byte) []byte {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
		default:
			buf.Write(plainText(c, source))
		}
	}
	return buf.Bytes()
}

// --- Text ---

// renderText takes over goldmark's own *ast.Text dispatch so a hard line
// break (two trailing spaces, or a trailing backslash, before a newline)
// routes through the active backend's HardBreak instead of goldmark's
// built-in non-XHTML "<br>\n", which otherwise fires unconditionally and
// would violate Confluence storage format's XHTML well-formedness rule.
// Escaping and soft-break handling mirror goldmark's default html.Renderer.
func (s *session) renderText(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*ast.Text)
	value := node.Segment.Value(source)
	if node.IsRaw() {
		ghtml.DefaultWriter.RawWrite(w, value)
		return ast.WalkContinue, nil
	}
	ghtml.DefaultWriter.Write(w, value)
	switch {
	case node.HardLineBreak():
		s.backend.HardBreak(w)
	case node.SoftLineBreak():
		w.WriteString("\n")
	}
	return ast.WalkContinue, nil
}

// --- Heading ---

// renderHeading decides everything up front, on entering: the plain text
// (via the standalone plainText walker, independent of render state) backs
// both the slug/TOC entry and the title-capture check. It writes only the
// opening tag (or nothing, if this heading is being dropped as the page
// title) and returns WalkContinue so goldmark's own inline renderers -
// never overridden here - render the children normally. The exit call
// always fires, even after a WalkSkipChildren on entering, so the drop
// decision is stashed on headings for the matching close tag.
func (s *session) renderHeading(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	node := n.(*ast.Heading)
	if entering {
		text := string(plainText(node, source))
		id, isTitle := s.headings.endFor(text, node.Level)

		if isTitle && s.backend.TitleAsMetadata() {
			s.headings.dropping = true
			return ast.WalkSkipChildren, nil // dropped from the body entirely
		}
		s.headings.dropping = false
		fmt.Fprintf(w, `<h%d id="%s">`, node.Level, id)
		return ast.WalkContinue, nil
	}

	if s.headings.dropping {
		return ast.WalkContinue, nil
	}
	fmt.Fprintf(w, "</h%d>\n", node.Level)
	return ast.WalkContinue, nil
}

// --- Code blocks ---

func (s *session) renderCodeBlock(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*ast.CodeBlock)
	content := string(linesContent(node, source))
	s.emitCodeBlock(w, "", content, nil)
	return ast.WalkSkipChildren, nil
}

func (s *session) renderFencedCodeBlock(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*ast.FencedCodeBlock)
	info := ""
	if node.Info != nil {
		info = string(node.Info.Segment.Value(source))
	}
	lang, attrs, fenceWarnings := ParseFenceInfo(info)
	content := string(linesContent(node, source))
	s.emitCodeBlock(w, lang, content, attrs)
	_ = fenceWarnings // surfaced via the owning processor, per §4.D
	return ast.WalkSkipChildren, nil
}

// emitCodeBlock runs the processor chain (first non-pass-through wins)
// before falling back to the backend's default code-block rendering.
func (s *session) emitCodeBlock(w util.BufWriter, lang, content string, attrs map[string]string) {
	idx := s.codeBlockIdx
	s.codeBlockIdx++

	block := codeblock.ExtractedBlock{Index: idx, Language: lang, Source: content, Attrs: attrs}
	for _, p := range s.processors {
		res := p.Process(block)
		switch res.Kind {
		case codeblock.Placeholder, codeblock.Inline:
			w.WriteString(res.Value)
			return
		}
	}
	s.backend.CodeBlock(w, lang, content)
}

// --- Blockquote / alerts ---

func (s *session) renderBlockquote(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if text, kind, ok := detectAlert(n, source); ok {
		if entering {
			s.backend.AlertStart(w, kind)
			stripAlertMarker(text, source)
			return ast.WalkContinue, nil
		}
		s.backend.AlertEnd(w, kind)
		return ast.WalkContinue, nil
	}
	if entering {
		s.backend.BlockquoteStart(w)
	} else {
		s.backend.BlockquoteEnd(w)
	}
	return ast.WalkContinue, nil
}

// firstTextChild depth-first searches for the first *ast.Text descendant,
// the node whose raw segment bytes carry a "[!KIND]" marker if present.
func firstTextChild(n ast.Node) *ast.Text {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			return t
		}
		if t := firstTextChild(c); t != nil {
			return t
		}
	}
	return nil
}

// detectAlert checks whether a blockquote's first line of text is a
// GitHub-style "[!KIND]" marker, working on the raw source bytes of the
// first text node rather than the walker's accumulated plain text.
func detectAlert(n ast.Node, source []byte) (*ast.Text, AlertKind, bool) {
	first := n.FirstChild()
	if first == nil {
		return nil, 0, false
	}
	text := firstTextChild(first)
	if text == nil {
		return nil, 0, false
	}
	raw := text.Segment.Value(source)
	i := 0
	for i < len(raw) && (raw[i] == ' ' || raw[i] == '\t') {
		i++
	}
	if i >= len(raw) || raw[i] != '[' {
		return nil, 0, false
	}
	end := bytes.IndexByte(raw[i:], ']')
	if end < 0 {
		return nil, 0, false
	}
	end += i
	marker := string(raw[i+1 : end])
	if len(marker) < 2 || marker[0] != '!' {
		return nil, 0, false
	}
	kind, ok := ParseAlertKind(marker[1:])
	if !ok {
		return nil, 0, false
	}
	return text, kind, true
}

// stripAlertMarker advances the text node's segment start past the
// "[!KIND]" token (and any following whitespace) so the marker doesn't
// leak into the rendered alert body.
func stripAlertMarker(text *ast.Text, source []byte) {
	raw := text.Segment.Value(source)
	end := bytes.IndexByte(raw, ']')
	if end < 0 {
		return
	}
	newStart := text.Segment.Start + end + 1
	for newStart < text.Segment.Stop && isSpaceByte(source[newStart]) {
		newStart++
	}
	if newStart > text.Segment.Stop {
		newStart = text.Segment.Stop
	}
	text.Segment.Start = newStart
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n'
}

// --- Images / links ---

func (s *session) renderImage(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*ast.Image)
	alt := string(plainText(node, source))
	title := ""
	if node.Title != nil {
		title = string(node.Title)
	}
	dest := s.backend.TransformLink(string(node.Destination), s.basePath)
	s.backend.Image(w, dest, alt, title)
	return ast.WalkSkipChildren, nil
}

func (s *session) renderLink(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	node := n.(*ast.Link)
	if entering {
		dest := s.backend.TransformLink(string(node.Destination), s.basePath)
		fmt.Fprintf(w, `<a href="%s"`, util.EscapeHTML([]byte(dest)))
		if node.Title != nil {
			fmt.Fprintf(w, ` title="%s"`, util.EscapeHTML(node.Title))
		}
		w.WriteString(">")
		return ast.WalkContinue, nil
	}
	w.WriteString("</a>")
	return ast.WalkContinue, nil
}

func (s *session) renderAutoLink(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*ast.AutoLink)
	url := string(node.URL(source))
	fmt.Fprintf(w, `<a href="%s">%s</a>`, util.EscapeHTML([]byte(url)), util.EscapeHTML([]byte(url)))
	return ast.WalkSkipChildren, nil
}

// --- Primitives ---

func (s *session) renderThematicBreak(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		s.backend.HorizontalRule(w)
	}
	return ast.WalkContinue, nil
}

func (s *session) renderTaskCheckBox(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*east.TaskCheckBox)
	s.backend.TaskListMarker(w, node.IsChecked)
	return ast.WalkContinue, nil
}

func (s *session) renderTableHeader(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	s.table.inHead = entering
	if entering {
		w.WriteString("<tr>\n")
	} else {
		w.WriteString("</tr>\n")
	}
	return ast.WalkContinue, nil
}

func (s *session) renderTableCell(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	node := n.(*east.TableCell)
	tag := "td"
	if s.table.inHead {
		tag = "th"
	}
	if entering {
		style := alignStyle(node.Alignment)
		if style != "" {
			fmt.Fprintf(w, `<%s style="%s">`, tag, style)
		} else {
			fmt.Fprintf(w, "<%s>", tag)
		}
		return ast.WalkContinue, nil
	}
	fmt.Fprintf(w, "</%s>", tag)
	return ast.WalkContinue, nil
}

func alignStyle(a east.Alignment) string {
	switch a {
	case east.AlignLeft:
		return "text-align: left"
	case east.AlignRight:
		return "text-align: right"
	case east.AlignCenter:
		return "text-align: center"
	default:
		return ""
	}
}
