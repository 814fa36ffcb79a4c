// Package directive implements the CommonMark-directive pre-pass described
// in the renderer's §4.E: inline ":name[content]", leaf "::name[content]",
// and container ":::name[content]{attrs} ... :::" extensions, expanded
// before the markdown parser ever sees them.
package directive

// OutputKind selects how a handler's Output is woven back into the
// document being pre-passed.
type OutputKind int

const (
	// Skip leaves the original directive syntax untouched - either
	// because no handler claimed the name, or the handler declined.
	Skip OutputKind = iota
	// HTML substitutes the handler's string verbatim.
	HTML
	// Markdown re-runs the pre-pass on the handler's string, up to the
	// configured max include depth.
	Markdown
)

// Output is what a directive handler returns for one match.
type Output struct {
	Kind  OutputKind
	Value string
}

func SkipOutput() Output          { return Output{Kind: Skip} }
func HTMLOutput(s string) Output  { return Output{Kind: HTML, Value: s} }
func MarkdownOutput(s string) Output { return Output{Kind: Markdown, Value: s} }

// Args is the parsed payload of one directive occurrence: the bracketed
// content and any {#id .class key=val} attributes.
type Args struct {
	Content string
	Attrs   map[string]string
}

// Context carries the information a handler needs to resolve paths (for
// include-style directives) without the processor exposing its internals.
type Context struct {
	SourcePath string
	BaseDir    string
	Line       int
	ReadFile   func(path string) (string, error)
}

// InlineDirective handles ":name[content]" occurrences inside a line.
type InlineDirective interface {
	Name() string
	Process(args Args, ctx *Context) Output
}

// LeafDirective handles "::name[content]" occurrences that fill a whole
// line with no body.
type LeafDirective interface {
	Name() string
	Process(args Args, ctx *Context) Output
}

// ContainerDirective handles ":::name[content]{attrs}" ... ":::" blocks.
// End is called when the matching close is found; a handler that needs no
// closing output can return ("", false).
type ContainerDirective interface {
	Name() string
	Start(args Args, ctx *Context) Output
	End(line int) (string, bool)
}

// PostProcessor is an optional capability any directive handler may also
// implement: after the full document has been pre-passed and rendered,
// the processor calls PostProcess once per handler so two-pass directives
// (tabs collecting labels from their children, say) can enqueue
// substitutions against placeholders they wrote during the pre-pass.
type PostProcessor interface {
	PostProcess(r *Replacements)
}

// Warner is an optional capability for handlers that accumulate their own
// warnings (malformed attributes, missing files, ...).
type Warner interface {
	Warnings() []string
}
