package markdown

// DirectivePreprocessor is the contract the directive package satisfies.
// Keeping it as a small interface here (rather than importing the
// directive package directly) lets the two packages stay decoupled: the
// directive pre-pass is pure text-to-text and never needs the markdown
// AST.
type DirectivePreprocessor interface {
	// PrePass expands directives in text before GFM parsing.
	PrePass(text string) (processed string, warnings []string, err error)
	// ApplyPostProcessReplacements performs any two-pass substitutions
	// handlers enqueued during PrePass (e.g. tab-label collection).
	ApplyPostProcessReplacements(html string) (string, error)
}
