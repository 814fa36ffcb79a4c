package markdown

import "github.com/yuin/goldmark/util"

// AlertKind is a GitHub-style blockquote alert kind.
type AlertKind int

const (
	AlertNote AlertKind = iota
	AlertTip
	AlertImportant
	AlertWarning
	AlertCaution
)

var alertNames = map[string]AlertKind{
	"NOTE":      AlertNote,
	"TIP":       AlertTip,
	"IMPORTANT": AlertImportant,
	"WARNING":   AlertWarning,
	"CAUTION":   AlertCaution,
}

func (k AlertKind) String() string {
	switch k {
	case AlertNote:
		return "note"
	case AlertTip:
		return "tip"
	case AlertImportant:
		return "important"
	case AlertWarning:
		return "warning"
	case AlertCaution:
		return "caution"
	default:
		return "note"
	}
}

// ParseAlertKind recognizes the "[!NOTE]" family of markers. ok is false
// for anything else, in which case the blockquote is not an alert.
func ParseAlertKind(marker string) (AlertKind, bool) {
	k, ok := alertNames[marker]
	return k, ok
}

// RenderBackend is the pluggable HTML/Confluence-storage-format output
// target for the markdown renderer. Every hook writes directly to out.
type RenderBackend interface {
	// Name identifies the backend for logging.
	Name() string

	// TitleAsMetadata reports whether the first H1 is extracted and
	// removed from the document body (Confluence) rather than kept
	// inline (HTML).
	TitleAsMetadata() bool

	BlockquoteStart(out util.BufWriter)
	BlockquoteEnd(out util.BufWriter)
	AlertStart(out util.BufWriter, kind AlertKind)
	AlertEnd(out util.BufWriter, kind AlertKind)

	// CodeBlock is invoked for a fenced block the code-block processor
	// chain passed through untouched.
	CodeBlock(out util.BufWriter, lang, content string)

	// Image renders an image reference. src is the raw destination as
	// written in the source, already passed through TransformLink.
	Image(out util.BufWriter, src, alt, title string)

	// TransformLink rewrites a link/image destination against the
	// page's base path. basePath is the page's own url_path.
	TransformLink(dest, basePath string) string

	HardBreak(out util.BufWriter)
	HorizontalRule(out util.BufWriter)
	TaskListMarker(out util.BufWriter, checked bool)
}
