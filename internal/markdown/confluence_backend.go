package markdown

import (
	"fmt"
	"path"
	"strings"

	"github.com/yuin/goldmark/util"
)

// ConfluenceBackend renders Confluence storage-format XHTML: the first H1
// is extracted as the page title and dropped from the body, code blocks
// become <ac:structured-macro ac:name="code">, and images become
// <ac:image> with either a <ri:url> or <ri:attachment> child.
type ConfluenceBackend struct{}

func (ConfluenceBackend) Name() string          { return "confluence" }
func (ConfluenceBackend) TitleAsMetadata() bool { return true }

func (ConfluenceBackend) BlockquoteStart(out util.BufWriter) { out.WriteString("<blockquote>\n") }
func (ConfluenceBackend) BlockquoteEnd(out util.BufWriter)   { out.WriteString("</blockquote>\n") }

var alertMacros = map[AlertKind]string{
	AlertNote:      "info",
	AlertTip:       "tip",
	AlertImportant: "note",
	AlertWarning:   "warning",
	AlertCaution:   "warning",
}

func (ConfluenceBackend) AlertStart(out util.BufWriter, kind AlertKind) {
	fmt.Fprintf(out, `<ac:structured-macro ac:name="%s"><ac:rich-text-body>`, alertMacros[kind])
}

func (ConfluenceBackend) AlertEnd(out util.BufWriter, kind AlertKind) {
	out.WriteString("</ac:rich-text-body></ac:structured-macro>\n")
}

func (ConfluenceBackend) CodeBlock(out util.BufWriter, lang, content string) {
	out.WriteString(`<ac:structured-macro ac:name="code">`)
	if lang != "" {
		fmt.Fprintf(out, `<ac:parameter ac:name="language">%s</ac:parameter>`, lang)
	}
	out.WriteString(`<ac:plain-text-body><![CDATA[`)
	out.WriteString(strings.ReplaceAll(content, "]]>", "]]]]><![CDATA[>"))
	out.WriteString(`]]></ac:plain-text-body></ac:structured-macro>` + "\n")
}

func (ConfluenceBackend) Image(out util.BufWriter, src, alt, title string) {
	out.WriteString("<ac:image>")
	if isExternalURL(src) {
		fmt.Fprintf(out, `<ri:url ri:value="%s"/>`, util.EscapeHTML([]byte(src)))
	} else {
		fmt.Fprintf(out, `<ri:attachment ri:filename="%s"/>`, util.EscapeHTML([]byte(path.Base(src))))
	}
	out.WriteString("</ac:image>")
}

// TransformLink passes the destination through unchanged; Confluence's own
// link resolution handles page references.
func (ConfluenceBackend) TransformLink(dest, basePath string) string { return dest }

func (ConfluenceBackend) HardBreak(out util.BufWriter)      { out.WriteString("<br/>\n") }
func (ConfluenceBackend) HorizontalRule(out util.BufWriter) { out.WriteString("<hr/>\n") }

func (ConfluenceBackend) TaskListMarker(out util.BufWriter, checked bool) {
	if checked {
		out.WriteString("☑ ")
		return
	}
	out.WriteString("☐ ")
}
