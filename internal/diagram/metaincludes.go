package diagram

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/weavedocs/weave/internal/markdown"
)

// systemIncludeRe matches "!include systems/[ext/]{sys|dmn|svc}_name.iuml",
// capturing the kind prefix and the bare name.
var systemIncludeRe = regexp.MustCompile(`(?m)^\s*!include\s+systems/(?:[\w-]+/)?(sys|dmn|svc)_([\w-]+)\.iuml\s*$`)

// LinkResolver maps an entity type ("system", "domain", "service") and
// name to the site URL path of the page that documents it, if one exists.
type LinkResolver func(entityType, name string) (urlPath string, ok bool)

// MetaIncludeSource rewrites "!include systems/{sys|dmn|svc}_name.iuml"
// lines into C4-PlantUML macro calls, looking up each system's page
// through resolve to fill in a "$link" attribute. Lines that don't match
// a known system kind are left unchanged (the author may still supply the
// include file themselves); a matching line whose name has no
// corresponding page still becomes a macro call, without "$link".
// $link honors the renderer's relativeLinks/trailingSlash settings the
// same way page-to-page links do, per spec §4.G.
type MetaIncludeSource struct {
	resolve       LinkResolver
	relativeLinks bool
	trailingSlash bool
}

func NewMetaIncludeSource(resolve LinkResolver, relativeLinks, trailingSlash bool) *MetaIncludeSource {
	return &MetaIncludeSource{resolve: resolve, relativeLinks: relativeLinks, trailingSlash: trailingSlash}
}

var kindMacro = map[string]string{
	"sys": "System",
	"dmn": "System_Boundary",
	"svc": "Container",
}

// kindEntityType maps an include's kind prefix to the site PageType tag
// its documenting page is expected to carry.
var kindEntityType = map[string]string{
	"sys": "system",
	"dmn": "domain",
	"svc": "service",
}

// Rewrite expands matching include lines into C4 macro calls. basePath is
// the URL path of the page the diagram is rendered on, used to compute a
// relative $link when relativeLinks is enabled.
func (m *MetaIncludeSource) Rewrite(source, basePath string) string {
	return systemIncludeRe.ReplaceAllStringFunc(source, func(line string) string {
		parts := systemIncludeRe.FindStringSubmatch(line)
		kind, name := parts[1], parts[2]
		macro, ok := kindMacro[kind]
		if !ok {
			return line
		}
		link := ""
		if m.resolve != nil {
			if urlPath, ok := m.resolve(kindEntityType[kind], name); ok {
				link = m.formatLink(urlPath, basePath)
			}
		}
		alias := strings.ReplaceAll(name, "-", "_")
		label := strings.ReplaceAll(name, "_", " ")
		if link == "" {
			return fmt.Sprintf(`%s(%s, "%s")`, macro, alias, label)
		}
		return fmt.Sprintf(`%s(%s, "%s", $link="%s")`, macro, alias, label, link)
	})
}

// formatLink mirrors original_source's resolve_link: the trailing slash is
// applied first, then, if relativeLinks is set, the link is rewritten
// relative to basePath's directory — treating basePath itself as the
// directory when trailingSlash is also set, since the page is then hosted
// as basePath/index.html rather than basePath.html.
func (m *MetaIncludeSource) formatLink(urlPath, basePath string) string {
	urlPath = strings.Trim(urlPath, "/")
	link := "/" + urlPath
	if m.trailingSlash && urlPath != "" {
		link += "/"
	}
	if !m.relativeLinks {
		return link
	}

	from := basePath
	if m.trailingSlash && !strings.HasSuffix(from, "/") {
		from += "/"
	}
	dir := path.Dir(from)
	if dir == "." {
		dir = ""
	}
	return markdown.RelativeFromDir(dir, link)
}
