package markdown

import (
	"path"
	"regexp"
	"strings"
)

// rewriteAbsoluteLinks runs as the final pipeline step when Options.RelativeLinks
// is set: it turns root-relative href/src attributes ("/a/b") produced by the
// render pass into paths relative to basePath, so the output is portable to a
// plain file:// or zip-archive hosting that has no notion of a site root.
// External URLs, fragment-only links, and already-relative paths are left
// untouched.
var attrRefPattern = regexp.MustCompile(`(href|src)="(/[^"]*)"`)

func rewriteAbsoluteLinks(html, basePath string) string {
	dir := path.Dir(basePath)
	if dir == "." {
		dir = ""
	}
	return attrRefPattern.ReplaceAllStringFunc(html, func(match string) string {
		sub := attrRefPattern.FindStringSubmatch(match)
		attr, target := sub[1], sub[2]
		if isExternalURL(target) {
			return match
		}
		rel := RelativeFromDir(dir, target)
		return attr + `="` + rel + `"`
	})
}

// RelativeFromDir rewrites an absolute site path as a path relative to dir,
// using ".." segments to climb back out of dir toward the root. Exported
// for internal/diagram's meta-include link resolver, which applies the
// same relative-link rule to a C4 macro's "$link" attribute.
func RelativeFromDir(dir, target string) string {
	fragment := ""
	if i := strings.Index(target, "#"); i >= 0 {
		fragment = target[i:]
		target = target[:i]
	}
	target = strings.TrimPrefix(target, "/")

	var up string
	if dir != "" {
		depth := strings.Count(dir, "/") + 1
		up = strings.Repeat("../", depth)
	}
	rel := up + target
	if rel == "" {
		rel = "."
	}
	return rel + fragment
}
