package directive

import (
	"regexp"
	"strings"
)

var (
	containerStartRe = regexp.MustCompile(`^:::([A-Za-z][A-Za-z0-9_-]*)(\[[^\]]*\])?(\{[^}]*\})?\s*$`)
	containerEndRe    = regexp.MustCompile(`^(:{3,})\s*$`)
	leafRe            = regexp.MustCompile(`^::([A-Za-z][A-Za-z0-9_-]*)(\[[^\]]*\])?\s*$`)
	inlineRe          = regexp.MustCompile(`:([A-Za-z][A-Za-z0-9_-]*)(\[[^\]]*\])?(\{[^}]*\})?`)
)

// parsedKind distinguishes the four directive shapes a line can hold.
type parsedKind int

const (
	kindNone parsedKind = iota
	kindContainerStart
	kindContainerEnd
	kindLeaf
)

type parsedLine struct {
	kind       parsedKind
	name       string
	args       Args
	colonCount int // kindContainerEnd only
}

// parseContainerLine recognizes a whole line as a container open or close.
// It returns ok=false for anything else, including inline/leaf directives.
func parseContainerLine(line string) (parsedLine, bool) {
	if m := containerEndRe.FindStringSubmatch(line); m != nil {
		return parsedLine{kind: kindContainerEnd, colonCount: len(m[1])}, true
	}
	if m := containerStartRe.FindStringSubmatch(line); m != nil {
		return parsedLine{
			kind: kindContainerStart,
			name: m[1],
			args: Args{Content: bracketContent(m[2]), Attrs: parseAttrs(m[3])},
		}, true
	}
	return parsedLine{}, false
}

// parseLeafLine recognizes a whole line as a leaf directive.
func parseLeafLine(line string) (parsedLine, bool) {
	m := leafRe.FindStringSubmatch(line)
	if m == nil {
		return parsedLine{}, false
	}
	return parsedLine{kind: kindLeaf, name: m[1], args: Args{Content: bracketContent(m[2])}}, true
}

// inlineMatch is one ":name[content]{attrs}" occurrence found mid-line.
type inlineMatch struct {
	name       string
	args       Args
	start, end int
}

// findInlineDirective finds the first inline-directive occurrence in line
// starting at or after from, or ok=false if there is none.
func findInlineDirective(line string, from int) (inlineMatch, bool) {
	loc := inlineRe.FindStringSubmatchIndex(line[from:])
	if loc == nil {
		return inlineMatch{}, false
	}
	name := line[from+loc[2] : from+loc[3]]
	content := ""
	if loc[4] >= 0 {
		content = bracketContent(line[from+loc[4] : from+loc[5]])
	}
	var attrsRaw string
	if loc[6] >= 0 {
		attrsRaw = line[from+loc[6] : from+loc[7]]
	}
	return inlineMatch{
		name:  name,
		args:  Args{Content: content, Attrs: parseAttrs(attrsRaw)},
		start: from + loc[0],
		end:   from + loc[1],
	}, true
}

func bracketContent(bracketed string) string {
	if len(bracketed) < 2 {
		return ""
	}
	return bracketed[1 : len(bracketed)-1]
}

// parseAttrs parses a "{#id .class1 .class2 key=val}" attribute block.
// Multiple classes are space-joined under the "class" key.
func parseAttrs(braced string) map[string]string {
	if len(braced) < 2 {
		return nil
	}
	inner := braced[1 : len(braced)-1]
	fields := strings.Fields(inner)
	if len(fields) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(fields))
	var classes []string
	for _, f := range fields {
		switch {
		case strings.HasPrefix(f, "#"):
			attrs["id"] = f[1:]
		case strings.HasPrefix(f, "."):
			classes = append(classes, f[1:])
		default:
			if k, v, ok := strings.Cut(f, "="); ok {
				attrs[k] = strings.Trim(v, `"'`)
			}
		}
	}
	if len(classes) > 0 {
		attrs["class"] = strings.Join(classes, " ")
	}
	return attrs
}
