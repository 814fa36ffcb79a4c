package markdown

import "strings"

// ParseFenceInfo splits a fenced code block's info string ("lang
// key=val key2") into the language token and a key/value attribute map.
// Attributes without an "=" are recorded with an empty value and flagged
// via the returned warning.
func ParseFenceInfo(info string) (lang string, attrs map[string]string, warnings []string) {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return "", nil, nil
	}
	lang = fields[0]
	if len(fields) == 1 {
		return lang, nil, nil
	}

	attrs = make(map[string]string, len(fields)-1)
	for _, f := range fields[1:] {
		k, v, ok := strings.Cut(f, "=")
		if !ok {
			warnings = append(warnings, "malformed fence attribute: "+f)
			attrs[k] = ""
			continue
		}
		attrs[k] = v
	}
	return lang, attrs, warnings
}
