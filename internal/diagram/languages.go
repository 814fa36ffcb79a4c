package diagram

import (
	"fmt"
	"strings"
)

// supportedEndpoints is the set of Kroki diagram types this pipeline
// recognizes, keyed by their canonical Kroki endpoint name. This mirrors
// the full diagram-language enum, not just the handful exercised by the
// teacher's own content.
var supportedEndpoints = map[string]bool{
	"plantuml":   true,
	"c4plantuml": true,
	"mermaid":    true,
	"graphviz":   true,
	"ditaa":      true,
	"blockdiag":  true,
	"seqdiag":    true,
	"actdiag":    true,
	"nwdiag":     true,
	"packetdiag": true,
	"rackdiag":   true,
	"erd":        true,
	"nomnoml":    true,
	"svgbob":     true,
	"vega":       true,
	"vegalite":   true,
	"wavedrom":   true,
}

// endpointAliases maps a fence language to the Kroki endpoint it renders
// through, for names that don't match a Kroki endpoint directly.
var endpointAliases = map[string]string{
	"dot": "graphviz",
	"c4":  "c4plantuml",
}

// plantUMLEndpoints is the subset of endpoints whose source uses PlantUML
// include syntax and so goes through include resolution and dpi injection.
var plantUMLEndpoints = map[string]bool{
	"plantuml":   true,
	"c4plantuml": true,
}

// ResolveEndpoint recognizes a fence language as a diagram endpoint,
// stripping an optional "kroki-" prefix and applying aliases. ok is false
// for anything not in the supported set.
func ResolveEndpoint(lang string) (endpoint string, ok bool) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	lang = strings.TrimPrefix(lang, "kroki-")
	if alias, ok := endpointAliases[lang]; ok {
		lang = alias
	}
	if supportedEndpoints[lang] {
		return lang, true
	}
	return "", false
}

// IsPlantUML reports whether endpoint's source goes through include
// resolution, config-preamble merge, and dpi skinparam injection.
func IsPlantUML(endpoint string) bool {
	return plantUMLEndpoints[endpoint]
}

// NormalizeFormat validates the fence's "format" attribute, falling back
// to defaultFormat (itself defaulted to svg when unset) when the
// attribute is absent, and warning on anything unrecognized.
func NormalizeFormat(raw, defaultFormat string) (format string, warning string) {
	if defaultFormat != "svg" && defaultFormat != "png" {
		defaultFormat = "svg"
	}
	switch raw {
	case "":
		return defaultFormat, ""
	case "svg", "png":
		return raw, ""
	default:
		return defaultFormat, fmt.Sprintf("unknown diagram format %q, falling back to %s", raw, defaultFormat)
	}
}
