package render

import (
	_ "embed"
	"html/template"
)

//go:embed default_layout.html
var defaultLayoutSource string

// funcMap is deliberately tiny next to the site-generator example's
// template.FuncMap(): Weave's layout has no partials, no collection
// helpers, no date formatting. It renders one page at a time.
func funcMap() template.FuncMap {
	return template.FuncMap{
		"safeHTML": func(s string) template.HTML { return template.HTML(s) },
	}
}

// DefaultLayout parses the built-in layout template. Callers needing a
// custom layout can parse their own file with the same FuncMap and name
// ("page") instead of calling this.
func DefaultLayout() (*template.Template, error) {
	return template.New("page").Funcs(funcMap()).Parse(defaultLayoutSource)
}
