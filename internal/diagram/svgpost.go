package diagram

import (
	"fmt"
	"regexp"
	"strconv"
)

var googleFontsImportRe = regexp.MustCompile(`@import\s+url\([^)]*fonts\.googleapis[^)]*\)\s*;?`)
var dimAttrRe = regexp.MustCompile(`(width|height)="([0-9.]+)(px)?"`)

// PostProcessSVG strips the Google Fonts @import Kroki embeds (it points
// at a host the rendered page won't load from) and scales width/height
// attributes by dpi/96 so the browser sizes the image consistently with
// the DPI the diagram was prepared at.
func PostProcessSVG(svg string, dpi int) string {
	svg = googleFontsImportRe.ReplaceAllString(svg, "")
	if dpi <= 0 || dpi == 96 {
		return svg
	}
	scale := float64(dpi) / 96.0
	return dimAttrRe.ReplaceAllStringFunc(svg, func(match string) string {
		parts := dimAttrRe.FindStringSubmatch(match)
		attr, value := parts[1], parts[2]
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return match
		}
		return fmt.Sprintf(`%s="%s"`, attr, strconv.FormatFloat(f*scale, 'f', 2, 64))
	})
}
