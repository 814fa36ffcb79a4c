package diagram

import (
	"strings"
	"testing"
)

func TestPostProcessSVGStripsGoogleFontsImport(t *testing.T) {
	svg := `<svg><style>@import url(https://fonts.googleapis.com/css?family=Roboto);</style></svg>`
	out := PostProcessSVG(svg, 96)
	if strings.Contains(out, "fonts.googleapis") {
		t.Fatalf("google fonts import not stripped: %s", out)
	}
}

func TestPostProcessSVGScalesDimensionsByDPI(t *testing.T) {
	svg := `<svg width="100px" height="50px"></svg>`
	out := PostProcessSVG(svg, 192)
	if !strings.Contains(out, `width="200.00"`) || !strings.Contains(out, `height="100.00"`) {
		t.Fatalf("dimensions not scaled: %s", out)
	}
}

func TestPostProcessSVGLeavesDefaultDPIUnscaled(t *testing.T) {
	svg := `<svg width="100px" height="50px"></svg>`
	out := PostProcessSVG(svg, 96)
	if out != svg {
		t.Fatalf("default dpi should leave svg unchanged, got %s", out)
	}
}
