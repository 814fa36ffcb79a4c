package directive

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type kbdDirective struct{}

func (kbdDirective) Name() string { return "kbd" }
func (kbdDirective) Process(args Args, ctx *Context) Output {
	return HTMLOutput(fmt.Sprintf("<kbd>%s</kbd>", args.Content))
}

type youtubeDirective struct{}

func (youtubeDirective) Name() string { return "youtube" }
func (youtubeDirective) Process(args Args, ctx *Context) Output {
	return HTMLOutput(fmt.Sprintf(`<iframe src="https://www.youtube.com/embed/%s"></iframe>`, args.Content))
}

type noteDirective struct{}

func (noteDirective) Name() string { return "note" }
func (noteDirective) Start(args Args, ctx *Context) Output {
	title := args.Content
	if title == "" {
		title = "Note"
	}
	return HTMLOutput(fmt.Sprintf(`<div class="note" data-title="%s">`, title))
}
func (noteDirective) End(line int) (string, bool) { return "</div>", true }

func TestInlineDirectiveExpansion(t *testing.T) {
	p := NewProcessor(Config{}).WithInline(kbdDirective{})
	out, warnings, err := p.PrePass("Press :kbd[Ctrl+C] to copy.")
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Equal(t, "Press <kbd>Ctrl+C</kbd> to copy.", out)
}

func TestMultipleInlineDirectivesOnOneLine(t *testing.T) {
	p := NewProcessor(Config{}).WithInline(kbdDirective{})
	out, _, err := p.PrePass("Press :kbd[Ctrl+C] then :kbd[Ctrl+V].")
	require.NoError(t, err)
	require.Equal(t, "Press <kbd>Ctrl+C</kbd> then <kbd>Ctrl+V</kbd>.", out)
}

func TestLeafDirectiveExpansion(t *testing.T) {
	p := NewProcessor(Config{}).WithLeaf(youtubeDirective{})
	out, _, err := p.PrePass("::youtube[dQw4w9WgXcQ]")
	require.NoError(t, err)
	require.Contains(t, out, "dQw4w9WgXcQ")
}

func TestContainerDirectiveExpansion(t *testing.T) {
	p := NewProcessor(Config{}).WithContainer(noteDirective{})
	out, _, err := p.PrePass(":::note[Important]\nContent here\n:::")
	require.NoError(t, err)
	require.Contains(t, out, `<div class="note" data-title="Important">`)
	require.Contains(t, out, "Content here")
	require.Contains(t, out, "</div>")
}

func TestUnknownDirectivePassesThrough(t *testing.T) {
	p := NewProcessor(Config{})
	out, _, err := p.PrePass(":unknown[content]")
	require.NoError(t, err)
	require.Equal(t, ":unknown[content]", out)
}

func TestUnknownContainerPassesThroughUnchanged(t *testing.T) {
	p := NewProcessor(Config{})
	out, _, err := p.PrePass(":::unknown\nContent\n:::")
	require.NoError(t, err)
	require.Contains(t, out, ":::unknown")
}

func TestDirectiveInsideFenceIsSkipped(t *testing.T) {
	p := NewProcessor(Config{}).WithInline(kbdDirective{})
	input := "```\n:kbd[inside fence]\n```\n:kbd[outside]"
	out, _, err := p.PrePass(input)
	require.NoError(t, err)
	require.Contains(t, out, ":kbd[inside fence]")
	require.Contains(t, out, "<kbd>outside</kbd>")
}

func TestUnclosedContainerWarns(t *testing.T) {
	p := NewProcessor(Config{}).WithContainer(noteDirective{})
	_, warnings, err := p.PrePass(":::note\nContent")
	require.NoError(t, err)
	require.True(t, containsSubstring(warnings, "unclosed"))
}

func TestStrayCloseWarns(t *testing.T) {
	p := NewProcessor(Config{})
	out, warnings, err := p.PrePass(":::")
	require.NoError(t, err)
	require.True(t, containsSubstring(warnings, "stray"))
	require.Equal(t, ":::", out)
}

func TestIncludeDepthLimitWarns(t *testing.T) {
	var include includeDirective
	p := NewProcessor(Config{MaxIncludeDepth: 3}).WithLeaf(&include)
	_, warnings, err := p.PrePass("::include[start]")
	require.NoError(t, err)
	require.True(t, containsSubstring(warnings, "Maximum include depth"))
}

type includeDirective struct{}

func (*includeDirective) Name() string { return "include" }
func (*includeDirective) Process(args Args, ctx *Context) Output {
	return MarkdownOutput("::include[self]")
}

func containsSubstring(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.Contains(h, needle) {
			return true
		}
	}
	return false
}
