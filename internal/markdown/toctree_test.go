package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildNavTreeNestsHeadings(t *testing.T) {
	src := "# Title\n\n## Alpha\n\ntext\n\n### Beta\n\nmore text\n\n## Gamma\n"

	tree, err := BuildNavTree(src)
	require.NoError(t, err)
	require.NotNil(t, tree)
	require.NotEmpty(t, tree.Items)
}

func TestBuildNavTreeEmptyDocument(t *testing.T) {
	tree, err := BuildNavTree("no headings here\n")
	require.NoError(t, err)
	require.NotNil(t, tree)
	require.Empty(t, tree.Items)
}
