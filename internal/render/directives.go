package render

import "github.com/weavedocs/weave/internal/directive"

// newDirectiveProcessor builds a fresh directive.Processor wired with the
// tabs/tab-pane pair. TabsDirective accumulates a group list across the
// document it processes, so a new one is required per page render rather
// than shared across the site.
func newDirectiveProcessor(baseDir, sourcePath string, maxIncludeDepth int) *directive.Processor {
	tabs := directive.NewTabsDirective()
	pane := directive.NewTabPaneDirective(tabs)

	return directive.NewProcessor(directive.Config{
		BaseDir:         baseDir,
		SourcePath:      sourcePath,
		MaxIncludeDepth: maxIncludeDepth,
	}).WithContainer(tabs).WithContainer(pane)
}
