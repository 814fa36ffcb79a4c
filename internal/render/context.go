package render

import (
	"html/template"
	"strings"

	"github.com/weavedocs/weave/internal/markdown"
	"github.com/weavedocs/weave/internal/site"
)

// wordsPerMinute is the reading-speed constant the reading-time estimate
// divides by, matching the site-generator example's own figure.
const wordsPerMinute = 200

// PageContext is the data handed to the layout template to execute one
// page: the rendered body plus everything the site model knows about
// where that page sits.
type PageContext struct {
	Title       string
	Content     template.HTML
	TOC         []markdown.TocEntry
	Breadcrumbs []site.BreadcrumbItem
	Nav         site.Navigation
	WordCount   int
	ReadingTime int // minutes, rounded up, minimum 1 (0 for an empty page)
	Warnings    []string
}

// wordCount does a simple whitespace split over the raw markdown source
// (not the rendered HTML, which would overcount on tag text). It is a
// rough estimate, same as the site-generator example's own word count.
func wordCount(source string) int {
	return len(strings.Fields(source))
}

// readingTime estimates minutes to read words at wordsPerMinute, rounded
// up, with a floor of one minute for any non-empty page.
func readingTime(words int) int {
	if words == 0 {
		return 0
	}
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
