// Package render turns one storage page into executed HTML: a fresh
// markdown.Renderer (fresh directive.Processor, fresh diagram.Processor)
// runs the pipeline, the result is merged with site navigation/breadcrumb
// data into a PageContext, and a layout template executes it. Rendered
// pages are cached by (urlPath, source mtime); the site-structure cache,
// by contrast, is checked against the configured version stamp.
package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/weavedocs/weave/internal/cache"
	"github.com/weavedocs/weave/internal/config"
	"github.com/weavedocs/weave/internal/diagram"
	"github.com/weavedocs/weave/internal/markdown"
	"github.com/weavedocs/weave/internal/markdown/codeblock"
	"github.com/weavedocs/weave/internal/site"
	"github.com/weavedocs/weave/internal/storage"
)

// PageRenderer renders one page at a time against a live storage.Storage
// and site.SiteState. The markdown backend is stateless (HTMLBackend and
// ConfluenceBackend are both zero-value structs), so one instance is
// shared across renders; the directive and diagram processors are not,
// and are rebuilt fresh per call.
type PageRenderer struct {
	store   storage.Storage
	backend markdown.RenderBackend
	opts    markdown.Options

	diagramFactory *diagram.Factory // nil disables the diagram pipeline
	pageCache      cache.Cache

	layout *template.Template

	maxIncludeDepth int
}

// New builds a PageRenderer. diagramFactory may be nil to disable the
// diagram pipeline entirely (e.g. for the Confluence publish path, which
// renders storage-format XHTML that Confluence's own macros handle).
func New(store storage.Storage, backend markdown.RenderBackend, renderCfg config.RenderConfig, diagramFactory *diagram.Factory, pageCache cache.Cache, layout *template.Template) *PageRenderer {
	if pageCache == nil {
		pageCache = cache.NullCache{}
	}
	return &PageRenderer{
		store:   store,
		backend: backend,
		opts: markdown.Options{
			GFM:             renderCfg.GFM,
			RelativeLinks:   renderCfg.RelativeLinks,
			TrailingSlash:   renderCfg.TrailingSlash,
			MaxIncludeDepth: renderCfg.MaxIncludeDepth,
		},
		diagramFactory:  diagramFactory,
		pageCache:       pageCache,
		layout:          layout,
		maxIncludeDepth: renderCfg.MaxIncludeDepth,
	}
}

// RenderPage executes the full pipeline for urlPath and returns the
// layout-wrapped HTML page. state supplies breadcrumbs and navigation;
// pass the current site.SiteState snapshot. Results are cached under a
// "page:" key; see RenderContent for the unwrapped body (cached separately
// under a "content:" key) used by backends (Confluence) that supply their
// own page chrome.
func (r *PageRenderer) RenderPage(urlPath string, state *site.SiteState) (string, error) {
	return r.render(urlPath, state, "page:"+urlPath, true)
}

// RenderContent runs the same pipeline as RenderPage but returns the raw
// rendered body without executing the HTML layout around it, for backends
// whose output is not itself a full HTML document (Confluence storage
// format is inserted into a page Confluence already owns the chrome of).
func (r *PageRenderer) RenderContent(urlPath string, state *site.SiteState) (string, error) {
	return r.render(urlPath, state, "content:"+urlPath, false)
}

func (r *PageRenderer) render(urlPath string, state *site.SiteState, cacheKey string, wrapLayout bool) (string, error) {
	source, err := r.store.Read(urlPath)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", urlPath, err)
	}

	mtime, err := r.store.Mtime(urlPath)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", urlPath, err)
	}
	etag := fmt.Sprintf("%v", mtime)

	if cached, ok := r.pageCache.GetString(cacheKey, etag); ok {
		return cached, nil
	}

	ctx := r.buildContext(urlPath, source, state)

	var out string
	if wrapLayout {
		var buf bytes.Buffer
		if err := r.layout.Execute(&buf, ctx); err != nil {
			return "", fmt.Errorf("render %s: executing layout: %w", urlPath, err)
		}
		out = buf.String()
	} else {
		out = string(ctx.Content)
	}

	if err := r.pageCache.SetString(cacheKey, etag, out); err != nil {
		// A cache write failure degrades to "always recompute", not an error.
		_ = err
	}

	return out, nil
}

// buildContext runs the markdown pipeline and assembles the PageContext.
// It does not itself return an error: markdown/diagram rendering failures
// surface as Warnings and inline error figures, never as a failed page.
func (r *PageRenderer) buildContext(urlPath, source string, state *site.SiteState) PageContext {
	var processors []codeblock.Processor
	if r.diagramFactory != nil {
		processors = append(processors, r.diagramFactory.NewProcessor(urlPath))
	}

	directiveProc := newDirectiveProcessor(".", urlPath, r.maxIncludeDepth)

	renderer := markdown.New(r.backend, processors, directiveProc, r.opts)

	result, err := renderer.Render(source, urlPath)

	var html template.HTML
	var toc []markdown.TocEntry
	var title string
	var warnings []string
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("render failed: %v", err))
	} else {
		html = template.HTML(result.HTML)
		toc = result.TOC
		title = result.Title
		warnings = append(warnings, result.Warnings...)
	}

	if page, _, ok := state.GetPage(urlPath); ok && page.Title != "" {
		title = page.Title
	}

	scope := state.GetNavigationScope(urlPath)

	return PageContext{
		Title:       title,
		Content:     html,
		TOC:         toc,
		Breadcrumbs: state.GetBreadcrumbs(urlPath),
		Nav:         state.Navigation(scope),
		WordCount:   wordCount(source),
		ReadingTime: readingTime(wordCount(source)),
		Warnings:    warnings,
	}
}
