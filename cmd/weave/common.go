package main

import (
	"time"

	"github.com/weavedocs/weave/internal/cache"
	"github.com/weavedocs/weave/internal/config"
	"github.com/weavedocs/weave/internal/diagram"
	"github.com/weavedocs/weave/internal/markdown"
	"github.com/weavedocs/weave/internal/render"
	"github.com/weavedocs/weave/internal/site"
	"github.com/weavedocs/weave/internal/storage"
)

// core bundles the wired-up collaborators every subcommand needs: a
// storage backend, the active site snapshot, and a page renderer. build,
// serve, and confluence push all start from the same wiring and cache
// buckets, differing only in which markdown backend they use and whether
// the diagram pipeline is enabled.
type core struct {
	store    storage.Storage
	site     *site.Site
	renderer *render.PageRenderer
}

// newCore constructs the shared collaborators from cfg. backend selects
// the markdown.RenderBackend (HTML for build/serve, Confluence for
// confluence push); diagrams disables the Kroki pipeline when false,
// since Confluence's own macros render diagrams uploaded as attachments
// rather than inline SVG.
func newCore(cfg *config.Config, backend markdown.RenderBackend, diagrams bool) (*core, error) {
	store := storage.NewFileStorage(cfg.Content.Dir, cfg.Content.MetaFilename, cfg.Content.READMEFallback)
	if cfg.Server.DebounceMillis > 0 {
		store.WithDebounce(time.Duration(cfg.Server.DebounceMillis) * time.Millisecond)
	}

	fileCache, err := cache.NewFileCache(cfg.Cache.Dir, cfg.Cache.Version)
	if err != nil {
		return nil, err
	}

	structureCache := cache.Cache(fileCache)
	pageCache := cache.Cache(fileCache)
	diagramCache := cache.Cache(fileCache)

	activeSite := site.NewSite(store, structureCache, pageCache, diagramCache, cfg.Cache.Version)

	var diagramFactory *diagram.Factory
	if diagrams {
		resolver := diagram.LinkResolver(func(entityType, name string) (string, bool) {
			state, err := activeSite.Current()
			if err != nil {
				return "", false
			}
			return state.FindByType(entityType, name)
		})
		metaInclude := diagram.NewMetaIncludeSource(resolver, cfg.Render.RelativeLinks, cfg.Render.TrailingSlash)
		diagramFactory = diagram.NewFactory(diagram.Config{
			KrokiURL:          cfg.Diagram.KrokiURL,
			EndpointOverrides: cfg.Diagram.EndpointOverrides,
			DefaultFormat:     cfg.Diagram.DefaultFormat,
			DPI:               cfg.Diagram.DPI,
			Timeout:           cfg.Diagram.Timeout,
			Workers:           cfg.Diagram.Workers,
			IncludeDirs:       cfg.Diagram.IncludeDirs,
			ConfigPreamble:    cfg.Diagram.ConfigPreamble,
		}, diagramCache, metaInclude)
	}

	layout, err := render.DefaultLayout()
	if err != nil {
		return nil, err
	}

	renderer := render.New(store, backend, cfg.Render, diagramFactory, pageCache, layout)

	return &core{store: store, site: activeSite, renderer: renderer}, nil
}
