package site

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/weavedocs/weave/internal/cache"
	"github.com/weavedocs/weave/internal/storage"
)

// Site is the active, atomically-swappable site snapshot: the only mutable
// global state in the module. Readers take a lock-free fast path once a
// build has happened; a single mutex serialises rebuilds.
type Site struct {
	store          storage.Storage
	structureCache cache.Cache
	pageCache      cache.Cache
	diagramCache   cache.Cache
	version        string

	valid    atomic.Bool
	snapshot atomic.Pointer[SiteState]
	reloadMu sync.Mutex
}

// NewSite wires a Site to its storage backend and the three cache buckets
// it owns (structure, page, diagram). Any of the caches may be a
// cache.NullCache.
func NewSite(store storage.Storage, structureCache, pageCache, diagramCache cache.Cache, version string) *Site {
	return &Site{
		store:          store,
		structureCache: structureCache,
		pageCache:      pageCache,
		diagramCache:   diagramCache,
		version:        version,
	}
}

// PageCache exposes the page-render cache bucket to the renderer.
func (s *Site) PageCache() cache.Cache { return s.pageCache }

// DiagramCache exposes the diagram cache bucket to the diagram pipeline.
func (s *Site) DiagramCache() cache.Cache { return s.diagramCache }

// Current returns the live SiteState, rebuilding it first if invalidated.
// This implements the double-checked-locking pattern from §5: a lock-free
// load when valid, a single serialised rebuild otherwise.
func (s *Site) Current() (*SiteState, error) {
	if s.valid.Load() {
		return s.snapshot.Load(), nil
	}

	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	if s.valid.Load() {
		return s.snapshot.Load(), nil
	}

	state, err := s.rebuild()
	if err != nil {
		return nil, err
	}
	s.snapshot.Store(state)
	s.valid.Store(true)
	return state, nil
}

// Invalidate clears the validity flag (lock-free) and overwrites the cached
// site structure with an entry that no version stamp matches, so the next
// Current call rebuilds from a fresh storage scan. Readers already holding
// a snapshot finish their render against it unaffected.
func (s *Site) Invalidate() {
	s.valid.Store(false)
	_ = s.structureCache.SetString(structureCacheKey, "", "")
}

const structureCacheKey = "site-structure"

// scanDocument is the JSON-serializable shape persisted in the structure
// cache; it mirrors storage.Document.
type scanDocument struct {
	URLPath    string `json:"urlPath"`
	Title      string `json:"title"`
	HasContent bool   `json:"hasContent"`
	PageType   string `json:"pageType"`
}

func (s *Site) rebuild() (*SiteState, error) {
	docs, err := s.loadDocuments()
	if err != nil {
		return nil, err
	}
	return buildFromDocuments(docs, s.store)
}

// loadDocuments consults the structure cache (keyed by the configured
// version stamp) before falling back to a fresh storage scan.
func (s *Site) loadDocuments() ([]storage.Document, error) {
	if raw, ok := s.structureCache.GetString(structureCacheKey, s.version); ok {
		var cached []scanDocument
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			docs := make([]storage.Document, len(cached))
			for i, c := range cached {
				docs[i] = storage.Document(c)
			}
			return docs, nil
		}
	}

	docs, err := s.store.Scan()
	if err != nil {
		return nil, err
	}

	serializable := make([]scanDocument, len(docs))
	for i, d := range docs {
		serializable[i] = scanDocument(d)
	}
	if raw, err := json.Marshal(serializable); err == nil {
		_ = s.structureCache.SetString(structureCacheKey, s.version, string(raw))
	}
	return docs, nil
}

// buildFromDocuments orders the scanned documents so every page's parent
// is added first, then feeds them through SiteStateBuilder.
func buildFromDocuments(docs []storage.Document, store storage.Storage) (*SiteState, error) {
	byPath := make(map[string]storage.Document, len(docs))
	paths := make([]string, 0, len(docs))
	isIndex := make(map[string]bool, len(docs))
	for _, d := range docs {
		byPath[d.URLPath] = d
		paths = append(paths, d.URLPath)
		isIndex[d.URLPath] = d.HasContent
	}

	ordered := SortDocumentsForBuild(paths, isIndex)

	b := NewSiteStateBuilder()
	indexOf := make(map[string]int, len(ordered))

	for _, p := range ordered {
		d := byPath[p]
		parentPath, isRoot := ParentURLPath(p)
		parentIdx := -1
		if !isRoot {
			if pi, ok := indexOf[parentPath]; ok {
				parentIdx = pi
			}
		}

		m, _ := store.Meta(p)
		idx := b.AddPageFromSource(d.Title, d.URLPath, sourceKeyFor(d), d.HasContent, parentIdx, d.PageType, m)
		indexOf[p] = idx
	}

	return b.Build(), nil
}

func sourceKeyFor(d storage.Document) string {
	if d.URLPath == "" {
		return "index.md"
	}
	return d.URLPath + ".md"
}
