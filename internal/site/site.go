// Package site builds the in-memory page graph (SiteState) from a flat
// slice of storage.Document values and derives navigation projections from
// it: breadcrumbs, scoped navigation, and section lookups.
package site

import (
	"sort"
	"strings"

	"github.com/weavedocs/weave/internal/metadata"
)

// Page is one node in the site graph.
type Page struct {
	Title      string
	URLPath    string
	HasContent bool
	PageType   string // "" when the page carries no type
	Metadata   *metadata.Metadata
}

// SectionInfo describes a page that acts as a navigation scope root.
type SectionInfo struct {
	PageIndex int
	Title     string
	PageType  string
}

// SiteState is the immutable, atomically-swappable snapshot of the site
// graph. Construct it via SiteStateBuilder; never mutate a built SiteState.
type SiteState struct {
	pages      []Page
	children   [][]int
	parents    []int // -1 for root pages
	roots      []int
	pathIndex  map[string]int
	srcIndex   map[string]int
	sections   map[string]SectionInfo
	hasContent []bool
}

// GetPage looks up a page by URL path in O(1).
func (s *SiteState) GetPage(urlPath string) (*Page, int, bool) {
	idx, ok := s.pathIndex[urlPath]
	if !ok {
		return nil, 0, false
	}
	return &s.pages[idx], idx, true
}

// GetPageBySource looks up a page by the source path it was registered
// under (see SiteStateBuilder.AddPageFromSource).
func (s *SiteState) GetPageBySource(sourcePath string) (*Page, int, bool) {
	idx, ok := s.srcIndex[sourcePath]
	if !ok {
		return nil, 0, false
	}
	return &s.pages[idx], idx, true
}

// AllURLPaths returns the URL path of every page with content, for
// callers (the build command) that need to render the whole tree rather
// than a single requested page.
func (s *SiteState) AllURLPaths() []string {
	paths := make([]string, 0, len(s.pages))
	for i, p := range s.pages {
		if s.hasContent[i] {
			paths = append(paths, p.URLPath)
		}
	}
	return paths
}

// HasContent reports the derived has-content flag for page i.
func (s *SiteState) HasContent(i int) bool {
	if i < 0 || i >= len(s.hasContent) {
		return false
	}
	return s.hasContent[i]
}

// Section reports whether urlPath is a registered section.
func (s *SiteState) Section(urlPath string) (SectionInfo, bool) {
	sec, ok := s.sections[urlPath]
	return sec, ok
}

// FindByType looks up the page whose PageType matches pageType and whose
// final URL path segment matches slug (hyphen/underscore-insensitive), for
// resolving an entity reference (a diagram meta-include, "sys_billing") to
// the page that documents it. Linear in the page count; fine for the
// batch-oriented callers (one lookup per meta-include line in a diagram).
func (s *SiteState) FindByType(pageType, slug string) (urlPath string, ok bool) {
	norm := func(v string) string { return strings.ReplaceAll(v, "_", "-") }
	slug = norm(slug)
	for _, p := range s.pages {
		if p.PageType != pageType {
			continue
		}
		last := p.URLPath
		if i := strings.LastIndex(last, "/"); i >= 0 {
			last = last[i+1:]
		}
		if norm(last) == slug {
			return p.URLPath, true
		}
	}
	return "", false
}

// BreadcrumbItem is a single crumb in a breadcrumb trail.
type BreadcrumbItem struct {
	Title string
	Path  string
}

// GetBreadcrumbs returns the trail from the synthetic "Home" root down to
// (but excluding) the requested page. The root page itself is filtered out
// since "Home" already represents it.
func (s *SiteState) GetBreadcrumbs(urlPath string) []BreadcrumbItem {
	crumbs := []BreadcrumbItem{{Title: "Home", Path: ""}}

	idx, ok := s.pathIndex[urlPath]
	if !ok {
		return crumbs
	}

	var chain []int
	for p := s.parents[idx]; p != -1; p = s.parents[p] {
		chain = append(chain, p)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		pg := s.pages[chain[i]]
		if pg.URLPath == "" {
			continue // root page already represented by "Home"
		}
		crumbs = append(crumbs, BreadcrumbItem{Title: pg.Title, Path: pg.URLPath})
	}
	return crumbs
}

// NavItem is one entry in a Navigation listing.
type NavItem struct {
	Title    string
	Path     string
	IsSection bool
}

// ScopeInfo describes the navigation scope a Navigation was built for.
type ScopeInfo struct {
	Path        string
	Title       string
	SectionType string
}

// Navigation is the projection returned by the scoped-navigation query.
type Navigation struct {
	Items       []NavItem
	Scope       *ScopeInfo // nil for the root scope
	ParentScope *ScopeInfo // nearest ancestor section, nil if none
}

// Navigation returns the child listing for the given scope. Scope "" means
// the root; otherwise scope must name a registered section. Sections
// encountered among the children become leaves: their own children are
// never included. Pages without content in their subtree are filtered.
// An invalid (non-root, non-section) scope yields an empty Navigation.
func (s *SiteState) Navigation(scope string) Navigation {
	if scope == "" {
		parentIdx := -1
		if idx, ok := s.pathIndex[""]; ok {
			parentIdx = idx
		}
		items := s.navItemsUnder(parentIdx)
		return Navigation{Items: items}
	}

	sec, ok := s.sections[scope]
	if !ok {
		return Navigation{}
	}
	items := s.navItemsUnder(sec.PageIndex)
	scopeInfo := &ScopeInfo{Path: "/" + scope, Title: sec.Title, SectionType: sec.PageType}
	nav := Navigation{Items: items, Scope: scopeInfo}
	if parent := s.nearestAncestorSection(sec.PageIndex); parent != nil {
		nav.ParentScope = parent
	}
	return nav
}

// navItemsUnder lists the visible children of parentIdx (-1 meaning the
// root-level pages when there is no root page), applying the
// has-content filter and the sections-become-leaves rule.
func (s *SiteState) navItemsUnder(parentIdx int) []NavItem {
	var kids []int
	if parentIdx == -1 {
		kids = s.roots
	} else {
		kids = s.children[parentIdx]
	}

	items := make([]NavItem, 0, len(kids))
	for _, c := range kids {
		if !s.hasContent[c] {
			continue
		}
		pg := s.pages[c]
		_, isSection := s.sections[pg.URLPath]
		items = append(items, NavItem{Title: pg.Title, Path: pg.URLPath, IsSection: isSection})
	}
	return items
}

// GetNavigationScope returns the scope a page belongs to: itself if it is a
// section, else the nearest ancestor section, else "".
func (s *SiteState) GetNavigationScope(urlPath string) string {
	idx, ok := s.pathIndex[urlPath]
	if !ok {
		return ""
	}
	if _, ok := s.sections[urlPath]; ok {
		return urlPath
	}
	if parent := s.nearestAncestorSection(idx); parent != nil {
		return strings.TrimPrefix(parent.Path, "/")
	}
	return ""
}

func (s *SiteState) nearestAncestorSection(idx int) *ScopeInfo {
	for p := s.parents[idx]; p != -1; p = s.parents[p] {
		pg := s.pages[p]
		if sec, ok := s.sections[pg.URLPath]; ok {
			return &ScopeInfo{Path: "/" + pg.URLPath, Title: sec.Title, SectionType: sec.PageType}
		}
	}
	return nil
}

// SiteStateBuilder is the only construction path for a SiteState. Pages
// must be added in an order where each page's parent already exists;
// callers typically sort candidate documents by path depth, index.md
// before siblings, before submitting them.
type SiteStateBuilder struct {
	pages    []Page
	parents  []int
	children [][]int
	srcOf    map[int]string
}

// NewSiteStateBuilder creates an empty builder.
func NewSiteStateBuilder() *SiteStateBuilder {
	return &SiteStateBuilder{srcOf: make(map[int]string)}
}

// AddPage registers a page with an optional parent index (-1 for a root
// page) and returns the new page's index.
func (b *SiteStateBuilder) AddPage(title, urlPath string, hasContent bool, parentIdx int, pageType string, meta *metadata.Metadata) int {
	idx := len(b.pages)
	b.pages = append(b.pages, Page{
		Title:      title,
		URLPath:    urlPath,
		HasContent: hasContent,
		PageType:   pageType,
		Metadata:   meta,
	})
	b.parents = append(b.parents, parentIdx)
	b.children = append(b.children, nil)
	if parentIdx >= 0 {
		b.children[parentIdx] = append(b.children[parentIdx], idx)
	}
	return idx
}

// AddPageFromSource is AddPage plus registering a source-file key usable
// with SiteState.GetPageBySource.
func (b *SiteStateBuilder) AddPageFromSource(title, urlPath, sourcePath string, hasContent bool, parentIdx int, pageType string, meta *metadata.Metadata) int {
	idx := b.AddPage(title, urlPath, hasContent, parentIdx, pageType, meta)
	b.srcOf[idx] = sourcePath
	return idx
}

// Build derives path_index, source_path_index, has_content (post-order DFS
// over roots) and sections, and returns the immutable SiteState.
func (b *SiteStateBuilder) Build() *SiteState {
	n := len(b.pages)
	s := &SiteState{
		pages:      b.pages,
		children:   b.children,
		parents:    b.parents,
		pathIndex:  make(map[string]int, n),
		srcIndex:   make(map[string]int, len(b.srcOf)),
		sections:   make(map[string]SectionInfo),
		hasContent: make([]bool, n),
	}

	var roots []int
	for i, p := range b.parents {
		if p == -1 {
			roots = append(roots, i)
		}
	}
	s.roots = roots

	for i, pg := range b.pages {
		s.pathIndex[pg.URLPath] = i
		if pg.PageType != "" {
			s.sections[pg.URLPath] = SectionInfo{PageIndex: i, Title: pg.Title, PageType: pg.PageType}
		}
	}
	for i, src := range b.srcOf {
		s.srcIndex[src] = i
	}

	var dfs func(i int) bool
	visited := make([]bool, n)
	dfs = func(i int) bool {
		if visited[i] {
			return s.hasContent[i]
		}
		visited[i] = true
		has := s.pages[i].HasContent
		for _, c := range s.children[i] {
			if dfs(c) {
				has = true
			}
		}
		s.hasContent[i] = has
		return has
	}
	for _, r := range roots {
		dfs(r)
	}
	// Any page unreachable from a root (shouldn't normally happen) still
	// gets a has-content value.
	for i := range b.pages {
		if !visited[i] {
			dfs(i)
		}
	}

	return s
}

// SortDocumentsForBuild orders candidate (urlPath, isIndex) pairs by depth
// (shallowest first) then index pages before siblings, then
// case-insensitive name — the order SiteStateBuilder requires so that every
// page's parent has already been added.
func SortDocumentsForBuild(paths []string, isIndex map[string]bool) []string {
	out := append([]string(nil), paths...)
	depth := func(p string) int {
		if p == "" {
			return 0
		}
		return strings.Count(p, "/") + 1
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := depth(out[i]), depth(out[j])
		if di != dj {
			return di < dj
		}
		ii, ij := isIndex[out[i]], isIndex[out[j]]
		if ii != ij {
			return ii
		}
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

// ParentURLPath returns the URL path of urlPath's parent directory, or ""
// for a top-level page, and true when urlPath itself is the root.
func ParentURLPath(urlPath string) (string, bool) {
	if urlPath == "" {
		return "", true
	}
	i := strings.LastIndex(urlPath, "/")
	if i < 0 {
		return "", false
	}
	return urlPath[:i], false
}
