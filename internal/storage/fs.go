package storage

import (
	"bufio"
	"log"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/weavedocs/weave/internal/metadata"
	"github.com/weavedocs/weave/internal/watch"
)

// skipDirNames are directories the scanner never recurses into.
var skipDirNames = map[string]bool{
	"node_modules": true,
	"target":       true,
	"dist":         true,
	"build":        true,
	".cache":       true,
	"vendor":       true,
	"__pycache__":  true,
}

// FileStorage is the filesystem-backed implementation of Storage.
type FileStorage struct {
	root           string
	metaFilename   string
	readmeFallback string
	backend        string
	debounce       time.Duration // zero means Watch uses watch.New's own default

	titleMu    sync.Mutex
	titleCache map[string]titleCacheEntry // key: file path
}

type titleCacheEntry struct {
	mtime float64
	title string
}

// NewFileStorage creates a FileStorage rooted at root. metaFilename defaults
// to "meta.yaml" when empty.
func NewFileStorage(root, metaFilename, readmeFallback string) *FileStorage {
	if metaFilename == "" {
		metaFilename = "meta.yaml"
	}
	return &FileStorage{
		root:           root,
		metaFilename:   metaFilename,
		readmeFallback: readmeFallback,
		backend:        "fs",
		titleCache:     make(map[string]titleCacheEntry),
	}
}

// WithDebounce sets the coalescing window Watch uses, returning s for
// convenient chaining. A zero duration leaves watch.New's own default.
func (s *FileStorage) WithDebounce(d time.Duration) *FileStorage {
	s.debounce = d
	return s
}

// checkSafe rejects any URL path containing a ".." component.
func checkSafe(urlPath string) error {
	for _, part := range strings.Split(urlPath, "/") {
		if part == ".." {
			return newError(KindInvalidPath, "fs", urlPath, nil)
		}
	}
	return nil
}

// contentPath maps a URL path to the on-disk content file, preferring
// "<path>/index.md" over "<path>.md". Returns ("", false) when neither
// exists.
func (s *FileStorage) contentPath(urlPath string) (string, bool) {
	if urlPath == "" {
		indexPath := filepath.Join(s.root, "index.md")
		if fileExists(indexPath) {
			return indexPath, true
		}
		if s.readmeFallback != "" {
			p := filepath.Join(s.root, s.readmeFallback)
			if fileExists(p) {
				return p, true
			}
		}
		return "", false
	}

	dirIndex := filepath.Join(s.root, filepath.FromSlash(urlPath), "index.md")
	if fileExists(dirIndex) {
		return dirIndex, true
	}
	flat := filepath.Join(s.root, filepath.FromSlash(urlPath)+".md")
	if fileExists(flat) {
		return flat, true
	}
	return "", false
}

// metaPath returns the sidecar metadata file path for a URL path.
func (s *FileStorage) metaPath(urlPath string) string {
	return filepath.Join(s.root, filepath.FromSlash(urlPath), s.metaFilename)
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// Exists implements Storage.
func (s *FileStorage) Exists(urlPath string) bool {
	if err := checkSafe(urlPath); err != nil {
		return false
	}
	_, ok := s.contentPath(urlPath)
	return ok
}

// Read implements Storage.
func (s *FileStorage) Read(urlPath string) (string, error) {
	if err := checkSafe(urlPath); err != nil {
		return "", err
	}
	p, ok := s.contentPath(urlPath)
	if !ok {
		return "", newError(KindNotFound, s.backend, urlPath, nil)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return "", newError(KindIO, s.backend, urlPath, err)
	}
	return string(data), nil
}

// Mtime implements Storage.
func (s *FileStorage) Mtime(urlPath string) (float64, error) {
	if err := checkSafe(urlPath); err != nil {
		return 0, err
	}
	p, ok := s.contentPath(urlPath)
	if !ok {
		return 0, newError(KindNotFound, s.backend, urlPath, nil)
	}
	info, err := os.Stat(p)
	if err != nil {
		return 0, newError(KindIO, s.backend, urlPath, err)
	}
	return float64(info.ModTime().UnixNano()) / 1e9, nil
}

// Meta implements Storage.
func (s *FileStorage) Meta(urlPath string) (*metadata.Metadata, error) {
	if err := checkSafe(urlPath); err != nil {
		return nil, err
	}
	load := func(ancestor string) ([]byte, bool, error) {
		p := s.metaPath(ancestor)
		data, err := os.ReadFile(p)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, false, nil
			}
			return nil, false, err
		}
		return data, true, nil
	}
	return metadata.Lookup(urlPath, load), nil
}

// Scan implements Storage: it walks the content tree and produces one
// Document per content file plus one virtual Document per directory that
// carries a sidecar file but no index.md.
func (s *FileStorage) Scan() ([]Document, error) {
	var docs []Document

	var walk func(dir, urlPath string) error
	walk = func(dir, urlPath string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			log.Printf("warning: scanning %s: %v", dir, err)
			return nil
		}
		sortEntries(entries)

		hasIndex := false
		for _, e := range entries {
			if !e.IsDir() && e.Name() == "index.md" {
				hasIndex = true
			}
		}

		for _, e := range entries {
			name := e.Name()
			if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
				continue
			}
			if e.IsDir() {
				if skipDirNames[name] {
					continue
				}
				childURL := joinURL(urlPath, name)
				if err := walk(filepath.Join(dir, name), childURL); err != nil {
					return err
				}
				continue
			}
			if filepath.Ext(name) != ".md" {
				continue
			}
			var childURL string
			if name == "index.md" {
				childURL = urlPath
			} else {
				childURL = joinURL(urlPath, strings.TrimSuffix(name, ".md"))
			}
			doc, err := s.buildDocument(filepath.Join(dir, name), childURL)
			if err != nil {
				log.Printf("warning: reading %s: %v", filepath.Join(dir, name), err)
				continue
			}
			docs = append(docs, doc)
		}

		if !hasIndex {
			metaFile := filepath.Join(dir, s.metaFilename)
			if data, err := os.ReadFile(metaFile); err == nil {
				m, perr := metadata.Parse(data)
				if perr != nil || isEmptyMetadata(m) {
					if perr != nil {
						log.Printf("warning: parsing %s: %v", metaFile, perr)
					}
				} else {
					docs = append(docs, Document{
						URLPath:    urlPath,
						Title:      virtualTitle(m, urlPath),
						HasContent: false,
						PageType:   derefString(m.PageType),
					})
				}
			}
		}
		return nil
	}

	if err := walk(s.root, ""); err != nil {
		return nil, err
	}
	return docs, nil
}

func isEmptyMetadata(m *metadata.Metadata) bool {
	return m.Title == nil && m.Description == nil && m.PageType == nil && len(m.Vars) == 0
}

func virtualTitle(m *metadata.Metadata, urlPath string) string {
	if m.Title != nil {
		return *m.Title
	}
	return titleCase(path.Base(urlPath))
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func joinURL(base, name string) string {
	if base == "" {
		return name
	}
	return base + "/" + name
}

// sortEntries puts directories before files, case-insensitive name order
// within each group.
func sortEntries(entries []os.DirEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := entries[i].IsDir(), entries[j].IsDir()
		if di != dj {
			return di
		}
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})
}

// buildDocument reads a content file, resolves its title (first H1, cached
// by path+mtime), and resolves its page_type from metadata.
func (s *FileStorage) buildDocument(filePath, urlPath string) (Document, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return Document{}, err
	}
	mtime := float64(info.ModTime().UnixNano()) / 1e9

	title, err := s.resolveTitle(filePath, mtime, urlPath)
	if err != nil {
		return Document{}, err
	}

	pageType := ""
	if m, err := s.Meta(urlPath); err == nil && m != nil && m.PageType != nil {
		pageType = *m.PageType
	}

	return Document{
		URLPath:    urlPath,
		Title:      title,
		HasContent: true,
		PageType:   pageType,
	}, nil
}

// resolveTitle returns the file's first H1 text if present, else a
// titlecased form of the final URL path segment. Results are cached by
// (path, mtime); a changed mtime invalidates the cache entry.
func (s *FileStorage) resolveTitle(filePath string, mtime float64, urlPath string) (string, error) {
	s.titleMu.Lock()
	if entry, ok := s.titleCache[filePath]; ok && entry.mtime == mtime {
		s.titleMu.Unlock()
		return entry.title, nil
	}
	s.titleMu.Unlock()

	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	title := ""
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "# ") {
			title = strings.TrimSpace(strings.TrimPrefix(line, "#"))
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}

	if title == "" {
		base := path.Base(urlPath)
		if base == "." || base == "" {
			base = "Home"
		}
		title = titleCase(base)
	}

	s.titleMu.Lock()
	s.titleCache[filePath] = titleCacheEntry{mtime: mtime, title: title}
	s.titleMu.Unlock()

	return title, nil
}

// titleCase converts a dash/underscore-separated name into a titlecased
// string, e.g. "setup-guide" -> "Setup Guide".
// titleCaser does Unicode-aware word capitalization (handling multi-byte
// case expansions like German "ß"→"SS" correctly, unlike an ASCII
// first-rune upcase) for slugs that fall back to their URL segment name.
var titleCaser = cases.Title(language.Und)

func titleCase(name string) string {
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")
	return titleCaser.String(name)
}

// Watch implements Storage by wrapping the generic watch.Watcher and
// translating file paths into URL paths per the §4.A mapping.
func (s *FileStorage) Watch() (<-chan Event, WatchHandle, error) {
	var debounce *time.Duration
	if s.debounce > 0 {
		debounce = &s.debounce
	}
	fsEvents, w, err := watch.New(s.root, []string{"**/*.md", "**/" + s.metaFilename}, debounce)
	if err != nil {
		return nil, nil, newError(KindOther, s.backend, "", err)
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		for ev := range fsEvents {
			rel, err := filepath.Rel(s.root, ev.Path)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			urlPath := pathToURL(rel)
			out <- Event{Path: urlPath, Kind: EventKind(ev.Kind)}
		}
	}()

	return out, w, nil
}

// pathToURL converts a relative content file path ("a/b/index.md",
// "a/b.md", "meta.yaml") into the URL path it backs.
func pathToURL(rel string) string {
	base := path.Base(rel)
	dir := path.Dir(rel)
	if dir == "." {
		dir = ""
	}
	switch {
	case base == "index.md":
		return dir
	case strings.HasSuffix(base, ".md"):
		name := strings.TrimSuffix(base, ".md")
		return joinURL(dir, name)
	default:
		// Metadata file change invalidates the directory it lives in.
		return dir
	}
}
