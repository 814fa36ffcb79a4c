// Package watch wraps a filesystem notification source and delivers a
// debounced, pattern-filtered stream of change events, coalescing bursts of
// rapid edits into a single event per quiescent path.
package watch

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventKind classifies a single coalesced change. The numeric values match
// storage.EventKind so callers can convert directly.
type EventKind int

const (
	Created EventKind = iota
	Modified
	Removed
)

// Event is delivered on the channel returned by New. Path is the changed
// file's path under root as passed to New (absolute only if root is).
type Event struct {
	Path string
	Kind EventKind
}

// Handle lets a caller tear down a watch subscription.
type Handle struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
	once    sync.Once
}

// Close stops the underlying watcher and drain goroutine.
func (h *Handle) Close() error {
	h.once.Do(func() { close(h.done) })
	return nil
}

const defaultDebounce = 100 * time.Millisecond

// New watches root recursively and streams debounced events for paths that
// match at least one of patterns (glob syntax with "**" matching any number
// of path segments). debounce defaults to 100ms when nil.
func New(root string, patterns []string, debounce *time.Duration) (<-chan Event, *Handle, error) {
	window := defaultDebounce
	if debounce != nil {
		window = *debounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	if err := addRecursive(fsw, root); err != nil {
		fsw.Close()
		return nil, nil, err
	}

	h := &Handle{watcher: fsw, done: make(chan struct{})}
	out := make(chan Event)

	go runLoop(fsw, h.done, out, patterns, window)

	return out, h, nil
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
}

// pending tracks a path's debounce state between the first event in a
// window and its release.
type pending struct {
	kind    EventKind
	timer   *time.Timer
	dropped bool
}

// runLoop is the drain thread: it applies the coalescing rules, converts
// raw fsnotify events into the public Event stream, and tears everything
// down when done is closed.
func runLoop(fsw *fsnotify.Watcher, done chan struct{}, out chan<- Event, patterns []string, window time.Duration) {
	defer close(out)
	defer fsw.Close()

	mu := sync.Mutex{}
	states := make(map[string]*pending)

	release := func(path string) {
		mu.Lock()
		p, ok := states[path]
		if !ok {
			mu.Unlock()
			return
		}
		delete(states, path)
		mu.Unlock()
		if p.dropped {
			return
		}
		out <- Event{Path: path, Kind: p.kind}
	}

	for {
		select {
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addRecursive(fsw, ev.Name); err != nil {
						log.Printf("warning: failed to watch %s: %v", ev.Name, err)
					}
					continue
				}
			}
			if !matchAny(patterns, ev.Name) {
				continue
			}

			kind := Modified
			switch {
			case ev.Op&fsnotify.Create != 0:
				kind = Created
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				kind = Removed
			}

			path := ev.Name
			mu.Lock()
			prev, existed := states[path]
			switch {
			case !existed:
				states[path] = &pending{kind: kind}
			case prev.kind == Removed:
				if kind == Created {
					states[path] = &pending{kind: Created}
				}
				// else: removal is terminal until the next Created.
			case prev.kind == Created && kind == Removed:
				prev.dropped = true
				prev.timer.Stop()
				delete(states, path)
			case prev.kind == Created && kind == Modified:
				prev.kind = Created // stays Created, window resets below
			default:
				prev.kind = kind
			}
			p, stillPending := states[path]
			if stillPending {
				if p.timer != nil {
					p.timer.Stop()
				}
				p.timer = time.AfterFunc(window, func() { release(path) })
			}
			mu.Unlock()

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watch error: %v", err)

		case <-done:
			mu.Lock()
			for _, p := range states {
				if p.timer != nil {
					p.timer.Stop()
				}
			}
			mu.Unlock()
			return
		}
	}
}

// matchAny reports whether path matches at least one glob pattern. "**"
// matches any number of path segments; "*" matches within a segment.
func matchAny(patterns []string, path string) bool {
	if len(patterns) == 0 {
		return true
	}
	segments := strings.Split(filepath.ToSlash(path), "/")
	for _, pat := range patterns {
		if globMatch(strings.Split(pat, "/"), segments) {
			return true
		}
	}
	return false
}

func globMatch(pat, segs []string) bool {
	if len(pat) == 0 {
		return len(segs) == 0
	}
	if pat[0] == "**" {
		if globMatch(pat[1:], segs) {
			return true
		}
		for i := range segs {
			if globMatch(pat[1:], segs[i+1:]) {
				return true
			}
		}
		return false
	}
	if len(segs) == 0 {
		return false
	}
	ok, err := filepath.Match(pat[0], segs[0])
	if err != nil || !ok {
		return false
	}
	return globMatch(pat[1:], segs[1:])
}
