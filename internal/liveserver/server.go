// Package liveserver is the development HTTP server: it renders pages
// live from the current site.Site snapshot (there is no static-build step
// in dev mode) and pushes a browser reload over a websocket whenever the
// watched content tree changes.
package liveserver

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/weavedocs/weave/internal/render"
	"github.com/weavedocs/weave/internal/site"
	"github.com/weavedocs/weave/internal/storage"
)

// Options configures a Server.
type Options struct {
	Host         string
	Port         int
	NoLiveReload bool
}

// Server serves the active site over HTTP, rendering each request against
// the live site.Site snapshot, and runs a websocket hub that notifies
// connected browsers to reload when the underlying storage changes.
type Server struct {
	opts     Options
	site     *site.Site
	renderer *render.PageRenderer
	store    storage.Storage

	hub        *hub
	httpServer *http.Server
	watchDone  chan struct{}
}

// New wires a Server to the active site, its renderer, and the storage
// backend it watches for changes.
func New(opts Options, activeSite *site.Site, renderer *render.PageRenderer, store storage.Storage) *Server {
	return &Server{
		opts:     opts,
		site:     activeSite,
		renderer: renderer,
		store:    store,
		hub:      newHub(),
	}
}

// Start runs the HTTP server, the websocket hub, and the storage watcher.
// It blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go s.hub.run()

	if w, ok := tryWatch(s.store); ok {
		s.watchDone = make(chan struct{})
		go s.watchLoop(w)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/__weave/ws", s.hub.handleWS)
	mux.HandleFunc("/", s.handlePage)

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	s.httpServer = &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
	}()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("liveserver: listening on %s: %w", addr, err)
	}

	log.Printf("liveserver: serving at http://%s", addr)
	if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("liveserver: %w", err)
	}
	return nil
}

// Stop shuts down the watcher, hub, and HTTP server.
func (s *Server) Stop() error {
	if s.watchDone != nil {
		close(s.watchDone)
	}
	s.hub.stop()
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// watchable is satisfied by any storage.Storage that supports live
// change notifications; storages that don't simply skip the reload loop.
type watchable interface {
	Watch() (<-chan storage.Event, storage.WatchHandle, error)
}

func tryWatch(store storage.Storage) (watchable, bool) {
	w, ok := store.(watchable)
	return w, ok
}

// watchLoop invalidates the site snapshot and notifies browsers on every
// storage change, until the server is stopped.
func (s *Server) watchLoop(w watchable) {
	events, handle, err := w.Watch()
	if err != nil {
		log.Printf("liveserver: watch: %v", err)
		return
	}
	defer handle.Close()

	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
			s.site.Invalidate()
			s.hub.broadcastMsg([]byte("reload"))
		case <-s.watchDone:
			return
		}
	}
}

// handlePage renders the requested URL path live and injects the reload
// script into HTML responses.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	urlPath := strings.Trim(r.URL.Path, "/")

	state, err := s.site.Current()
	if err != nil {
		http.Error(w, fmt.Sprintf("building site: %v", err), http.StatusInternalServerError)
		return
	}

	if _, _, ok := state.GetPage(urlPath); !ok {
		http.NotFound(w, r)
		return
	}

	html, err := s.renderer.RenderPage(urlPath, state)
	if err != nil {
		http.Error(w, fmt.Sprintf("rendering %s: %v", urlPath, err), http.StatusInternalServerError)
		return
	}

	if !s.opts.NoLiveReload {
		html = injectLiveReload(html, s.opts.Port)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	_, _ = w.Write([]byte(html))
}
