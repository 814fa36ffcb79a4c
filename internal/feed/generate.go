package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/weavedocs/weave/internal/config"
	"github.com/weavedocs/weave/internal/render"
	"github.com/weavedocs/weave/internal/site"
)

// Generate builds RSS and Atom feeds over every page in state. Unlike the
// teacher's build step, which only feeds posts from configured blog
// sections into feed.FeedItem, Weave has no section/post distinction, so
// every page listed by AllURLPaths becomes a feed item. MaxItems is left
// at zero, so no item limit is applied.
func Generate(state *site.SiteState, renderer *render.PageRenderer, cfg *config.Config) (rssData, atomData []byte, err error) {
	baseURL := strings.TrimRight(cfg.Site.BaseURL, "/")

	items := make([]FeedItem, 0, len(state.AllURLPaths()))
	for _, urlPath := range state.AllURLPaths() {
		page, _, ok := state.GetPage(urlPath)
		if !ok {
			continue
		}
		body, err := renderer.RenderContent(urlPath, state)
		if err != nil {
			return nil, nil, fmt.Errorf("rendering %s for feed: %w", urlPath, err)
		}
		link := baseURL + "/" + urlPath
		items = append(items, FeedItem{
			Title:       page.Title,
			Link:        link,
			Description: summarize(body),
			Content:     body,
			PubDate:     pageDate(page),
			GUID:        link,
		})
	}

	opts := FeedOptions{
		Title:       cfg.Site.Title,
		Description: cfg.Site.Title,
		Link:        baseURL,
		Language:    cfg.Site.Language,
		FullContent: true,
	}

	opts.FeedLink = baseURL + "/index.xml"
	rssData, err = GenerateRSS(items, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("generating rss feed: %w", err)
	}

	opts.FeedLink = baseURL + "/atom.xml"
	atomData, err = GenerateAtom(items, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("generating atom feed: %w", err)
	}

	return rssData, atomData, nil
}

// pageDate reads a "date" var (RFC3339 or a bare YYYY-MM-DD) off a page's
// merged metadata. Pages without one get the zero time, which sorts last
// in both GenerateRSS and GenerateAtom's newest-first ordering.
func pageDate(page *site.Page) time.Time {
	if page.Metadata == nil {
		return time.Time{}
	}
	raw, ok := page.Metadata.Vars["date"]
	if !ok {
		return time.Time{}
	}
	s, ok := raw.(string)
	if !ok {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return time.Time{}
}

// summarize trims body down to a short plain-ish description for the feed
// entry's <summary>/<description> element. It does not strip HTML tags
// (the teacher's search index handles HTML stripping for a different
// purpose, grounded differently) — feed readers render the summary as
// HTML same as the content, so tags are left intact and just truncated.
func summarize(body string) string {
	const maxLen = 500
	if len(body) <= maxLen {
		return body
	}
	return body[:maxLen] + "..."
}
