package diagram

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/weavedocs/weave/internal/cache"
	"github.com/weavedocs/weave/internal/markdown/codeblock"
)

func TestProcessorPassesThroughUnrecognizedLanguage(t *testing.T) {
	factory := NewFactory(Config{}, cache.NullCache{}, nil)
	p := factory.NewProcessor("docs/page")

	res := p.Process(codeblock.ExtractedBlock{Index: 0, Language: "go", Source: "package main"})
	require.Equal(t, codeblock.PassThrough, res.Kind)
}

func TestProcessorExtractsPlaceholderAndRendersViaKroki(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/mermaid/svg", r.URL.Path)
		w.Write([]byte(`<svg width="100px" height="100px"></svg>`))
	}))
	defer srv.Close()

	factory := NewFactory(Config{KrokiURL: srv.URL, Timeout: 5 * time.Second, Workers: 2}, cache.NullCache{}, nil)
	p := factory.NewProcessor("docs/page")

	res := p.Process(codeblock.ExtractedBlock{Index: 0, Language: "mermaid", Source: "graph TD; A-->B;"})
	require.Equal(t, codeblock.Placeholder, res.Kind)
	require.Equal(t, "{{DIAGRAM_0}}", res.Value)

	html, err := p.PostProcess("before " + res.Value + " after")
	require.NoError(t, err)
	require.Contains(t, html, `<figure class="diagram">`)
	require.Contains(t, html, "<svg")
	require.NotContains(t, html, "{{DIAGRAM_0}}")
}

func TestProcessorCacheHitSkipsNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.Write([]byte(`<svg></svg>`))
	}))
	defer srv.Close()

	mem := newMemCache()
	factory := NewFactory(Config{KrokiURL: srv.URL, Timeout: 5 * time.Second}, mem, nil)

	p1 := factory.NewProcessor("docs/page")
	res := p1.Process(codeblock.ExtractedBlock{Index: 0, Language: "mermaid", Source: "graph TD; A-->B;"})
	_, err := p1.PostProcess(res.Value)
	require.NoError(t, err)
	require.True(t, called)

	called = false
	p2 := factory.NewProcessor("docs/page")
	res2 := p2.Process(codeblock.ExtractedBlock{Index: 0, Language: "mermaid", Source: "graph TD; A-->B;"})
	out, err := p2.PostProcess(res2.Value)
	require.NoError(t, err)
	require.False(t, called, "second render of identical source should be served from cache")
	require.Contains(t, out, "<svg")
}

func TestProcessorRenderFailureIsolatesErrorFigure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad diagram syntax", http.StatusBadRequest)
	}))
	defer srv.Close()

	factory := NewFactory(Config{KrokiURL: srv.URL, Timeout: 5 * time.Second}, cache.NullCache{}, nil)
	p := factory.NewProcessor("docs/page")

	res := p.Process(codeblock.ExtractedBlock{Index: 0, Language: "mermaid", Source: "garbage"})
	out, err := p.PostProcess(res.Value)
	require.NoError(t, err)
	require.Contains(t, out, "diagram-error")
	require.Contains(t, out, "Diagram rendering failed")
}

func TestProcessorUnknownAttrAndFormatWarn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<svg></svg>`))
	}))
	defer srv.Close()

	factory := NewFactory(Config{KrokiURL: srv.URL, Timeout: 5 * time.Second}, cache.NullCache{}, nil)
	p := factory.NewProcessor("docs/page")

	p.Process(codeblock.ExtractedBlock{
		Index:    0,
		Language: "mermaid",
		Source:   "graph TD",
		Attrs:    map[string]string{"format": "jpeg", "theme": "dark"},
	})

	warnings := p.Warnings()
	require.True(t, anyContains(warnings, "unknown diagram format"))
	require.True(t, anyContains(warnings, "unknown diagram attribute"))
}

func TestProcessorMissingPlaceholderLeftIntact(t *testing.T) {
	factory := NewFactory(Config{}, cache.NullCache{}, nil)
	p := factory.NewProcessor("docs/page")
	out, err := p.PostProcess("before {{DIAGRAM_3}} after")
	require.NoError(t, err)
	require.Equal(t, "before {{DIAGRAM_3}} after", out)
}

func anyContains(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.Contains(h, needle) {
			return true
		}
	}
	return false
}

// memCache is a trivial in-memory cache.Cache for tests that need to
// observe whether a second render actually hits the network.
type memCache struct {
	data map[string]string
}

func newMemCache() *memCache { return &memCache{data: map[string]string{}} }

func (c *memCache) GetString(key, etag string) (string, bool) {
	v, ok := c.data[key]
	return v, ok
}

func (c *memCache) SetString(key, etag, value string) error {
	c.data[key] = value
	return nil
}
