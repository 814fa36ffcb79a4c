package diagram

import (
	"context"
	"encoding/base64"
	htmlpkg "html"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/weavedocs/weave/internal/cache"
	"github.com/weavedocs/weave/internal/markdown/codeblock"
)

// Config controls how the diagram pipeline prepares and renders sources.
type Config struct {
	KrokiURL          string
	EndpointOverrides map[string]string // endpoint -> base URL, overrides KrokiURL
	DefaultFormat     string
	DPI               int
	Timeout           time.Duration
	Workers           int
	IncludeDirs       []string
	ConfigPreamble    string
}

func (c Config) workers() int {
	if c.Workers <= 0 {
		return 4
	}
	return c.Workers
}

// Factory builds a fresh Processor per document. A Processor accumulates
// per-document state (the pending diagram list, its own index counter via
// the renderer) and is not meant to be reused across documents, but the
// cache and the per-endpoint Kroki clients it shares are safe for
// concurrent use across Processors the Factory hands out.
type Factory struct {
	cfg         Config
	cache       cache.Cache
	metaInclude *MetaIncludeSource
	tagGen      TagGenerator

	mu      sync.Mutex
	clients map[string]*KrokiClient
}

func NewFactory(cfg Config, c cache.Cache, metaInclude *MetaIncludeSource) *Factory {
	if c == nil {
		c = cache.NullCache{}
	}
	return &Factory{cfg: cfg, cache: c, metaInclude: metaInclude, clients: map[string]*KrokiClient{}}
}

// WithTagGenerator switches f's Processors to file-output mode: rendered
// diagram bytes are handed to gen instead of being inlined, for builds
// that want diagrams as on-disk assets.
func (f *Factory) WithTagGenerator(gen TagGenerator) *Factory {
	f.tagGen = gen
	return f
}

func (f *Factory) clientFor(endpoint string) *KrokiClient {
	base := f.cfg.KrokiURL
	if override, ok := f.cfg.EndpointOverrides[endpoint]; ok {
		base = override
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if client, ok := f.clients[base]; ok {
		return client
	}
	client := NewKrokiClient(base, f.cfg.Timeout)
	f.clients[base] = client
	return client
}

// NewProcessor returns a fresh Processor sharing this Factory's cache,
// client pool, and include/meta-include configuration. urlPath is the
// page the Processor will extract diagrams from, used as the base path
// for any meta-include $link that needs to be resolved relative to it.
func (f *Factory) NewProcessor(urlPath string) *Processor {
	return &Processor{
		factory:  f,
		includes: NewIncludeResolver(f.cfg.IncludeDirs),
		urlPath:  urlPath,
	}
}

// Processor is a codeblock.Processor that extracts diagram sources during
// the render's event-stream walk and renders them in a batched pass at
// PostProcess time, per §4.G.
type Processor struct {
	factory  *Factory
	includes *IncludeResolver
	urlPath  string

	mu       sync.Mutex
	diagrams []*ExtractedDiagram
	warnings []string
}

// Process recognizes diagram fence languages, prepares PlantUML/C4
// sources (include resolution, preamble merge, dpi injection), and emits
// a "{{DIAGRAM_n}}" placeholder to be substituted once rendering
// completes. No network activity happens here.
func (p *Processor) Process(block codeblock.ExtractedBlock) codeblock.Result {
	endpoint, ok := ResolveEndpoint(block.Language)
	if !ok {
		return codeblock.PassThroughResult()
	}

	rawFormat := block.Attrs["format"]
	format, warn := NormalizeFormat(rawFormat, p.factory.cfg.DefaultFormat)
	if warn != "" {
		p.warn(block.Index, warn)
	}
	for k := range block.Attrs {
		if k != "format" {
			p.warn(block.Index, "unknown diagram attribute: "+k)
		}
	}

	source := block.Source
	if IsPlantUML(endpoint) {
		resolved, includeWarnings := p.includes.Resolve(source)
		source = resolved
		for _, w := range includeWarnings {
			p.warn(block.Index, w)
		}
		if p.factory.metaInclude != nil {
			source = p.factory.metaInclude.Rewrite(source, p.urlPath)
		}
		source = MergePreamble(source, p.factory.cfg.ConfigPreamble)
		source = InjectDPI(source, p.factory.cfg.DPI)
	}

	d := &ExtractedDiagram{
		Index:          block.Index,
		Language:       block.Language,
		Endpoint:       endpoint,
		Format:         format,
		DPI:            p.factory.cfg.DPI,
		PreparedSource: source,
		Key:            DiagramKey{Endpoint: endpoint, Format: format, DPI: p.factory.cfg.DPI, Source: source},
	}

	p.mu.Lock()
	p.diagrams = append(p.diagrams, d)
	p.mu.Unlock()

	return codeblock.Result{Kind: codeblock.Placeholder, Value: placeholderFor(block.Index)}
}

func (p *Processor) warn(index int, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.warnings = append(p.warnings, "diagram "+strconv.Itoa(index)+": "+msg)
}

// PostProcess resolves cache hits immediately, queues misses partitioned
// by format, renders the two queues concurrently through a bounded
// worker pool per queue, and substitutes every placeholder in a single
// forward scan of html.
func (p *Processor) PostProcess(html string) (string, error) {
	if len(p.diagrams) == 0 {
		return html, nil
	}

	outcomes := make(map[int]string, len(p.diagrams))
	var outcomesMu sync.Mutex

	var svgQueue, pngQueue []*ExtractedDiagram
	for _, d := range p.diagrams {
		if value, ok := p.factory.cache.GetString(d.Key.Hash(), ""); ok {
			outcomes[d.Index] = value
			continue
		}
		if d.Format == "png" {
			pngQueue = append(pngQueue, d)
		} else {
			svgQueue = append(svgQueue, d)
		}
	}

	var wg sync.WaitGroup
	renderQueue := func(queue []*ExtractedDiagram) {
		defer wg.Done()
		sem := make(chan struct{}, p.factory.cfg.workers())
		var qwg sync.WaitGroup
		for _, d := range queue {
			d := d
			qwg.Add(1)
			sem <- struct{}{}
			go func() {
				defer qwg.Done()
				defer func() { <-sem }()
				out := p.renderOne(d)
				outcomesMu.Lock()
				outcomes[d.Index] = out
				outcomesMu.Unlock()
			}()
		}
		qwg.Wait()
	}
	if len(svgQueue) > 0 {
		wg.Add(1)
		go renderQueue(svgQueue)
	}
	if len(pngQueue) > 0 {
		wg.Add(1)
		go renderQueue(pngQueue)
	}
	wg.Wait()

	return substitutePlaceholders(html, outcomes), nil
}

func (p *Processor) renderOne(d *ExtractedDiagram) string {
	client := p.factory.clientFor(d.Endpoint)
	ctx, cancel := context.WithTimeout(context.Background(), p.factory.cfg.Timeout)
	defer cancel()

	data, err := client.Render(ctx, d.Endpoint, d.Format, d.PreparedSource)
	if err != nil {
		p.warn(d.Index, "render failed: "+err.Error())
		return errorFigure(err)
	}

	var out string
	switch {
	case p.factory.tagGen != nil:
		tag, err := p.factory.tagGen.Tag(d, data)
		if err != nil {
			p.warn(d.Index, "tag generation failed: "+err.Error())
			return errorFigure(err)
		}
		out = tag
	case d.Format == "png":
		out = `<figure class="diagram"><img src="data:image/png;base64,` + base64.StdEncoding.EncodeToString(data) + `"></figure>`
	default:
		out = `<figure class="diagram">` + PostProcessSVG(string(data), d.DPI) + `</figure>`
	}

	if err := p.factory.cache.SetString(d.Key.Hash(), "", out); err != nil {
		p.warn(d.Index, "cache write failed: "+err.Error())
	}
	return out
}

func errorFigure(err error) string {
	return `<figure class="diagram diagram-error"><pre>Diagram rendering failed: ` + htmlpkg.EscapeString(err.Error()) + `</pre></figure>`
}

// Warnings returns everything accumulated by Process and PostProcess
// since this Processor was created.
func (p *Processor) Warnings() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.warnings...)
}

func placeholderFor(index int) string {
	return "{{DIAGRAM_" + strconv.Itoa(index) + "}}"
}

var placeholderRe = regexp.MustCompile(`\{\{DIAGRAM_(\d+)\}\}`)

// substitutePlaceholders performs the single forward scan described in
// §4.G: every "{{DIAGRAM_n}}" token is replaced from outcomes, or left
// intact if n has no entry (a diagram that, for whatever reason, never
// made it into the outcomes map).
func substitutePlaceholders(html string, outcomes map[int]string) string {
	return placeholderRe.ReplaceAllStringFunc(html, func(match string) string {
		sub := placeholderRe.FindStringSubmatch(match)
		n, err := strconv.Atoi(sub[1])
		if err != nil {
			return match
		}
		if value, ok := outcomes[n]; ok {
			return value
		}
		return match
	})
}
