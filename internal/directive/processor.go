package directive

import (
	"fmt"
	"os"
	"strings"
)

// Config configures a Processor.
type Config struct {
	BaseDir         string
	SourcePath      string
	ReadFile        func(path string) (string, error)
	MaxIncludeDepth int // default 10
}

func (c Config) withDefaults() Config {
	if c.MaxIncludeDepth == 0 {
		c.MaxIncludeDepth = 10
	}
	if c.ReadFile == nil {
		c.ReadFile = defaultReadFile
	}
	if c.BaseDir == "" {
		c.BaseDir = "."
	}
	return c
}

func defaultReadFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	return string(b), err
}

// Processor runs the directive pre-pass and collects post-process
// replacements, implementing markdown.DirectivePreprocessor.
type Processor struct {
	cfg Config

	inline    map[string]InlineDirective
	leaf      map[string]LeafDirective
	container map[string]ContainerDirective

	// *List preserve registration order for PostProcess/Warnings, since
	// the handler maps above are keyed by name for dispatch only.
	inlineList    []InlineDirective
	leafList      []LeafDirective
	containerList []ContainerDirective

	fence            *FenceTracker
	activeContainers []string
	warnings         []string
}

// NewProcessor creates an empty Processor; use With* to register handlers.
func NewProcessor(cfg Config) *Processor {
	return &Processor{
		cfg:       cfg.withDefaults(),
		inline:    make(map[string]InlineDirective),
		leaf:      make(map[string]LeafDirective),
		container: make(map[string]ContainerDirective),
	}
}

func (p *Processor) WithInline(d InlineDirective) *Processor {
	p.inline[d.Name()] = d
	p.inlineList = append(p.inlineList, d)
	return p
}

func (p *Processor) WithLeaf(d LeafDirective) *Processor {
	p.leaf[d.Name()] = d
	p.leafList = append(p.leafList, d)
	return p
}

func (p *Processor) WithContainer(d ContainerDirective) *Processor {
	p.container[d.Name()] = d
	p.containerList = append(p.containerList, d)
	return p
}

// PrePass expands directives in text, recursively re-processing any
// Markdown output up to MaxIncludeDepth levels.
func (p *Processor) PrePass(text string) (string, []string, error) {
	p.warnings = nil
	p.fence = NewFenceTracker()
	p.activeContainers = nil

	out := p.processWithDepth(text, 0)
	p.finalize()

	return out, append([]string(nil), p.warnings...), nil
}

func (p *Processor) processWithDepth(input string, depth int) string {
	if depth > p.cfg.MaxIncludeDepth {
		p.warnings = append(p.warnings, fmt.Sprintf("Maximum include depth (%d) exceeded", p.cfg.MaxIncludeDepth))
		return input
	}

	lines := strings.Split(input, "\n")
	for i, line := range lines {
		lines[i] = p.processLine(line, i+1, depth)
	}
	return strings.Join(lines, "\n")
}

func (p *Processor) processLine(line string, lineNum, depth int) string {
	p.fence.Update(line)
	if p.fence.InFence() {
		return line
	}

	if pl, ok := parseContainerLine(line); ok {
		return p.dispatchContainer(pl, line, lineNum, depth)
	}
	if pl, ok := parseLeafLine(line); ok {
		return p.dispatchLeaf(pl, line, lineNum, depth)
	}
	return p.processInline(line, lineNum, depth)
}

func (p *Processor) dispatchContainer(pl parsedLine, rawLine string, lineNum, depth int) string {
	switch pl.kind {
	case kindContainerStart:
		handler, ok := p.container[pl.name]
		if !ok {
			return rawLine
		}
		out := handler.Start(pl.args, p.context(lineNum))
		switch out.Kind {
		case HTML:
			p.activeContainers = append(p.activeContainers, pl.name)
			return out.Value
		case Markdown:
			p.activeContainers = append(p.activeContainers, pl.name)
			return p.processWithDepth(out.Value, depth+1)
		default:
			return rawLine
		}

	case kindContainerEnd:
		if len(p.activeContainers) == 0 {
			p.warnings = append(p.warnings, fmt.Sprintf("line %d: stray ::: with no opening directive", lineNum))
			return rawLine
		}
		name := p.activeContainers[len(p.activeContainers)-1]
		p.activeContainers = p.activeContainers[:len(p.activeContainers)-1]
		handler, ok := p.container[name]
		if !ok {
			return ""
		}
		closing, has := handler.End(lineNum)
		if !has {
			return ""
		}
		return closing
	}
	return rawLine
}

func (p *Processor) dispatchLeaf(pl parsedLine, rawLine string, lineNum, depth int) string {
	handler, ok := p.leaf[pl.name]
	if !ok {
		return rawLine
	}
	out := handler.Process(pl.args, p.context(lineNum))
	switch out.Kind {
	case HTML:
		return out.Value
	case Markdown:
		return p.processWithDepth(out.Value, depth+1)
	default:
		return rawLine
	}
}

func (p *Processor) processInline(line string, lineNum, depth int) string {
	var b strings.Builder
	pos := 0
	for {
		m, ok := findInlineDirective(line, pos)
		if !ok {
			b.WriteString(line[pos:])
			break
		}
		b.WriteString(line[pos:m.start])

		handler, hok := p.inline[m.name]
		if !hok {
			b.WriteString(line[m.start:m.end])
			pos = m.end
			continue
		}

		out := handler.Process(m.args, p.context(lineNum))
		switch out.Kind {
		case HTML:
			b.WriteString(out.Value)
		case Markdown:
			b.WriteString(p.processWithDepth(out.Value, depth+1))
		default:
			b.WriteString(line[m.start:m.end])
		}
		pos = m.end
	}
	return b.String()
}

func (p *Processor) finalize() {
	for _, name := range p.activeContainers {
		p.warnings = append(p.warnings, fmt.Sprintf("unclosed container directive :::%s (missing closing :::)", name))
	}
	p.activeContainers = nil
}

func (p *Processor) context(line int) *Context {
	return &Context{
		SourcePath: p.cfg.SourcePath,
		BaseDir:    p.cfg.BaseDir,
		Line:       line,
		ReadFile:   p.cfg.ReadFile,
	}
}

// ApplyPostProcessReplacements collects every handler's post-process
// replacements into a single Replacements set and applies it in one pass.
func (p *Processor) ApplyPostProcessReplacements(html string) (string, error) {
	var repl Replacements
	for _, h := range p.leafList {
		if pp, ok := h.(PostProcessor); ok {
			pp.PostProcess(&repl)
		}
	}
	for _, h := range p.containerList {
		if pp, ok := h.(PostProcessor); ok {
			pp.PostProcess(&repl)
		}
	}
	for _, h := range p.inlineList {
		if pp, ok := h.(PostProcessor); ok {
			pp.PostProcess(&repl)
		}
	}
	return repl.Apply(html), nil
}

// Warnings returns every warning accumulated by the processor itself and
// by handlers implementing Warner, from the most recent PrePass.
func (p *Processor) Warnings() []string {
	all := append([]string(nil), p.warnings...)
	for _, h := range p.leafList {
		if w, ok := h.(Warner); ok {
			all = append(all, w.Warnings()...)
		}
	}
	for _, h := range p.containerList {
		if w, ok := h.(Warner); ok {
			all = append(all, w.Warnings()...)
		}
	}
	for _, h := range p.inlineList {
		if w, ok := h.(Warner); ok {
			all = append(all, w.Warnings()...)
		}
	}
	return all
}
