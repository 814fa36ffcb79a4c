// Package metadata parses per-directory YAML sidecar files and implements
// the inheritance-aware merge described by the site model: title,
// description, and page type are inherited only when the requested page
// owns a sidecar file, while vars are always deep-merged from the root
// down to the requested page.
package metadata

import (
	"log"

	"gopkg.in/yaml.v3"
)

// Metadata is the structured content of one sidecar file, or the result of
// merging a chain of them.
type Metadata struct {
	Title       *string
	Description *string
	PageType    *string
	Vars        map[string]any
}

// rawMetadata mirrors the on-disk YAML shape.
type rawMetadata struct {
	Title       *string        `yaml:"title"`
	Description *string        `yaml:"description"`
	PageType    *string        `yaml:"type"`
	Vars        map[string]any `yaml:"vars"`
}

// Parse decodes a single sidecar file's bytes into a Metadata value.
//
// An empty document yields a non-nil Metadata with all fields unset — the
// caller still counts this as "a metadata file exists" for inheritance
// purposes (spec invariant (i)). Malformed YAML returns an error; callers
// should log it and treat the ancestor as absent, never fail the render.
func Parse(raw []byte) (*Metadata, error) {
	var rm rawMetadata
	if err := yaml.Unmarshal(raw, &rm); err != nil {
		return nil, err
	}
	return &Metadata{
		Title:       rm.Title,
		Description: rm.Description,
		PageType:    rm.PageType,
		Vars:        rm.Vars,
	}, nil
}

// Loader reads the sidecar file bytes for a single ancestor path. It
// returns (nil, false, nil) when the ancestor has no sidecar file at all.
type Loader func(ancestorURLPath string) (raw []byte, ok bool, err error)

// Ancestors returns the root-to-leaf ancestor chain for a slash-separated
// URL path, e.g. "a/b/c" -> ["", "a", "a/b", "a/b/c"].
func Ancestors(urlPath string) []string {
	if urlPath == "" {
		return []string{""}
	}
	parts := splitPath(urlPath)
	chain := make([]string, 0, len(parts)+1)
	chain = append(chain, "")
	acc := ""
	for _, p := range parts {
		if acc == "" {
			acc = p
		} else {
			acc = acc + "/" + p
		}
		chain = append(chain, acc)
	}
	return chain
}

func splitPath(p string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(p); i++ {
		if p[i] == '/' {
			if i > start {
				parts = append(parts, p[start:i])
			}
			start = i + 1
		}
	}
	if start < len(p) {
		parts = append(parts, p[start:])
	}
	return parts
}

// Lookup builds the ancestor chain for urlPath, loads and merges each
// ancestor's sidecar metadata (root to leaf, vars deep-merged, scalars
// overridden), and clears title/description/pageType on the result unless
// the requested path itself owns a sidecar file.
//
// Per-ancestor load errors and malformed YAML are logged and treated as
// "no metadata for that ancestor" — never fatal. An empty sidecar is not an
// error: it parses to an empty Metadata and counts as present.
func Lookup(urlPath string, load Loader) *Metadata {
	chain := Ancestors(urlPath)
	var acc *Metadata
	ownMeta := false

	for i, ancestor := range chain {
		raw, ok, err := load(ancestor)
		if err != nil {
			log.Printf("warning: reading metadata for %q: %v", ancestor, err)
			continue
		}
		if !ok {
			continue
		}
		m, err := Parse(raw)
		if err != nil {
			log.Printf("warning: parsing metadata for %q: %v", ancestor, err)
			continue
		}
		if acc == nil {
			acc = &Metadata{Vars: map[string]any{}}
		}
		acc = merge(acc, m)
		if i == len(chain)-1 {
			ownMeta = true
		}
	}

	if acc == nil {
		return nil
	}
	if !ownMeta {
		acc.Title = nil
		acc.Description = nil
		acc.PageType = nil
	}
	return acc
}

// merge left-folds child metadata onto the accumulator: scalars are
// overridden wholesale, vars are deep-merged key by key.
func merge(acc, child *Metadata) *Metadata {
	out := &Metadata{
		Title:       acc.Title,
		Description: acc.Description,
		PageType:    acc.PageType,
		Vars:        acc.Vars,
	}
	if child.Title != nil {
		out.Title = child.Title
	}
	if child.Description != nil {
		out.Description = child.Description
	}
	if child.PageType != nil {
		out.PageType = child.PageType
	}
	out.Vars = mergeVars(out.Vars, child.Vars)
	return out
}

// mergeVars recursively merges child into parent. Object keys are merged
// key-by-key; scalar keys in child replace parent; arrays are replaced
// wholesale, never concatenated.
func mergeVars(parent, child map[string]any) map[string]any {
	if parent == nil && child == nil {
		return nil
	}
	out := make(map[string]any, len(parent)+len(child))
	for k, v := range parent {
		out[k] = v
	}
	for k, cv := range child {
		pv, exists := out[k]
		if !exists {
			out[k] = cv
			continue
		}
		pMap, pIsMap := asMap(pv)
		cMap, cIsMap := asMap(cv)
		if pIsMap && cIsMap {
			out[k] = mergeVars(pMap, cMap)
		} else {
			out[k] = cv
		}
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out, true
	default:
		return nil, false
	}
}
