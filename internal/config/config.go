// Package config handles loading, validating, and managing site configuration
// for the Weave documentation engine.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level configuration for a Weave site.
type Config struct {
	Site      SiteConfig      `yaml:"site"      mapstructure:"site"`
	Content   ContentConfig   `yaml:"content"   mapstructure:"content"`
	Render    RenderConfig    `yaml:"render"    mapstructure:"render"`
	Diagram   DiagramConfig   `yaml:"diagram"   mapstructure:"diagram"`
	Cache     CacheConfig     `yaml:"cache"     mapstructure:"cache"`
	Server    ServerConfig    `yaml:"server"    mapstructure:"server"`
	Confluence ConfluenceConfig `yaml:"confluence" mapstructure:"confluence"`
}

// SiteConfig holds site-wide identity settings.
type SiteConfig struct {
	Title    string `yaml:"title"    mapstructure:"title"`
	BaseURL  string `yaml:"baseURL"  mapstructure:"baseURL"`
	Language string `yaml:"language" mapstructure:"language"`
}

// ContentConfig controls how markdown sources are discovered.
type ContentConfig struct {
	Dir             string `yaml:"dir"             mapstructure:"dir"`
	MetaFilename    string `yaml:"metaFilename"    mapstructure:"metaFilename"`
	READMEFallback  string `yaml:"readmeFallback"  mapstructure:"readmeFallback"`
}

// RenderConfig controls markdown rendering behaviour.
type RenderConfig struct {
	GFM             bool `yaml:"gfm"             mapstructure:"gfm"`
	RelativeLinks   bool `yaml:"relativeLinks"   mapstructure:"relativeLinks"`
	TrailingSlash   bool `yaml:"trailingSlash"   mapstructure:"trailingSlash"`
	MaxIncludeDepth int  `yaml:"maxIncludeDepth" mapstructure:"maxIncludeDepth"`
}

// DiagramConfig controls the Kroki diagram pipeline.
type DiagramConfig struct {
	KrokiURL       string            `yaml:"krokiURL"       mapstructure:"krokiURL"`
	EndpointOverrides map[string]string `yaml:"endpointOverrides" mapstructure:"endpointOverrides"`
	DefaultFormat  string        `yaml:"defaultFormat"  mapstructure:"defaultFormat"`
	DPI            int           `yaml:"dpi"            mapstructure:"dpi"`
	Timeout        time.Duration `yaml:"timeout"        mapstructure:"timeout"`
	Workers        int           `yaml:"workers"        mapstructure:"workers"`
	IncludeDirs    []string      `yaml:"includeDirs"    mapstructure:"includeDirs"`
	ConfigPreamble string        `yaml:"configPreamble" mapstructure:"configPreamble"`
}

// CacheConfig controls the on-disk cache directory.
type CacheConfig struct {
	Dir     string `yaml:"dir"     mapstructure:"dir"`
	Version string `yaml:"version" mapstructure:"version"`
}

// ServerConfig controls the local development server.
type ServerConfig struct {
	Port           int  `yaml:"port"           mapstructure:"port"`
	Host           string `yaml:"host"         mapstructure:"host"`
	LiveReload     bool `yaml:"livereload"     mapstructure:"livereload"`
	DebounceMillis int  `yaml:"debounceMillis" mapstructure:"debounceMillis"`
}

// ConfluenceConfig carries the settings needed by the (out-of-scope)
// Confluence publishing collaborator; Weave's core never dials out to
// Confluence itself, it only shapes XHTML for a caller to push.
type ConfluenceConfig struct {
	BaseURL      string `yaml:"baseURL"      mapstructure:"baseURL"`
	SpaceKey     string `yaml:"spaceKey"     mapstructure:"spaceKey"`
	ParentPageID string `yaml:"parentPageId" mapstructure:"parentPageId"`
}

// Default returns a Config populated with sensible default values.
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			Language: "en",
		},
		Content: ContentConfig{
			Dir:            "content",
			MetaFilename:   "meta.yaml",
			READMEFallback: "",
		},
		Render: RenderConfig{
			GFM:             true,
			RelativeLinks:   false,
			TrailingSlash:   false,
			MaxIncludeDepth: 10,
		},
		Diagram: DiagramConfig{
			KrokiURL:      "https://kroki.io",
			DefaultFormat: "svg",
			DPI:           96,
			Timeout:       30 * time.Second,
			Workers:       4,
		},
		Cache: CacheConfig{
			Dir:     ".weave/cache",
			Version: "1",
		},
		Server: ServerConfig{
			Port:           1331,
			Host:           "localhost",
			LiveReload:     true,
			DebounceMillis: 100,
		},
	}
}

// Load reads a configuration file from configPath (YAML or TOML) and returns
// a Config with defaults applied first and file values overlaid on top.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath == "" {
		return cfg, nil
	}

	v := viper.New()

	ext := strings.TrimPrefix(filepath.Ext(configPath), ".")
	switch ext {
	case "yaml", "yml":
		v.SetConfigType("yaml")
	case "toml":
		v.SetConfigType("toml")
	default:
		v.SetConfigType("yaml")
	}

	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks the Config for common errors.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Site.Title) == "" {
		return fmt.Errorf("config: site.title is required")
	}
	if c.Site.BaseURL != "" && strings.HasSuffix(c.Site.BaseURL, "/") {
		return fmt.Errorf("config: site.baseURL must not have a trailing slash (got %q)", c.Site.BaseURL)
	}
	if c.Render.MaxIncludeDepth <= 0 {
		return fmt.Errorf("config: render.maxIncludeDepth must be positive")
	}
	return nil
}

// WithOverrides applies CLI flag overrides to the config, returning it for
// convenient chaining.
func (c *Config) WithOverrides(overrides map[string]any) *Config {
	for key, val := range overrides {
		switch key {
		case "baseURL":
			if s, ok := val.(string); ok {
				c.Site.BaseURL = s
			}
		case "title":
			if s, ok := val.(string); ok {
				c.Site.Title = s
			}
		case "port":
			if n, ok := val.(int); ok {
				c.Server.Port = n
			}
		case "host":
			if s, ok := val.(string); ok {
				c.Server.Host = s
			}
		case "livereload":
			if b, ok := val.(bool); ok {
				c.Server.LiveReload = b
			}
		case "krokiURL":
			if s, ok := val.(string); ok {
				c.Diagram.KrokiURL = s
			}
		}
	}
	return c
}
