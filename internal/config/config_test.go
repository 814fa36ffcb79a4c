package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.Equal(t, "en", cfg.Site.Language)
	require.Equal(t, "content", cfg.Content.Dir)
	require.Equal(t, "meta.yaml", cfg.Content.MetaFilename)
	require.True(t, cfg.Render.GFM)
	require.Equal(t, 10, cfg.Render.MaxIncludeDepth)
	require.Equal(t, "https://kroki.io", cfg.Diagram.KrokiURL)
	require.Equal(t, "svg", cfg.Diagram.DefaultFormat)
	require.Equal(t, 96, cfg.Diagram.DPI)
	require.Equal(t, 4, cfg.Diagram.Workers)
	require.Equal(t, 1331, cfg.Server.Port)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weave.yaml")
	contents := []byte(`
site:
  title: "My Docs"
  baseURL: "https://docs.example.com"
diagram:
  krokiURL: "http://kroki.internal:8000"
  dpi: 192
`)
	require.NoError(t, os.WriteFile(path, contents, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "My Docs", cfg.Site.Title)
	require.Equal(t, "https://docs.example.com", cfg.Site.BaseURL)
	require.Equal(t, "http://kroki.internal:8000", cfg.Diagram.KrokiURL)
	require.Equal(t, 192, cfg.Diagram.DPI)
	// Untouched defaults survive the overlay.
	require.Equal(t, "svg", cfg.Diagram.DefaultFormat)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestValidateRejectsMissingTitle(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
}

func TestValidateRejectsTrailingSlashBaseURL(t *testing.T) {
	cfg := Default()
	cfg.Site.Title = "Docs"
	cfg.Site.BaseURL = "https://example.com/"
	err := cfg.Validate()
	require.Error(t, err)
}

func TestWithOverrides(t *testing.T) {
	cfg := Default()
	cfg.Site.Title = "Docs"
	cfg.WithOverrides(map[string]any{
		"title":   "Overridden",
		"port":    9999,
		"unknown": "ignored",
	})
	require.Equal(t, "Overridden", cfg.Site.Title)
	require.Equal(t, 9999, cfg.Server.Port)
}
