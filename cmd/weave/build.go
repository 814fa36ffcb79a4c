package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/weavedocs/weave/internal/config"
	"github.com/weavedocs/weave/internal/feed"
	"github.com/weavedocs/weave/internal/markdown"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render every page to static HTML",
	Long:  "Build walks the content tree and renders each page to a static HTML file under the destination directory.",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Root().PersistentFlags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if baseURL, _ := cmd.Flags().GetString("baseURL"); baseURL != "" {
			cfg.WithOverrides(map[string]any{"baseURL": baseURL})
		}

		destination, _ := cmd.Flags().GetString("destination")

		c, err := newCore(cfg, markdown.HTMLBackend{}, true)
		if err != nil {
			return fmt.Errorf("wiring renderer: %w", err)
		}

		start := time.Now()

		state, err := c.site.Current()
		if err != nil {
			return fmt.Errorf("building site: %w", err)
		}

		pages := state.AllURLPaths()
		written := 0
		for _, urlPath := range pages {
			html, err := c.renderer.RenderPage(urlPath, state)
			if err != nil {
				return fmt.Errorf("rendering %s: %w", urlPath, err)
			}
			outPath := outputPathFor(destination, urlPath)
			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				return fmt.Errorf("creating output dir: %w", err)
			}
			if err := os.WriteFile(outPath, []byte(html), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}
			written++
		}

		if cfg.Site.BaseURL != "" {
			rssData, atomData, err := feed.Generate(state, c.renderer, cfg)
			if err != nil {
				return fmt.Errorf("generating feeds: %w", err)
			}
			if err := os.WriteFile(filepath.Join(destination, "index.xml"), rssData, 0o644); err != nil {
				return fmt.Errorf("writing index.xml: %w", err)
			}
			if err := os.WriteFile(filepath.Join(destination, "atom.xml"), atomData, 0o644); err != nil {
				return fmt.Errorf("writing atom.xml: %w", err)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Build complete: %d pages rendered in %s\n", written, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

// outputPathFor maps a URL path to a destination file, "" -> index.html
// and "a/b" -> "a/b/index.html", matching clean-URL hosting conventions.
func outputPathFor(destination, urlPath string) string {
	if urlPath == "" {
		return filepath.Join(destination, "index.html")
	}
	return filepath.Join(destination, filepath.FromSlash(strings.Trim(urlPath, "/")), "index.html")
}

func init() {
	buildCmd.Flags().String("baseURL", "", "override base URL")
	buildCmd.Flags().StringP("destination", "d", "public", "output directory")

	rootCmd.AddCommand(buildCmd)
}
