package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weavedocs/weave/internal/config"
	"github.com/weavedocs/weave/internal/markdown"
)

// confluenceManifest is written alongside the rendered .xhtml files so
// whatever pushes them to the Confluence REST API doesn't need its own
// copy of the site's publishing target coordinates.
type confluenceManifest struct {
	BaseURL      string                  `json:"baseURL,omitempty"`
	SpaceKey     string                  `json:"spaceKey"`
	ParentPageID string                  `json:"parentPageId,omitempty"`
	Pages        []confluenceManifestPage `json:"pages"`
}

type confluenceManifestPage struct {
	URLPath string `json:"urlPath"`
	Title   string `json:"title"`
	File    string `json:"file"`
}

var confluenceCmd = &cobra.Command{
	Use:   "confluence",
	Short: "Confluence publishing helpers",
}

// confluencePushCmd renders every page to Confluence storage-format XHTML
// and writes one file per page under the destination directory. Actually
// pushing those files to a Confluence space over its REST API is a
// collaborator's job (cfg.Confluence only carries the target coordinates
// for that collaborator); Weave's own responsibility ends at producing
// the storage-format body.
var confluencePushCmd = &cobra.Command{
	Use:   "push",
	Short: "Render pages to Confluence storage format",
	Long:  "Push renders every page as Confluence storage-format XHTML and writes it to the destination directory for an external publisher to upload.",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Root().PersistentFlags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if cfg.Confluence.SpaceKey == "" {
			return fmt.Errorf("confluence.spaceKey is not configured")
		}

		destination, _ := cmd.Flags().GetString("destination")

		// The diagram pipeline renders inline <img>/<svg>; Confluence
		// expects diagrams as uploaded attachments instead, so it's left
		// disabled here rather than producing markup Confluence can't
		// display.
		c, err := newCore(cfg, markdown.ConfluenceBackend{}, false)
		if err != nil {
			return fmt.Errorf("wiring renderer: %w", err)
		}

		state, err := c.site.Current()
		if err != nil {
			return fmt.Errorf("building site: %w", err)
		}

		if err := os.MkdirAll(destination, 0o755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}

		manifest := confluenceManifest{
			BaseURL:      cfg.Confluence.BaseURL,
			SpaceKey:     cfg.Confluence.SpaceKey,
			ParentPageID: cfg.Confluence.ParentPageID,
		}

		pages := state.AllURLPaths()
		for _, urlPath := range pages {
			body, err := c.renderer.RenderContent(urlPath, state)
			if err != nil {
				return fmt.Errorf("rendering %s: %w", urlPath, err)
			}
			name := urlPath
			if name == "" {
				name = "index"
			}
			fileName := strings.ReplaceAll(name, "/", "__") + ".xhtml"
			outPath := filepath.Join(destination, fileName)
			if err := os.WriteFile(outPath, []byte(body), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}

			title := urlPath
			if page, _, ok := state.GetPage(urlPath); ok && page.Title != "" {
				title = page.Title
			}
			manifest.Pages = append(manifest.Pages, confluenceManifestPage{URLPath: urlPath, Title: title, File: fileName})
		}

		manifestBytes, err := json.MarshalIndent(manifest, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding manifest: %w", err)
		}
		if err := os.WriteFile(filepath.Join(destination, "manifest.json"), manifestBytes, 0o644); err != nil {
			return fmt.Errorf("writing manifest: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Rendered %d pages to %s for space %s\n", len(pages), destination, cfg.Confluence.SpaceKey)
		return nil
	},
}

func init() {
	confluencePushCmd.Flags().StringP("destination", "d", "confluence-export", "output directory for rendered storage-format bodies")
	confluenceCmd.AddCommand(confluencePushCmd)
	rootCmd.AddCommand(confluenceCmd)
}
