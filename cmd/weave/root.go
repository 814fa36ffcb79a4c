package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "weave",
	Short: "A documentation engine with pluggable Markdown backends",
	Long:  "Weave renders Markdown documentation to HTML or Confluence storage format, with a Kroki-backed diagram pipeline and a live-reloading dev server.",
}

func init() {
	rootCmd.PersistentFlags().String("config", "weave.yaml", "path to config file")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
