package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/weavedocs/weave/internal/config"
	"github.com/weavedocs/weave/internal/liveserver"
	"github.com/weavedocs/weave/internal/markdown"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the development server",
	Long:  "Serve renders pages live from the content tree and reloads connected browsers when files change.",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Root().PersistentFlags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		port, _ := cmd.Flags().GetInt("port")
		if port == 0 {
			port = cfg.Server.Port
		}
		host, _ := cmd.Flags().GetString("host")
		if host == "" {
			host = cfg.Server.Host
		}
		noLiveReload, _ := cmd.Flags().GetBool("no-live-reload")

		c, err := newCore(cfg, markdown.HTMLBackend{}, true)
		if err != nil {
			return fmt.Errorf("wiring renderer: %w", err)
		}

		srv := liveserver.New(liveserver.Options{
			Host:         host,
			Port:         port,
			NoLiveReload: noLiveReload || !cfg.Server.LiveReload,
		}, c.site, c.renderer, c.store)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down...")
			cancel()
		}()

		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "server port (defaults to config)")
	serveCmd.Flags().String("host", "", "bind host (defaults to config)")
	serveCmd.Flags().Bool("no-live-reload", false, "disable live reload")

	rootCmd.AddCommand(serveCmd)
}
