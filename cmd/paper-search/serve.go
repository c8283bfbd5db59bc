// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-search/internal/search"
	"github.com/pdiddy/paper-search/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search form over HTTP",
	Long: `Serve starts the web query service. GET / shows the search form, POST /
runs the query from the "query" field and lists up to 10 hits. A JSON API is
available at /api/search?q= and a backend health check at /healthz.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :5000)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	client, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	emb, closeEmb, err := newEmbedder(cfg.Embedding)
	if err != nil {
		return err
	}
	defer closeEmb()

	logger := log.New(os.Stderr, "", log.LstdFlags)
	srv, err := server.New(&search.Searcher{Embedder: emb, Backend: client}, client, logger)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
