// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-search/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run one hybrid query against the index",
	Long: `Search embeds the query, runs the hybrid lexical and vector query and
prints the top hits in the backend's ranking order.`,
	Args: cobra.ArbitraryArgs,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("format", search.FormatTable, "output format: table, json or yaml")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
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

	s := &search.Searcher{Embedder: emb, Backend: client}
	resp, err := s.Search(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	return search.Format(resp, format, os.Stdout)
}
