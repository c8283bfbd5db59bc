// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-search/internal/arxiv"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch recent arXiv papers and index them",
	Long: `Fetch pages through the arXiv API, newest submissions first, normalizes
each entry into a paper record, embeds its abstract and writes it to the index.

By default the index is deleted and recreated first. Use --upsert-only to keep
existing documents; papers with the same id are overwritten.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Int("max-results", 0, "number of papers to request (default 1000)")
	fetchCmd.Flags().String("query", "", `arXiv search_query (default "all")`)
	fetchCmd.Flags().Bool("upsert-only", false, "keep the existing index and upsert into it")
	fetchCmd.Flags().Bool("strict", false, "abort on the first malformed entry instead of skipping it")
	_ = viper.BindPFlag("ingest.max_results", fetchCmd.Flags().Lookup("max-results"))
	_ = viper.BindPFlag("arxiv.query", fetchCmd.Flags().Lookup("query"))

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	upsertOnly, _ := cmd.Flags().GetBool("upsert-only")
	strict, _ := cmd.Flags().GetBool("strict")
	ctx := cmd.Context()

	client, err := connectForIngest(ctx, cfg)
	if err != nil {
		return err
	}

	f := arxiv.NewFetcher(cfg.Arxiv)
	f.Strict = strict
	res, err := f.Fetch(ctx, cfg.Ingest.MaxResults, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Fetched %d papers in %d pages (%d failed pages, %d skipped entries).\n",
		len(res.Papers), res.Pages, res.FailedPages, res.SkippedEntries)

	sum, err := ingestRecords(ctx, cfg, client, res.Papers, upsertOnly, os.Stdout)
	if err != nil {
		return err
	}
	if sum.Failed > 0 || res.FailedPages > 0 {
		return fmt.Errorf("%w: %d documents, %d pages", errPartial, sum.Failed, res.FailedPages)
	}
	return nil
}
