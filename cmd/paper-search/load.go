// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-search/internal/ingest"
)

var loadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Index paper records from a local JSON or YAML file",
	Long: `Load reads an array of paper records (id, title, authors, abstract, year,
keywords) from a .json file, or a .yaml/.yml file, embeds each abstract and
writes the records to the index. Embeddings present in the file are ignored.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().Bool("upsert-only", false, "keep the existing index and upsert into it")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	upsertOnly, _ := cmd.Flags().GetBool("upsert-only")
	ctx := cmd.Context()

	client, err := connectForIngest(ctx, cfg)
	if err != nil {
		return err
	}

	records, err := ingest.LoadFile(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Loaded %d records from %s.\n", len(records), args[0])

	sum, err := ingestRecords(ctx, cfg, client, records, upsertOnly, os.Stdout)
	if err != nil {
		return err
	}
	if sum.Failed > 0 {
		return fmt.Errorf("%w: %d documents", errPartial, sum.Failed)
	}
	return nil
}
