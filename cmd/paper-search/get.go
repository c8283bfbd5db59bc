// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-search/internal/index"
	"github.com/pdiddy/paper-search/pkg/types"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print one stored paper by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		client, err := index.New(cfg.Elasticsearch, types.EmbeddingDims)
		if err != nil {
			return err
		}
		rec, err := client.Get(ctx, args[0])
		if err != nil {
			return err
		}

		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(rec)
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
