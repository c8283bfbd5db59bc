// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-search CLI: ingestion from
// arXiv or local files into Elasticsearch, and hybrid search over the index.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-search/internal/secrets"
	"github.com/pdiddy/paper-search/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the paper-search CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-search",
	Short: "Hybrid lexical and vector search over academic papers",
	Long: `paper-search ingests academic paper metadata from arXiv or a local file,
embeds each abstract, stores the papers in Elasticsearch, and serves a search
form that ranks papers by combined keyword and semantic relevance.

Ingest with fetch or load, then query with serve or search.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(secrets.DefaultDir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-search.yaml or ~/.config/paper-search/paper-search.yaml)")
	rootCmd.PersistentFlags().String("index", "", "index name (default academic_papers)")
	_ = viper.BindPFlag("elasticsearch.index", rootCmd.PersistentFlags().Lookup("index"))
}

// setDefaults registers every configuration key so that environment
// variables are picked up by Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("elasticsearch.addresses", []string{"http://localhost:9200"})
	v.SetDefault("elasticsearch.index", "academic_papers")
	v.SetDefault("elasticsearch.username", "")
	v.SetDefault("elasticsearch.password", "")
	v.SetDefault("elasticsearch.api_key", "")

	v.SetDefault("embedding.url", "http://localhost:11434")
	v.SetDefault("embedding.model", "all-minilm:l6-v2")
	v.SetDefault("embedding.dimensions", types.EmbeddingDims)
	v.SetDefault("embedding.timeout", 30*time.Second)
	v.SetDefault("embedding.cache_path", "")

	v.SetDefault("ingest.batch_size", 100)
	v.SetDefault("ingest.max_results", 1000)

	v.SetDefault("arxiv.query", "all")
	v.SetDefault("arxiv.page_size", 100)
	v.SetDefault("arxiv.delay", 3*time.Second)
	v.SetDefault("arxiv.timeout", 60*time.Second)
	v.SetDefault("arxiv.user_agent", "paper-search/"+version)

	v.SetDefault("server.addr", ":5000")
}

func initConfig() {
	// A missing .env is fine; values may come from the real environment.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-search")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-search"))
		}
	}

	setDefaults(viper.GetViper())
	viper.SetEnvPrefix("PAPER_SEARCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig decodes the merged configuration and fills credentials from
// .secrets/ where config and environment leave them empty.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	secrets.ApplyElasticsearch(loadedSecrets, &cfg.Elasticsearch)
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(exitCode(err))
	}
}
