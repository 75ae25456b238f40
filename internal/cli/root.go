package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackprince001/cracked-leetcode-junkie-bot/config"
	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/adapter/embedding"
	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/adapter/store"
	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/port"
)

var (
	cfgFile   string
	storePath string
	cfg       *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "junkie",
	Short: "Message index - semantic search over indexed chat messages",
	Long: `junkie indexes chat messages into vector embeddings and answers
semantic similarity queries over the stored corpus.

Example usage:
  junkie search -q "how do I invert a binary tree"
  junkie stats --guild 123456789
  junkie update-embeddings --limit 500`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			wd, werr := os.Getwd()
			if werr != nil {
				return fmt.Errorf("failed to get working directory: %w", werr)
			}
			cfg, err = config.LoadFromDir(wd)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if storePath != "" {
			cfg.Store.Path = storePath
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./junkie.yaml)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "message store path (default from config)")
}

func openStore() (*store.BoltStore, error) {
	if err := config.EnsureStoreDir(cfg.Store.Path); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	st, err := store.NewBoltStore(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open message store: %w", err)
	}
	return st, nil
}

func newEmbedder() (port.Embedder, error) {
	client, err := embedding.NewClient(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}
	return client, nil
}
