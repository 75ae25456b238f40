package cli

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/usecase"
)

var (
	updateGuild string
	updateLimit int
)

var updateEmbeddingsCmd = &cobra.Command{
	Use:   "update-embeddings",
	Short: "Compute embeddings for messages stored without one",
	Long: `Find stored messages that were indexed without an embedding
(for example while the embedding provider was unavailable) and
compute embeddings for them.

Examples:
  junkie update-embeddings
  junkie update-embeddings --guild 123456789 --limit 500`,
	RunE: runUpdateEmbeddings,
}

func init() {
	rootCmd.AddCommand(updateEmbeddingsCmd)
	updateEmbeddingsCmd.Flags().StringVarP(&updateGuild, "guild", "g", "", "guild ID to update (empty updates everything)")
	updateEmbeddingsCmd.Flags().IntVarP(&updateLimit, "limit", "n", 0, "maximum messages to update (0 means no limit)")
}

func runUpdateEmbeddings(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	embedder, err := newEmbedder()
	if err != nil {
		return err
	}

	engine := usecase.NewEngine(cfg, st, embedder)

	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if bar == nil {
			bar = progressbar.Default(int64(total), "embedding")
		}
		bar.Set(done)
	}

	report, err := engine.UpdateMissingEmbeddings(context.Background(), updateGuild, updateLimit, progress)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	if report.Total == 0 {
		fmt.Println("No messages are missing embeddings.")
		return nil
	}

	fmt.Printf("Updated %d of %d messages (%d failed).\n", report.Updated, report.Total, report.Failed)
	return nil
}
