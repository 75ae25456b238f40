package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackprince001/cracked-leetcode-junkie-bot/internal/usecase"
)

var (
	searchQuery string
	searchGuild string
	searchLimit int
	searchJSON  bool
	searchURLs  bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search indexed messages",
	Long: `Search stored messages by semantic similarity to a query.

Examples:
  junkie search -q "dynamic programming hints"
  junkie search -q "contest schedule" --guild 123456789 --limit 5
  junkie search -q "two pointers" --urls`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "search query (required)")
	searchCmd.Flags().StringVarP(&searchGuild, "guild", "g", "", "guild ID to search within (empty searches everything)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	searchCmd.Flags().BoolVar(&searchURLs, "urls", false, "print only message URLs")
	searchCmd.MarkFlagRequired("query")
}

func runSearch(cmd *cobra.Command, args []string) error {
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
	ctx := context.Background()

	if searchURLs {
		urls, err := engine.SearchURLs(ctx, searchQuery, searchGuild, searchLimit)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		for _, u := range urls {
			fmt.Println(u)
		}
		return nil
	}

	results, err := engine.Search(ctx, searchQuery, searchGuild, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results for: %s\n\n", len(results), searchQuery)
	for i, r := range results {
		fmt.Printf("--- [%d] %s (score: %.3f) ---\n", i+1, r.SourceURL, r.Score)
		content := r.Content
		if len(content) > 500 {
			content = content[:500] + "..."
		}
		fmt.Println(content)
		fmt.Println()
	}

	return nil
}
