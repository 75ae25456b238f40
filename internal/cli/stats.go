package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsGuild string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show message index statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVarP(&statsGuild, "guild", "g", "", "guild ID to count (empty shows only the global count)")
}

func runStats(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	global, err := st.Count("")
	if err != nil {
		return fmt.Errorf("failed to count messages: %w", err)
	}

	fmt.Printf("Store:            %s\n", cfg.Store.Path)
	fmt.Printf("Indexed messages: %d\n", global)

	if statsGuild != "" {
		guildCount, err := st.Count(statsGuild)
		if err != nil {
			return fmt.Errorf("failed to count guild messages: %w", err)
		}
		fmt.Printf("Guild %s: %d\n", statsGuild, guildCount)
	}

	return nil
}
