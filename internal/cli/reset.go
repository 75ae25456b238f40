package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	resetGuild string
	resetAll   bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete indexed messages",
	Long: `Delete indexed messages for a guild, or the entire index.

Examples:
  junkie reset --guild 123456789
  junkie reset --all`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().StringVarP(&resetGuild, "guild", "g", "", "guild ID to reset")
	resetCmd.Flags().BoolVar(&resetAll, "all", false, "reset the entire index")
}

func runReset(cmd *cobra.Command, args []string) error {
	if resetGuild == "" && !resetAll {
		return fmt.Errorf("specify --guild <id> or --all")
	}
	if resetGuild != "" && resetAll {
		return fmt.Errorf("--guild and --all are mutually exclusive")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	deleted, err := st.Reset(resetGuild)
	if err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}

	if resetAll {
		fmt.Printf("Deleted %d messages from the index.\n", deleted)
	} else {
		fmt.Printf("Deleted %d messages for guild %s.\n", deleted, resetGuild)
	}

	return nil
}
