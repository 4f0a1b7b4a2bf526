package commands

import (
	"encoding/json"
	"fmt"

	"unprompted-mcp/internal/history"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently completed calculations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.HistoryEnabled {
			return fmt.Errorf("run history is disabled (HISTORY_ENABLED=false)")
		}
		store, err := history.OpenStore(cfg.HistoryPath)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.Recent(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
	rootCmd.AddCommand(historyCmd)
}
