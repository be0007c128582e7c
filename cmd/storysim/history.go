package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"storysim/internal/config"
	"storysim/internal/game"
)

func historyCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the persisted story history",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openHistoryStore(*cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			history, err := game.NewHistory(store)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			turns, _ := cmd.Flags().GetInt("turns")
			asJSON, _ := cmd.Flags().GetBool("json")

			switch {
			case asJSON:
				enc := json.NewEncoder(w)
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				return enc.Encode(history.Entries())
			case turns > 0:
				fmt.Fprintln(w, history.RecentContext(turns))
			default:
				if history.Len() == 0 {
					fmt.Fprintln(w, "No history yet. Run `storysim run` to start the story.")
					return nil
				}
				for i, entry := range history.Entries() {
					fmt.Fprintf(w, "%3d  %s\n", i+1, entry.Render())
				}
			}
			return nil
		},
	}
	cmd.Flags().Int("turns", 0, "only print the last N entries, rendered as agents see them")
	cmd.Flags().Bool("json", false, "print the full history as JSON")
	return cmd
}
