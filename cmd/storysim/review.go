package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"storysim/internal/config"
	"storysim/internal/logging"
)

func reviewCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Show recent generations from the completion log",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.NewCompletionLogger(cfg.CompletionsDB)
			if err != nil {
				return fmt.Errorf("failed to open completion database: %w", err)
			}
			defer logger.Close()

			limit, _ := cmd.Flags().GetInt("limit")
			completions, err := logger.GetRecentCompletions(limit)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(completions) == 0 {
				fmt.Fprintln(w, "No completions found. Run the story first to generate data!")
				return nil
			}

			fmt.Fprintf(w, "Recent completions (%d):\n\n", len(completions))
			for _, comp := range completions {
				fmt.Fprintf(w, "[%d] %s | %s | %s\n", comp.ID, comp.Timestamp.Format("15:04:05"), comp.Speaker, comp.Cue)
				fmt.Fprintf(w, "Raw:     %s\n", comp.Raw)
				fmt.Fprintf(w, "Cleaned: %s\n", comp.Cleaned)
				if comp.Rating > 0 {
					fmt.Fprintf(w, "Rating: %d/5", comp.Rating)
					if comp.Notes != "" {
						fmt.Fprintf(w, " - %s", comp.Notes)
					}
				} else {
					fmt.Fprint(w, "Rating: not rated")
				}
				fmt.Fprintln(w, "\n"+strings.Repeat("-", 50))
			}

			fmt.Fprintln(w, "\nTo rate a completion: storysim rate <id> <rating> [notes]")
			return nil
		},
	}
	cmd.Flags().Int("limit", 10, "number of completions to show")
	return cmd
}

func rateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <id> <rating> [notes...]",
		Short: "Rate a logged generation from 1 to 5",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid id: %w", err)
			}
			rating, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid rating: %w", err)
			}
			notes := strings.Join(args[2:], " ")

			logger, err := logging.NewCompletionLogger(cfg.CompletionsDB)
			if err != nil {
				return fmt.Errorf("failed to open completion database: %w", err)
			}
			defer logger.Close()

			if err := logger.RateCompletion(id, rating, notes); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Rated completion %d as %d/5", id, rating)
			if notes != "" {
				fmt.Fprintf(w, " with notes: %s", notes)
			}
			fmt.Fprintln(w)
			return nil
		},
	}
}
