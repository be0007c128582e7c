// storysim plays out the rabbit and turtle story with two persona agents and a
// narrator, all driven by an OpenAI-compatible text engine.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"storysim/internal/config"
)

const version = "v1.0.0"

func main() {
	var cfg config.Config

	root := &cobra.Command{
		Use:           "storysim",
		Short:         "storysim: multi-agent story simulation",
		Long:          "Advances a two-persona story through introduction, development, climax and resolution, narrating every scene.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			return applyFlags(cmd, &cfg)
		},
	}

	root.PersistentFlags().String("history", "", "history file or database (overrides STORY_HISTORY_PATH)")
	root.PersistentFlags().String("backend", "", "history backend: json or sqlite (overrides STORY_HISTORY_BACKEND)")
	root.PersistentFlags().Bool("debug", false, "write debug traces to debug.log")

	root.AddCommand(
		runCmd(&cfg),
		historyCmd(&cfg),
		reviewCmd(&cfg),
		rateCmd(&cfg),
		mcpCmd(&cfg),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// applyFlags overrides config fields with any flags the user set explicitly.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("history") {
		cfg.HistoryPath, _ = flags.GetString("history")
	}
	if flags.Changed("backend") {
		cfg.HistoryBackend, _ = flags.GetString("backend")
	}
	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
	}
	if flags.Changed("max-iterations") {
		cfg.MaxIterations, _ = flags.GetInt("max-iterations")
	}
	if flags.Changed("cast") {
		cfg.CastFile, _ = flags.GetString("cast")
	}
	return cfg.Validate()
}
