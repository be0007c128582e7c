package main

import (
	"github.com/spf13/cobra"

	"storysim/internal/config"
	"storysim/internal/debug"
	"storysim/internal/mcp"
)

func mcpCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the story history to MCP clients over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openHistoryStore(*cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			inspector := mcp.NewHistoryInspector(store, debug.NewLogger(cfg.Debug))
			return inspector.Serve(cmd.Context(), version)
		},
	}
}
