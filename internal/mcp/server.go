// Package mcp exposes the persisted story history to MCP clients over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"storysim/internal/debug"
	"storysim/internal/game"
)

type RecentContextArgs struct {
	Turns int `json:"turns" jsonschema:"number of most recent entries to render"`
}

type HistoryArgs struct{}

// HistoryInspector serves read-only views of a history backend. It reloads on
// every call so a concurrently running story is visible as it grows.
type HistoryInspector struct {
	store       game.Persistence
	debugLogger *debug.Logger
}

func NewHistoryInspector(store game.Persistence, debugLogger *debug.Logger) *HistoryInspector {
	return &HistoryInspector{store: store, debugLogger: debugLogger}
}

// NewServer registers the inspector tools on a fresh MCP server.
func (h *HistoryInspector) NewServer(version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "storysim-history",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "recent_context",
		Description: "Render the last N history entries the way agents see them",
	}, h.RecentContext)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "history",
		Description: "Return the full story history as JSON",
	}, h.History)

	return server
}

// Serve runs the server on stdin/stdout until the client disconnects or ctx ends.
func (h *HistoryInspector) Serve(ctx context.Context, version string) error {
	return h.NewServer(version).Run(ctx, mcp.NewStdioTransport())
}

func (h *HistoryInspector) load() (*game.History, error) {
	history, err := game.NewHistory(readOnly{h.store})
	if err != nil {
		h.debugLogger.Printf("history load failed: %v", err)
		return nil, err
	}
	return history, nil
}

func (h *HistoryInspector) RecentContext(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[RecentContextArgs]) (*mcp.CallToolResultFor[any], error) {
	history, err := h.load()
	if err != nil {
		return toolError(err), nil
	}

	turns := params.Arguments.Turns
	if turns <= 0 {
		turns = 3
	}
	h.debugLogger.Printf("mcp recent_context turns=%d", turns)

	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: history.RecentContext(turns)}},
	}, nil
}

func (h *HistoryInspector) History(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[HistoryArgs]) (*mcp.CallToolResultFor[any], error) {
	history, err := h.load()
	if err != nil {
		return toolError(err), nil
	}

	data, err := json.MarshalIndent(history.Entries(), "", "  ")
	if err != nil {
		return toolError(fmt.Errorf("failed to encode history: %w", err)), nil
	}

	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}

func toolError(err error) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}
}

// readOnly refuses writes so the inspector can never modify the story.
type readOnly struct {
	game.Persistence
}

func (readOnly) Save([]game.DialogueEntry) error {
	return fmt.Errorf("history inspector is read-only")
}
