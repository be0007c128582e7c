package game

import (
	"fmt"
	"strings"
)

// Kind distinguishes spoken lines from narration in the history.
type Kind string

const (
	KindDialogue  Kind = "dialogue"
	KindNarration Kind = "narration"
)

// DialogueEntry is one line of the story. Entries are never mutated after creation.
type DialogueEntry struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	Kind    Kind   `json:"type"`
}

// Render returns the line as it appears in the recent context window.
func (e DialogueEntry) Render() string {
	if e.Kind == KindNarration {
		return e.Text
	}
	return fmt.Sprintf("%s: %s", e.Speaker, e.Text)
}

// History is the append-only story log. It is the only context channel agents have,
// and every Append is persisted before it returns.
type History struct {
	entries []DialogueEntry
	store   Persistence
}

// NewHistory loads any previously persisted entries from store.
func NewHistory(store Persistence) (*History, error) {
	entries, err := store.Load()
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []DialogueEntry{}
	}
	return &History{
		entries: entries,
		store:   store,
	}, nil
}

// Append adds entry to the end of the history and rewrites the persisted copy.
func (h *History) Append(entry DialogueEntry) error {
	h.entries = append(h.entries, entry)
	return h.store.Save(h.entries)
}

// RecentContext renders the last nTurns entries oldest first, one per line.
func (h *History) RecentContext(nTurns int) string {
	if nTurns <= 0 || len(h.entries) == 0 {
		return ""
	}

	start := len(h.entries) - nTurns
	if start < 0 {
		start = 0
	}

	lines := make([]string, 0, len(h.entries)-start)
	for _, entry := range h.entries[start:] {
		lines = append(lines, entry.Render())
	}
	return strings.Join(lines, "\n")
}

func (h *History) Entries() []DialogueEntry {
	result := make([]DialogueEntry, len(h.entries))
	copy(result, h.entries)
	return result
}

func (h *History) Len() int {
	return len(h.entries)
}
