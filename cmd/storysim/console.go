package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"storysim/internal/game"
)

var (
	narrationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7")).Italic(true)
	firstStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	secondStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	phaseStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// consoleOutput prints the story as it is written, one blank line between entries.
type consoleOutput struct {
	w     io.Writer
	first string
}

func (c *consoleOutput) Line(entry game.DialogueEntry) {
	label := entry.Speaker + ":"
	switch {
	case entry.Kind == game.KindNarration:
		fmt.Fprintf(c.w, "\n%s %s\n", narrationStyle.Render(label), narrationStyle.Render(entry.Text))
		return
	case entry.Speaker == c.first:
		label = firstStyle.Render(label)
	default:
		label = secondStyle.Render(label)
	}
	fmt.Fprintf(c.w, "\n%s %s\n", label, entry.Text)
}

func (c *consoleOutput) Phase(phase game.Phase) {
	fmt.Fprintf(c.w, "\n%s\n", phaseStyle.Render("── "+phase.String()+" ──"))
}
