package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"storysim/internal/game"
	"storysim/internal/game/director"
)

func (m Model) View() string {
	statusHeight := 3
	chatHeight := m.height - statusHeight

	narrationStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("7")).
		Italic(true)

	firstStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	secondStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10")).
		Bold(true)

	previousStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))

	statusStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1).
		Width(m.width - 4)

	chatPanel := lipgloss.NewStyle().
		Width(m.width).
		Height(chatHeight).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1)

	contentWidth := m.width - 4

	var rendered []string
	for _, l := range m.lines {
		var text string
		switch {
		case l.previous:
			text = previousStyle.Render(wrapAndIndent(l.entry.Render(), contentWidth, " "))
		case l.entry.Kind == game.KindNarration:
			text = narrationStyle.Render(wrapAndIndent(l.entry.Text, contentWidth, " "))
		case l.entry.Speaker == m.firstSpeaker:
			text = firstStyle.Render(" "+l.entry.Speaker+":") + " " + strings.TrimLeft(wrapAndIndent(l.entry.Text, contentWidth, " "), " ")
		default:
			text = secondStyle.Render(" "+l.entry.Speaker+":") + " " + strings.TrimLeft(wrapAndIndent(l.entry.Text, contentWidth, " "), " ")
		}
		rendered = append(rendered, strings.Split(text, "\n")...)
		rendered = append(rendered, "")
	}

	maxLines := chatHeight - 2
	if maxLines < 1 {
		maxLines = 1
	}
	if len(rendered) > maxLines {
		rendered = rendered[len(rendered)-maxLines:]
	}

	var chatContent strings.Builder
	for i := len(rendered); i < maxLines; i++ {
		chatContent.WriteString("\n")
	}
	chatContent.WriteString(strings.Join(rendered, "\n"))

	chat := chatPanel.Render(chatContent.String())
	status := statusStyle.Render(m.status())

	return chat + "\n" + status
}

func (m Model) status() string {
	switch {
	case m.running:
		return fmt.Sprintf("%s %s   q to stop", getLoadingAnimation(m.animationFrame), m.phase)
	case m.err != nil && errors.Is(m.err, director.ErrIterationLimit):
		return fmt.Sprintf("cut off in %s after %d scenes   q to quit", m.phase, m.result.Iterations)
	case m.err != nil:
		return fmt.Sprintf("Error: %v   q to quit", m.err)
	default:
		return fmt.Sprintf("the end (%d scenes)   q to quit", m.result.Iterations)
	}
}

// wrapAndIndent breaks text on spaces so each line fits width terminal cells.
// Hangul syllables are two cells wide.
func wrapAndIndent(text string, width int, indent string) string {
	if runewidth.StringWidth(text) <= width {
		return indent + text
	}

	var result strings.Builder
	words := strings.Fields(text)
	if len(words) == 0 {
		return indent + text
	}

	currentLine := indent + words[0]

	for _, word := range words[1:] {
		if runewidth.StringWidth(currentLine)+1+runewidth.StringWidth(word) <= width {
			currentLine += " " + word
		} else {
			result.WriteString(currentLine + "\n")
			currentLine = indent + word
		}
	}

	result.WriteString(currentLine)
	return result.String()
}

func getLoadingAnimation(frame int) string {
	// "arc" spinner from cli-spinners
	arc := []string{"◜", "◠", "◝", "◞", "◡", "◟"}
	return arc[frame%len(arc)]
}
