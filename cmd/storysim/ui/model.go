package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"storysim/internal/game"
	"storysim/internal/game/director"
)

// Model is a read-only viewer: the director runs in its own goroutine and feeds
// lines in through ProgramOutput.
type Model struct {
	lines          []line
	phase          game.Phase
	firstSpeaker   string
	width          int
	height         int
	running        bool
	animationFrame int
	result         director.Result
	err            error
	cancel         context.CancelFunc
}

type line struct {
	entry    game.DialogueEntry
	previous bool
}

// NewModel shows earlier history dimmed above the new run. cancel stops the run when
// the viewer quits.
func NewModel(firstSpeaker string, previous []game.DialogueEntry, cancel context.CancelFunc) Model {
	lines := make([]line, 0, len(previous))
	for _, e := range previous {
		lines = append(lines, line{entry: e, previous: true})
	}
	return Model{
		lines:        lines,
		firstSpeaker: firstSpeaker,
		running:      true,
		cancel:       cancel,
	}
}

func (m Model) Init() tea.Cmd {
	return animationTimer()
}

// Err is the run's error once StoryDoneMsg has arrived.
func (m Model) Err() error {
	return m.err
}

func (m Model) Result() director.Result {
	return m.result
}

type animationTickMsg struct{}

type LineMsg struct {
	Entry game.DialogueEntry
}

type PhaseMsg struct {
	Phase game.Phase
}

type StoryDoneMsg struct {
	Result director.Result
	Err    error
}

func animationTimer() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return animationTickMsg{}
	})
}

// ProgramOutput forwards director output into the running program.
type ProgramOutput struct {
	Program *tea.Program
}

func (o ProgramOutput) Line(entry game.DialogueEntry) {
	o.Program.Send(LineMsg{Entry: entry})
}

func (o ProgramOutput) Phase(phase game.Phase) {
	o.Program.Send(PhaseMsg{Phase: phase})
}
