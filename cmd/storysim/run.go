package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"storysim/cmd/storysim/ui"
	"storysim/internal/config"
	"storysim/internal/debug"
	"storysim/internal/game/director"
)

func runCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play the story, continuing from the persisted history",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			a, err := newApp(ctx, *cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if tui, _ := cmd.Flags().GetBool("tui"); tui {
				return runTUI(ctx, a)
			}
			return runConsole(ctx, a, cmd.OutOrStdout())
		},
	}
	cmd.Flags().Bool("tui", false, "watch the story in a full-screen viewer")
	cmd.Flags().Int("max-iterations", 0, "stop after this many scenes (overrides STORY_MAX_ITERATIONS)")
	cmd.Flags().String("cast", "", "YAML cast file (overrides STORY_CAST_FILE)")
	return cmd
}

func runConsole(ctx context.Context, a *app, w io.Writer) error {
	d := a.newDirector(&consoleOutput{w: w, first: a.cast.First.Name})

	result, err := d.Run(ctx)
	if errors.Is(err, director.ErrIterationLimit) {
		fmt.Fprintf(w, "\n%s\n", phaseStyle.Render(err.Error()))
		return nil
	}
	if err != nil {
		return err
	}

	a.debugLogger.Printf("story %s finished: %d iterations, %d guard misses", result.RunID, result.Iterations, result.GuardMisses)
	return nil
}

func runTUI(ctx context.Context, a *app) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if !a.cfg.Debug {
		// Warnings would draw over the alt screen.
		a.debugLogger = debug.New(io.Discard, false)
	}

	model := ui.NewModel(a.cast.First.Name, a.history.Entries(), cancel)
	p := tea.NewProgram(model, tea.WithAltScreen())
	d := a.newDirector(ui.ProgramOutput{Program: p})

	done := make(chan struct{})
	go func() {
		defer close(done)
		result, err := d.Run(ctx)
		p.Send(ui.StoryDoneMsg{Result: result, Err: err})
	}()

	final, err := p.Run()
	cancel()
	<-done
	if err != nil {
		return fmt.Errorf("viewer failed: %w", err)
	}
	if m, ok := final.(ui.Model); ok && m.Err() != nil && !errors.Is(m.Err(), director.ErrIterationLimit) && !errors.Is(m.Err(), context.Canceled) {
		return m.Err()
	}
	return nil
}
