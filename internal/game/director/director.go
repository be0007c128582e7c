package director

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"storysim/internal/debug"
	"storysim/internal/game"
	"storysim/internal/game/actors"
	"storysim/internal/game/narration"
	"storysim/internal/llm"
	"storysim/internal/observability"
)

// ErrIterationLimit is returned when the story is cut off by MaxIterations before
// the final guard fired. The closing narration has still been written.
var ErrIterationLimit = errors.New("story did not reach its ending within the iteration limit")

// Output receives every line as soon as it is in history, and every phase the
// story enters.
type Output interface {
	Line(entry game.DialogueEntry)
	Phase(phase game.Phase)
}

type discard struct{}

func (discard) Line(game.DialogueEntry) {}
func (discard) Phase(game.Phase)        {}

// Result summarizes a finished run.
type Result struct {
	RunID       string
	Iterations  int
	GuardMisses int
	Phases      []game.Phase
	Terminated  bool
}

// Director drives the phase machine. It owns the story state; the agents own history writes.
type Director struct {
	script        Script
	narrator      actors.Agent
	first         actors.Agent
	second        actors.Agent
	history       *game.History
	out           Output
	maxIterations int
	tokenBudget   int
	contextTurns  int
	debug         *debug.Logger
	tracer        trace.Tracer
}

type Option func(*Director)

func WithOutput(out Output) Option {
	return func(d *Director) {
		if out != nil {
			d.out = out
		}
	}
}

// WithMaxIterations bounds the loop. Zero means unbounded.
func WithMaxIterations(n int) Option {
	return func(d *Director) { d.maxIterations = n }
}

func WithTokenBudget(n int) Option {
	return func(d *Director) { d.tokenBudget = n }
}

func WithContextTurns(n int) Option {
	return func(d *Director) {
		if n > 0 {
			d.contextTurns = n
		}
	}
}

func WithDebug(l *debug.Logger) Option {
	return func(d *Director) { d.debug = l }
}

func WithTracer(t trace.Tracer) Option {
	return func(d *Director) {
		if t != nil {
			d.tracer = t
		}
	}
}

func New(script Script, narrator, first, second actors.Agent, history *game.History, opts ...Option) *Director {
	d := &Director{
		script:       script,
		narrator:     narrator,
		first:        first,
		second:       second,
		history:      history,
		out:          discard{},
		contextTurns: actors.DefaultContextTurns,
		tracer:       noop.NewTracerProvider().Tracer("storysim/director"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type cues struct {
	first, second string
}

// Run plays the story until the final guard fires, the iteration limit is hit, or
// an agent fails. Agent failures abort the run without a closing narration.
func (d *Director) Run(ctx context.Context) (Result, error) {
	if err := d.script.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid script: %w", err)
	}

	runID := uuid.NewString()
	ctx = llm.WithSessionID(ctx, runID)
	ctx, span := d.tracer.Start(ctx, "story.run", trace.WithAttributes(
		observability.CreateLangfuseAttributes("story.run", runID, []string{d.first.Name(), d.second.Name()})...,
	))
	defer span.End()

	state := game.NewStoryState(d.script.Location, d.script.OpeningSituation)
	result := Result{RunID: runID, Phases: []game.Phase{state.Phase}}
	d.out.Phase(state.Phase)
	d.debug.Printf("story %s starting at %s (history has %d entries)", runID, state.Location, d.history.Len())

	var current cues
	limitHit := false
	for {
		if d.maxIterations > 0 && result.Iterations >= d.maxIterations {
			limitHit = true
			break
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		result.Iterations++
		done, err := d.iterate(ctx, &state, &current, &result)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "story aborted")
			return result, fmt.Errorf("iteration %d (%s): %w", result.Iterations, state.Phase, err)
		}
		if done {
			result.Terminated = true
			break
		}
	}

	if err := d.speak(ctx, d.narrator, d.script.ClosingCue); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "closing narration failed")
		return result, fmt.Errorf("closing narration: %w", err)
	}

	span.SetAttributes(
		attribute.Int("story.iterations", result.Iterations),
		attribute.Int("story.guard_misses", result.GuardMisses),
		attribute.String("story.final_phase", state.Phase.String()),
		attribute.Bool("story.terminated", result.Terminated),
	)

	if limitHit {
		d.debug.Warn("story cut off", "iterations", result.Iterations, "phase", state.Phase.String())
		return result, fmt.Errorf("%w (%d iterations, phase %s)", ErrIterationLimit, result.Iterations, state.Phase)
	}
	return result, nil
}

// iterate runs one scene: narration, guard, then both personas. It reports true
// when the final guard fired.
func (d *Director) iterate(ctx context.Context, state *game.StoryState, current *cues, result *Result) (bool, error) {
	ctx, span := d.tracer.Start(ctx, "story.iteration", trace.WithAttributes(
		attribute.Int("story.iteration", result.Iterations),
		attribute.String("story.phase", state.Phase.String()),
	))
	defer span.End()
	ctx = llm.WithGameContext(ctx, map[string]interface{}{
		"phase":     state.Phase.String(),
		"iteration": result.Iterations,
	})

	if err := d.speak(ctx, d.narrator, narration.SceneCue(state.Location, state.Situation)); err != nil {
		return false, err
	}

	recent := d.history.RecentContext(d.contextTurns)
	t, _ := d.script.transition(state.Phase)
	if t.Guard(recent) {
		if !state.Advance() {
			span.AddEvent("story.ending")
			return true, nil
		}
		*current = cues{first: t.FirstCue, second: t.SecondCue}
		result.Phases = append(result.Phases, state.Phase)
		d.out.Phase(state.Phase)
		span.AddEvent("story.phase_changed", trace.WithAttributes(attribute.String("story.phase", state.Phase.String())))
		d.debug.Printf("phase -> %s", state.Phase)
	} else {
		result.GuardMisses++
		d.debug.Warn("phase guard did not fire, repeating cues", "phase", state.Phase.String(), "iteration", result.Iterations)
		span.AddEvent("story.guard_miss")
	}

	if current.first == "" && current.second == "" {
		// Nothing has been cued yet, so this scene is narration only.
		return false, nil
	}

	if err := d.speak(ctx, d.first, current.first); err != nil {
		return false, err
	}
	if err := d.speak(ctx, d.second, current.second); err != nil {
		return false, err
	}

	state.Situation = d.script.PostTurnSituation
	return false, nil
}

func (d *Director) speak(ctx context.Context, agent actors.Agent, cue string) error {
	entry, err := agent.Speak(ctx, cue, d.tokenBudget)
	if err != nil {
		return err
	}
	d.out.Line(entry)
	return nil
}
