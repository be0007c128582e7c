package actors

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"storysim/internal/debug"
	"storysim/internal/game"
	"storysim/internal/game/sanitize"
	"storysim/internal/llm"
)

const (
	DefaultTokenBudget  = 150
	DefaultContextTurns = 3
)

// Agent is anything that can add one line to the story.
type Agent interface {
	Name() string
	Kind() game.Kind
	Speak(ctx context.Context, cue string, maxTokens int) (game.DialogueEntry, error)
}

// Generation is one engine round trip as seen by an agent.
type Generation struct {
	Speaker  string
	Cue      string
	Prompt   string
	Raw      string
	Cleaned  string
	Metadata map[string]interface{}
}

// Recorder receives every generation after it has been appended to history.
type Recorder interface {
	Record(ctx context.Context, gen Generation) error
}

// Speaker runs the pipeline shared by personas and the narrator:
// recent context, prompt, completion, sanitization, append.
type Speaker struct {
	cfg          PersonaConfig
	kind         game.Kind
	builder      PromptBuilder
	engine       llm.Engine
	history      *game.History
	sanitizer    *sanitize.Sanitizer
	contextTurns int
	recorder     Recorder
	debug        *debug.Logger
	tracer       trace.Tracer
}

type Option func(*Speaker)

func WithRecorder(r Recorder) Option {
	return func(s *Speaker) { s.recorder = r }
}

func WithDebug(d *debug.Logger) Option {
	return func(s *Speaker) { s.debug = d }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Speaker) {
		if t != nil {
			s.tracer = t
		}
	}
}

func WithSanitizer(san *sanitize.Sanitizer) Option {
	return func(s *Speaker) {
		if san != nil {
			s.sanitizer = san
		}
	}
}

func WithBuilder(b PromptBuilder) Option {
	return func(s *Speaker) {
		if b != nil {
			s.builder = b
		}
	}
}

// WithContextTurns sets the history window fed into each prompt. Values <= 0 are ignored.
func WithContextTurns(n int) Option {
	return func(s *Speaker) {
		if n > 0 {
			s.contextTurns = n
		}
	}
}

func NewSpeaker(cfg PersonaConfig, kind game.Kind, builder PromptBuilder, engine llm.Engine, history *game.History, opts ...Option) *Speaker {
	s := &Speaker{
		cfg:          cfg,
		kind:         kind,
		builder:      builder,
		engine:       engine,
		history:      history,
		sanitizer:    sanitize.New(),
		contextTurns: DefaultContextTurns,
		tracer:       noop.NewTracerProvider().Tracer("storysim/actors"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewPersonaAgent builds a dialogue speaker using PersonaPrompt unless WithBuilder overrides it.
func NewPersonaAgent(cfg PersonaConfig, engine llm.Engine, history *game.History, opts ...Option) *Speaker {
	return NewSpeaker(cfg, game.KindDialogue, PersonaPrompt{}, engine, history, opts...)
}

func (s *Speaker) Name() string    { return s.cfg.Name }
func (s *Speaker) Kind() game.Kind { return s.kind }

// Speak generates, cleans and appends one line. An engine failure leaves history
// untouched; a successful call always grows it by exactly one entry.
func (s *Speaker) Speak(ctx context.Context, cue string, maxTokens int) (game.DialogueEntry, error) {
	if maxTokens <= 0 {
		maxTokens = DefaultTokenBudget
	}

	ctx, span := s.tracer.Start(ctx, "agent.speak", trace.WithAttributes(
		attribute.String("agent.name", s.cfg.Name),
		attribute.String("agent.kind", string(s.kind)),
		attribute.String("agent.cue", cue),
	))
	defer span.End()

	ctx = llm.WithOperationType(ctx, "agent."+string(s.kind))
	ctx = llm.WithGameContext(ctx, map[string]interface{}{
		"speaker": s.cfg.Name,
		"cue":     cue,
	})

	recent := s.history.RecentContext(s.contextTurns)
	prompt := s.builder.Build(s.cfg, recent, cue)
	s.debug.Printf("%s prompt (%d chars) cue=%q", s.cfg.Name, len(prompt), cue)

	raw, err := s.engine.Complete(ctx, prompt, maxTokens)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return game.DialogueEntry{}, fmt.Errorf("%s failed to speak: %w", s.cfg.Name, err)
	}

	raw = strings.TrimSpace(raw)
	cleaned := s.sanitizer.Clean(raw)
	degenerate := sanitize.IsDegenerate(cleaned)
	if degenerate {
		s.debug.Warn("line is empty after sanitization", "speaker", s.cfg.Name, "raw", raw)
		span.SetAttributes(attribute.Bool("agent.degenerate", true))
	}

	entry := game.DialogueEntry{Speaker: s.cfg.Name, Text: cleaned, Kind: s.kind}
	if err := s.history.Append(entry); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "append failed")
		return game.DialogueEntry{}, fmt.Errorf("%s failed to record line: %w", s.cfg.Name, err)
	}
	span.SetAttributes(attribute.String("agent.line", cleaned))

	if s.recorder != nil {
		gen := Generation{
			Speaker: s.cfg.Name,
			Cue:     cue,
			Prompt:  prompt,
			Raw:     raw,
			Cleaned: cleaned,
			Metadata: map[string]interface{}{
				"kind":          string(s.kind),
				"max_tokens":    maxTokens,
				"context_turns": s.contextTurns,
				"degenerate":    degenerate,
			},
		}
		if err := s.recorder.Record(ctx, gen); err != nil {
			s.debug.Warn("failed to record completion", "speaker", s.cfg.Name, "error", err)
		}
	}

	return entry, nil
}
