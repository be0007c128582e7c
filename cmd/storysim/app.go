package main

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/option"

	"storysim/internal/config"
	"storysim/internal/debug"
	"storysim/internal/game"
	"storysim/internal/game/actors"
	"storysim/internal/game/director"
	"storysim/internal/game/narration"
	"storysim/internal/game/sanitize"
	"storysim/internal/llm"
	"storysim/internal/logging"
	"storysim/internal/observability"
	"storysim/internal/persistence"
)

// app holds the long-lived collaborators of one story run.
type app struct {
	cfg         config.Config
	cast        actors.Cast
	debugLogger *debug.Logger
	tracing     *observability.TracerProvider
	history     *game.History
	completions *logging.CompletionLogger
	closers     []func() error
}

// openHistoryStore picks the configured history backend. The returned close func
// is never nil.
func openHistoryStore(cfg config.Config) (game.Persistence, func() error, error) {
	switch cfg.HistoryBackend {
	case config.BackendSQLite:
		store, err := persistence.OpenSQLiteHistory(cfg.HistoryPath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return game.NewJSONFile(cfg.HistoryPath), func() error { return nil }, nil
	}
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	debugLogger := debug.NewLogger(cfg.Debug)
	a := &app{cfg: cfg, debugLogger: debugLogger}

	cast, err := actors.LoadCast(cfg.CastFile)
	if err != nil {
		return nil, err
	}
	a.cast = cast

	tracerProvider, err := observability.InitTracing(ctx, cfg.Tracing)
	if err != nil {
		debugLogger.Printf("Failed to initialize tracing: %v", err)
	} else if tracerProvider.IsEnabled() {
		debugLogger.Println("OpenTelemetry tracing initialized and enabled")
	} else {
		debugLogger.Println("OpenTelemetry tracing disabled (set OTEL_TRACES_ENABLED=true to enable)")
	}
	a.tracing = tracerProvider

	store, closeStore, err := openHistoryStore(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	a.closers = append(a.closers, closeStore)

	a.history, err = game.NewHistory(store)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	debugLogger.Printf("Loaded %d history entries from %s (%s)", a.history.Len(), cfg.HistoryPath, cfg.HistoryBackend)

	if cfg.CompletionsDB != "" {
		a.completions, err = logging.NewCompletionLogger(cfg.CompletionsDB)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize completion logger: %w", err)
		}
		a.closers = append(a.closers, a.completions.Close)
	}

	return a, nil
}

func (a *app) engine() llm.Engine {
	service := llm.NewService(llm.ServiceConfig{
		APIKey:  a.cfg.APIKey,
		BaseURL: a.cfg.BaseURL,
		Model:   a.cfg.Model,
		Mode:    llm.Mode(a.cfg.Mode),
	}, a.debugLogger, option.WithMaxRetries(0))

	return llm.Retrying(service, llm.RetryPolicy{
		MaxRetries:      a.cfg.MaxRetries,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
	}, a.debugLogger)
}

// newDirector wires the cast, narrator and script around the shared history.
func (a *app) newDirector(out director.Output) *director.Director {
	cast := a.cast
	engine := a.engine()
	sanitizer := sanitize.New().WithSpeakers(cast.First.Name, cast.Second.Name)
	opts := []actors.Option{
		actors.WithDebug(a.debugLogger),
		actors.WithTracer(a.tracing.GetTracer("storysim/actors")),
		actors.WithSanitizer(sanitizer),
		actors.WithContextTurns(a.cfg.ContextTurns),
	}
	if a.completions != nil {
		opts = append(opts, actors.WithRecorder(a.completions))
	}
	personaOpts := append([]actors.Option{actors.WithBuilder(actors.PersonaPrompt{Rules: cast.Rules})}, opts...)

	first := actors.NewPersonaAgent(cast.First, engine, a.history, personaOpts...)
	second := actors.NewPersonaAgent(cast.Second, engine, a.history, personaOpts...)
	narrator := narration.NewNarrator(engine, a.history, opts...)

	return director.New(director.DefaultScript(), narrator, first, second, a.history,
		director.WithOutput(out),
		director.WithMaxIterations(a.cfg.MaxIterations),
		director.WithTokenBudget(a.cfg.TokenBudget),
		director.WithContextTurns(a.cfg.ContextTurns),
		director.WithDebug(a.debugLogger),
		director.WithTracer(a.tracing.GetTracer("storysim/director")),
	)
}

func (a *app) Close() {
	if a.tracing != nil {
		a.tracing.Shutdown(context.Background())
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.debugLogger.Printf("close failed: %v", err)
		}
	}
}
