package llm

import (
	"context"
	"errors"
	"fmt"
)

// Engine is the text generation collaborator: given a prompt and a token budget it
// returns the generated continuation.
type Engine interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(ctx context.Context, prompt string, maxTokens int) (string, error)

func (f EngineFunc) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return f(ctx, prompt, maxTokens)
}

var ErrNoChoices = errors.New("no completion choices returned")

// GenerationError wraps any failure of the engine call, including an empty choice list.
type GenerationError struct {
	Model string
	Err   error
}

func (e *GenerationError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("generation failed: %v", e.Err)
	}
	return fmt.Sprintf("generation failed (%s): %v", e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func asGenerationError(model string, err error) error {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return err
	}
	return &GenerationError{Model: model, Err: err}
}
