package llm

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	"storysim/internal/debug"
)

// RetryPolicy controls how often a failed generation is retried. MaxRetries of zero
// means a failure goes straight back to the caller.
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

type retryingEngine struct {
	next   Engine
	policy RetryPolicy
	debug  *debug.Logger
}

// Retrying wraps next with exponential backoff. A context cancellation is never retried.
func Retrying(next Engine, policy RetryPolicy, debugLogger *debug.Logger) Engine {
	if policy.MaxRetries <= 0 {
		return next
	}
	return &retryingEngine{next: next, policy: policy, debug: debugLogger}
}

func (r *retryingEngine) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	b := backoff.NewExponentialBackOff()
	if r.policy.InitialInterval > 0 {
		b.InitialInterval = r.policy.InitialInterval
	}
	if r.policy.MaxInterval > 0 {
		b.MaxInterval = r.policy.MaxInterval
	}

	attempt := 0
	operation := func() (string, error) {
		attempt++
		text, err := r.next.Complete(ctx, prompt, maxTokens)
		if err == nil {
			return text, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", backoff.Permanent(err)
		}
		if r.debug != nil {
			r.debug.Printf("generation attempt %d/%d failed: %v", attempt, r.policy.MaxRetries+1, err)
		}
		return "", err
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(r.policy.MaxRetries+1)),
	)
}
