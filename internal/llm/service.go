package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"storysim/internal/debug"
	"storysim/internal/observability"
)

// Context keys for operation tracing
type contextKey string

const (
	operationTypeKey contextKey = "operation_type"
	gameContextKey   contextKey = "game_context"
)

// Mode selects which OpenAI endpoint carries the prompt.
type Mode string

const (
	// ModeCompletion sends the prompt verbatim to the completions endpoint. This is
	// what local llama.cpp style servers expose.
	ModeCompletion Mode = "completion"
	// ModeChat wraps the prompt in a single user message.
	ModeChat Mode = "chat"
)

type ServiceConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Mode    Mode
}

type Service struct {
	client *openai.Client
	model  string
	mode   Mode
	debug  *debug.Logger
	tracer trace.Tracer
}

func NewService(cfg ServiceConfig, debug *debug.Logger, opts ...option.RequestOption) *Service {
	var clientOpts []option.RequestOption
	if cfg.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}
	clientOpts = append(clientOpts, opts...)

	mode := cfg.Mode
	if mode == "" {
		mode = ModeCompletion
	}

	client := openai.NewClient(clientOpts...)
	return &Service{
		client: &client,
		model:  cfg.Model,
		mode:   mode,
		debug:  debug,
		tracer: otel.Tracer("llm-service"),
	}
}

func (s *Service) Model() string {
	return s.model
}

// Complete implements Engine. The returned text is the raw first choice; callers trim it.
func (s *Service) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	operationType := "llm.complete"
	if opType := getOperationType(ctx); opType != "" {
		operationType = opType
	}

	sc := trace.SpanFromContext(ctx).SpanContext()
	if s.debug != nil {
		if !sc.IsValid() {
			s.debug.Printf("NO PARENT: ctx missing active span for %s", operationType)
		} else {
			s.debug.Printf("Complete trace=%s parentSpan=%s op=%s", sc.TraceID(), sc.SpanID(), operationType)
		}
	}

	ctx, span := s.tracer.Start(ctx, operationType,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			observability.CreateGenAIAttributes("openai", s.model, 0, 0, -1)...,
		),
	)
	defer span.End()

	span.SetAttributes(
		attribute.Int("gen_ai.request.max_tokens", maxTokens),
		attribute.String("langfuse.observation.type", "generation"),
		attribute.String("story.operation_type", operationType),
		attribute.String("story.engine_mode", string(s.mode)),
	)
	CopyGameContextToSpan(ctx, span)

	span.AddEvent("gen_ai.user.message", trace.WithAttributes(
		attribute.String("gen_ai.system", "openai"),
		attribute.String("content", prompt),
	))

	startTime := time.Now()

	var (
		content      string
		finishReason string
		inputTokens  int64
		outputTokens int64
		err          error
	)
	switch s.mode {
	case ModeChat:
		content, finishReason, inputTokens, outputTokens, err = s.completeChat(ctx, prompt, maxTokens)
	default:
		content, finishReason, inputTokens, outputTokens, err = s.completeText(ctx, prompt, maxTokens)
	}
	if err != nil {
		span.SetAttributes(attribute.String("error.type", "llm_completion_error"))
		span.RecordError(err)
		if s.debug != nil {
			s.debug.Printf("LLM completion error: %v", err)
		}
		return "", asGenerationError(s.model, err)
	}

	duration := time.Since(startTime)

	span.SetAttributes(
		attribute.Int64("gen_ai.usage.input_tokens", inputTokens),
		attribute.Int64("gen_ai.usage.output_tokens", outputTokens),
		attribute.Int64("response_time_ms", duration.Milliseconds()),
		attribute.String("langfuse.observation.input", prompt),
		attribute.String("langfuse.observation.output", content),
		attribute.String("langfuse.observation.output_format", "text"),
		attribute.String("langfuse.observation.model.name", s.model),
	)

	span.AddEvent("gen_ai.choice", trace.WithAttributes(
		attribute.String("gen_ai.system", "openai"),
		attribute.String("content", content),
	))

	if s.debug != nil {
		s.debug.Printf("LLM completion response length: %d, finish_reason=%s, tokens: %d/%d, duration: %v",
			len(content), finishReason, inputTokens, outputTokens, duration)
	}

	return content, nil
}

func (s *Service) completeText(ctx context.Context, prompt string, maxTokens int) (string, string, int64, int64, error) {
	req := openai.CompletionNewParams{
		Model:     openai.CompletionNewParamsModel(s.model),
		Prompt:    openai.CompletionNewParamsPromptUnion{OfString: openai.String(prompt)},
		MaxTokens: openai.Int(int64(maxTokens)),
	}

	if s.debug != nil {
		s.debug.Printf("LLM Text Completion - MaxTokens: %d, Prompt length: %d", maxTokens, len(prompt))
	}

	resp, err := s.client.Completions.New(ctx, req)
	if err != nil {
		return "", "", 0, 0, fmt.Errorf("text completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", "", 0, 0, ErrNoChoices
	}

	choice := resp.Choices[0]
	return choice.Text, string(choice.FinishReason), resp.Usage.PromptTokens, resp.Usage.CompletionTokens, nil
}

func (s *Service) completeChat(ctx context.Context, prompt string, maxTokens int) (string, string, int64, int64, error) {
	req := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxCompletionTokens: openai.Int(int64(maxTokens)),
	}

	if s.debug != nil {
		s.debug.Printf("LLM Chat Completion - MaxTokens: %d, Prompt length: %d", maxTokens, len(prompt))
	}

	resp, err := s.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return "", "", 0, 0, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", "", 0, 0, ErrNoChoices
	}

	choice := resp.Choices[0]
	return choice.Message.Content, string(choice.FinishReason), resp.Usage.PromptTokens, resp.Usage.CompletionTokens, nil
}

func WithOperationType(ctx context.Context, opType string) context.Context {
	return context.WithValue(ctx, operationTypeKey, opType)
}

// WithGameContext attaches story attributes that are copied onto every llm span.
func WithGameContext(ctx context.Context, gameCtx map[string]interface{}) context.Context {
	// Merge with any existing game context instead of overwriting
	if existing, ok := ctx.Value(gameContextKey).(map[string]interface{}); ok && existing != nil {
		merged := make(map[string]interface{}, len(existing)+len(gameCtx))
		for k, v := range existing {
			merged[k] = v
		}
		for k, v := range gameCtx {
			merged[k] = v
		}
		return context.WithValue(ctx, gameContextKey, merged)
	}
	return context.WithValue(ctx, gameContextKey, gameCtx)
}

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return observability.WithSessionID(ctx, sessionID)
}

func getOperationType(ctx context.Context) string {
	if opType, ok := ctx.Value(operationTypeKey).(string); ok {
		return opType
	}
	return ""
}

func getGameContext(ctx context.Context) map[string]interface{} {
	if gameCtx, ok := ctx.Value(gameContextKey).(map[string]interface{}); ok {
		return gameCtx
	}
	return nil
}

// CopyGameContextToSpan attaches game context and session id attributes to an existing span.
func CopyGameContextToSpan(ctx context.Context, span trace.Span) {
	if span == nil {
		return
	}
	if sid := observability.GetSessionIDFromContext(ctx); sid != "" {
		span.SetAttributes(
			attribute.String("langfuse.session.id", sid),
			attribute.String("session.id", sid),
		)
	}
	for k, v := range getGameContext(ctx) {
		switch val := v.(type) {
		case string:
			span.SetAttributes(attribute.String("story."+k, val))
		case int:
			span.SetAttributes(attribute.Int("story."+k, val))
		case []string:
			span.SetAttributes(attribute.StringSlice("story."+k, val))
		}
	}
}
