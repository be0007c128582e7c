package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/openai/openai-go/option"
)

type recordedRequest struct {
	Path string
	Body map[string]any
}

func fakeOpenAI(t *testing.T, status int, response string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		var body map[string]any
		json.Unmarshal(data, &body)
		requests = append(requests, recordedRequest{Path: r.URL.Path, Body: body})

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func newTestService(srv *httptest.Server, mode Mode) *Service {
	return NewService(ServiceConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/v1/",
		Model:   "bllossom-3b",
		Mode:    mode,
	}, nil, option.WithMaxRetries(0))
}

func TestServiceCompletionMode(t *testing.T) {
	srv, requests := fakeOpenAI(t, http.StatusOK, `{
		"id": "cmpl-1",
		"object": "text_completion",
		"created": 1,
		"model": "bllossom-3b",
		"choices": [{"index": 0, "text": "  거북이야, 경주하자!  ", "finish_reason": "stop", "logprobs": null}],
		"usage": {"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17}
	}`)

	svc := newTestService(srv, ModeCompletion)
	text, err := svc.Complete(context.Background(), "다음 대사: ", 150)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if text != "  거북이야, 경주하자!  " {
		t.Errorf("unexpected text %q", text)
	}

	if len(*requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(*requests))
	}
	req := (*requests)[0]
	if !strings.HasSuffix(req.Path, "/completions") || strings.Contains(req.Path, "chat") {
		t.Errorf("expected completions endpoint, got %s", req.Path)
	}
	if req.Body["prompt"] != "다음 대사: " {
		t.Errorf("prompt not forwarded: %v", req.Body["prompt"])
	}
	if req.Body["max_tokens"] != float64(150) {
		t.Errorf("max_tokens not forwarded: %v", req.Body["max_tokens"])
	}
}

func TestServiceChatMode(t *testing.T) {
	srv, requests := fakeOpenAI(t, http.StatusOK, `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"created": 1,
		"model": "bllossom-3b",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "좋습니다."}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 3, "completion_tokens": 2, "total_tokens": 5}
	}`)

	svc := newTestService(srv, ModeChat)
	text, err := svc.Complete(context.Background(), "안녕", 20)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if text != "좋습니다." {
		t.Errorf("unexpected text %q", text)
	}
	if !strings.HasSuffix((*requests)[0].Path, "/chat/completions") {
		t.Errorf("expected chat endpoint, got %s", (*requests)[0].Path)
	}
}

func TestServiceNoChoices(t *testing.T) {
	srv, _ := fakeOpenAI(t, http.StatusOK, `{"id": "cmpl-2", "object": "text_completion", "created": 1, "model": "m", "choices": []}`)

	_, err := newTestService(srv, ModeCompletion).Complete(context.Background(), "x", 10)
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if !errors.Is(err, ErrNoChoices) {
		t.Errorf("expected ErrNoChoices, got %v", err)
	}
}

func TestServiceHTTPError(t *testing.T) {
	srv, _ := fakeOpenAI(t, http.StatusInternalServerError, `{"error": {"message": "boom", "type": "server_error"}}`)

	_, err := newTestService(srv, ModeCompletion).Complete(context.Background(), "x", 10)
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if genErr.Model != "bllossom-3b" {
		t.Errorf("expected model in error, got %q", genErr.Model)
	}
}

func TestRetryingRetriesThenSucceeds(t *testing.T) {
	calls := 0
	flaky := EngineFunc(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		calls++
		if calls < 3 {
			return "", &GenerationError{Err: errors.New("temporary")}
		}
		return "ok", nil
	})

	engine := Retrying(flaky, RetryPolicy{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}, nil)
	text, err := engine.Complete(context.Background(), "p", 10)
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if text != "ok" || calls != 3 {
		t.Errorf("got text %q after %d calls", text, calls)
	}
}

func TestRetryingGivesUp(t *testing.T) {
	calls := 0
	broken := EngineFunc(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		calls++
		return "", &GenerationError{Err: errors.New("down")}
	})

	engine := Retrying(broken, RetryPolicy{MaxRetries: 1, InitialInterval: time.Millisecond}, nil)
	_, err := engine.Complete(context.Background(), "p", 10)
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestRetryingZeroIsPassthrough(t *testing.T) {
	engine := EngineFunc(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		return "", errors.New("x")
	})
	if _, ok := Retrying(engine, RetryPolicy{}, nil).(EngineFunc); !ok {
		t.Fatal("expected the engine to be returned unwrapped")
	}
}
