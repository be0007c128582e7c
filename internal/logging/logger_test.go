package logging

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"storysim/internal/game/actors"
	"storysim/internal/observability"
)

func newTestLogger(t *testing.T) *CompletionLogger {
	t.Helper()
	logger, err := NewCompletionLogger(filepath.Join(t.TempDir(), "completions.db"))
	if err != nil {
		t.Fatalf("NewCompletionLogger failed: %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger
}

func TestRecordAndReview(t *testing.T) {
	logger := newTestLogger(t)
	ctx := observability.WithSessionID(context.Background(), "run-1")

	for _, line := range []string{"첫째", "둘째"} {
		err := logger.Record(ctx, actors.Generation{
			Speaker:  "토끼",
			Cue:      "cue",
			Prompt:   "prompt",
			Raw:      line,
			Cleaned:  "\"" + line + ".\"",
			Metadata: map[string]interface{}{"max_tokens": 150},
		})
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	logs, err := logger.GetRecentCompletions(10)
	if err != nil {
		t.Fatalf("GetRecentCompletions failed: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
	if logs[0].Raw != "둘째" || logs[1].Raw != "첫째" {
		t.Errorf("expected newest first, got %q then %q", logs[0].Raw, logs[1].Raw)
	}
	if logs[0].RunID != "run-1" || logs[0].Speaker != "토끼" {
		t.Errorf("unexpected row %+v", logs[0])
	}

	var meta map[string]interface{}
	if err := json.Unmarshal([]byte(logs[0].Metadata), &meta); err != nil || meta["max_tokens"] != float64(150) {
		t.Errorf("unexpected metadata %q (%v)", logs[0].Metadata, err)
	}
}

func TestRateCompletion(t *testing.T) {
	logger := newTestLogger(t)
	id, err := logger.LogCompletion("run", actors.Generation{Speaker: "거북이", Raw: "x", Cleaned: "\"x.\""})
	if err != nil {
		t.Fatal(err)
	}

	if err := logger.RateCompletion(int(id), 4, "존댓말 유지"); err != nil {
		t.Fatalf("RateCompletion failed: %v", err)
	}
	logs, _ := logger.GetRecentCompletions(1)
	if logs[0].Rating != 4 || logs[0].Notes != "존댓말 유지" {
		t.Errorf("rating not stored: %+v", logs[0])
	}

	if err := logger.RateCompletion(int(id), 9, ""); err == nil {
		t.Error("expected out-of-range rating to fail")
	}
	if err := logger.RateCompletion(9999, 3, ""); err == nil {
		t.Error("expected unknown id to fail")
	}
}
