package debug

import (
	"bytes"
	"strings"
	"testing"
)

func TestDisabledLoggerOnlyWarns(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)

	logger.Printf("hidden %d", 1)
	logger.Println("hidden too")
	logger.Warn("guard missed", "phase", "climax")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug output leaked while disabled: %q", out)
	}
	if !strings.Contains(out, "guard missed") || !strings.Contains(out, "phase=climax") {
		t.Errorf("expected warning in output, got %q", out)
	}
}

func TestEnabledLoggerPrints(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, true)

	logger.Printf("speaker=%s", "토끼")
	if !strings.Contains(buf.String(), "speaker=토끼") {
		t.Errorf("expected debug line, got %q", buf.String())
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	logger.Printf("x")
	logger.Warn("x")
	if logger.IsEnabled() {
		t.Fatal("nil logger reported enabled")
	}
}
