package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HistoryBackend != BackendJSON || cfg.HistoryPath != "dialogue_history.json" {
		t.Errorf("unexpected history defaults %q %q", cfg.HistoryBackend, cfg.HistoryPath)
	}
	if cfg.ContextTurns != 3 || cfg.TokenBudget != 150 || cfg.MaxRetries != 0 {
		t.Errorf("unexpected generation defaults %+v", cfg)
	}
	if cfg.Tracing.ServiceName != "storysim" || cfg.Tracing.Enabled {
		t.Errorf("unexpected tracing defaults %+v", cfg.Tracing)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:8080/v1/")
	t.Setenv("STORY_ENGINE_MODE", "chat")
	t.Setenv("STORY_HISTORY_BACKEND", "sqlite")
	t.Setenv("STORY_HISTORY_PATH", "story.db")
	t.Setenv("STORY_MAX_ITERATIONS", "5")
	t.Setenv("STORY_MAX_RETRIES", "2")
	t.Setenv("DEBUG", "true")
	t.Setenv("OTEL_TRACES_ENABLED", "true")
	t.Setenv("LANGFUSE_PUBLIC_KEY", "pk")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIKey != "sk-test" || cfg.BaseURL != "http://localhost:8080/v1/" || cfg.Mode != "chat" {
		t.Errorf("engine settings not read: %+v", cfg)
	}
	if cfg.HistoryBackend != BackendSQLite || cfg.HistoryPath != "story.db" {
		t.Errorf("history settings not read: %+v", cfg)
	}
	if cfg.MaxIterations != 5 || cfg.MaxRetries != 2 || !cfg.Debug {
		t.Errorf("run settings not read: %+v", cfg)
	}
	if !cfg.Tracing.Enabled || cfg.Tracing.PublicKey != "pk" {
		t.Errorf("tracing settings not read: %+v", cfg.Tracing)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"STORY_ENGINE_MODE":     "stream",
		"STORY_HISTORY_BACKEND": "mongo",
		"STORY_CONTEXT_TURNS":   "0",
		"STORY_MAX_RETRIES":     "-1",
		"STORY_TOKEN_BUDGET":    "abc",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Errorf("expected %s=%s to be rejected", key, value)
			}
		})
	}
}
