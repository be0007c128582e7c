package actors

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storysim/internal/game"
	"storysim/internal/llm"
)

type memStore struct {
	entries []game.DialogueEntry
	err     error
}

func (m *memStore) Load() ([]game.DialogueEntry, error) { return m.entries, nil }

func (m *memStore) Save(entries []game.DialogueEntry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append([]game.DialogueEntry{}, entries...)
	return nil
}

type scriptedEngine struct {
	replies   []string
	prompts   []string
	maxTokens []int
	err       error
}

func (e *scriptedEngine) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	e.prompts = append(e.prompts, prompt)
	e.maxTokens = append(e.maxTokens, maxTokens)
	if e.err != nil {
		return "", e.err
	}
	reply := e.replies[0]
	if len(e.replies) > 1 {
		e.replies = e.replies[1:]
	}
	return reply, nil
}

type captureRecorder struct {
	gens []Generation
}

func (c *captureRecorder) Record(ctx context.Context, gen Generation) error {
	c.gens = append(c.gens, gen)
	return nil
}

func newHistory(t *testing.T, store game.Persistence) *game.History {
	t.Helper()
	h, err := game.NewHistory(store)
	if err != nil {
		t.Fatalf("NewHistory failed: %v", err)
	}
	return h
}

func TestPersonaPromptLayout(t *testing.T) {
	prompt := PersonaPrompt{}.Build(RabbitPersona, "나레이션 한 줄\n거북이: \"안녕하세요.\"", "경주를 제안합니다")

	for _, want := range []string{
		"당신은 토끼입니다. 당신은 자신감 넘치고 빠른 토끼입니다.",
		"다음 규칙을 반드시 따르세요:\n1. 한 문장만 말하세요.\n",
		"6. 토끼는 '~야', '~지', '~네' 등의 반말을",
		"대화 예시:\n상황: 거북이를 처음 만난 상황\n대사: 거북이야, 너 정말 느리게 걷는구나! 나랑 한번 경주해볼래?\n\n상황: 자신의 빠른 속도를 자랑하는 상황",
		"최근 대화:\n나레이션 한 줄\n거북이: \"안녕하세요.\"\n",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q\n%s", want, prompt)
		}
	}
	if !strings.HasSuffix(prompt, "현재 상황: 경주를 제안합니다\n다음 대사: ") {
		t.Errorf("prompt does not end with the continuation cue:\n%s", prompt)
	}
}

func TestPersonaPromptCustomRules(t *testing.T) {
	prompt := PersonaPrompt{Rules: []string{"짧게 말하세요."}}.Build(TurtlePersona, "", "cue")
	if !strings.Contains(prompt, "1. 짧게 말하세요.\n") || strings.Contains(prompt, "2. ") {
		t.Errorf("custom rules not applied:\n%s", prompt)
	}
}

func TestSpeakAppendsCleanedLine(t *testing.T) {
	store := &memStore{entries: []game.DialogueEntry{
		{Speaker: "나레이션", Text: "\"숲속은 고요했습니다.\"", Kind: game.KindNarration},
	}}
	history := newHistory(t, store)
	engine := &scriptedEngine{replies: []string{"  토끼: 거북이야, 경주하자!  "}}
	recorder := &captureRecorder{}

	rabbit := NewPersonaAgent(RabbitPersona, engine, history, WithRecorder(recorder))
	entry, err := rabbit.Speak(context.Background(), "거북이를 보고 경주를 제안하고 싶은 마음이 듭니다", 0)
	if err != nil {
		t.Fatalf("Speak failed: %v", err)
	}

	want := game.DialogueEntry{Speaker: "토끼", Text: "\"거북이야, 경주하자!\"", Kind: game.KindDialogue}
	if entry != want {
		t.Errorf("expected %+v, got %+v", want, entry)
	}
	if history.Len() != 2 || store.entries[1] != want {
		t.Errorf("line was not persisted: %+v", store.entries)
	}
	if engine.maxTokens[0] != DefaultTokenBudget {
		t.Errorf("expected default budget %d, got %d", DefaultTokenBudget, engine.maxTokens[0])
	}
	if !strings.Contains(engine.prompts[0], "최근 대화:\n\"숲속은 고요했습니다.\"\n") {
		t.Errorf("prompt missing recent context:\n%s", engine.prompts[0])
	}

	if len(recorder.gens) != 1 {
		t.Fatalf("expected one recorded generation, got %d", len(recorder.gens))
	}
	gen := recorder.gens[0]
	if gen.Raw != "토끼: 거북이야, 경주하자!" || gen.Cleaned != want.Text || gen.Speaker != "토끼" {
		t.Errorf("unexpected generation %+v", gen)
	}
}

func TestSpeakUsesContextWindow(t *testing.T) {
	store := &memStore{}
	for _, text := range []string{"하나", "둘", "셋", "넷"} {
		store.entries = append(store.entries, game.DialogueEntry{Speaker: "나레이션", Text: text, Kind: game.KindNarration})
	}
	engine := &scriptedEngine{replies: []string{"네."}}
	turtle := NewPersonaAgent(TurtlePersona, engine, newHistory(t, store))

	if _, err := turtle.Speak(context.Background(), "cue", 20); err != nil {
		t.Fatalf("Speak failed: %v", err)
	}
	if strings.Contains(engine.prompts[0], "하나") {
		t.Errorf("entry outside the window leaked into the prompt")
	}
	if !strings.Contains(engine.prompts[0], "둘\n셋\n넷\n") {
		t.Errorf("expected the last three entries in the prompt:\n%s", engine.prompts[0])
	}
	if engine.maxTokens[0] != 20 {
		t.Errorf("expected budget 20, got %d", engine.maxTokens[0])
	}
}

func TestSpeakEngineFailureLeavesHistory(t *testing.T) {
	history := newHistory(t, &memStore{})
	engine := &scriptedEngine{err: &llm.GenerationError{Model: "m", Err: errors.New("offline")}}

	_, err := NewPersonaAgent(RabbitPersona, engine, history).Speak(context.Background(), "cue", 0)
	var genErr *llm.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if history.Len() != 0 {
		t.Errorf("history changed after a failed generation")
	}
}

func TestSpeakStorageFailure(t *testing.T) {
	store := &memStore{err: &game.StorageError{Op: "write", Path: "x.json", Err: errors.New("disk full")}}
	engine := &scriptedEngine{replies: []string{"좋아요."}}

	_, err := NewPersonaAgent(TurtlePersona, engine, newHistory(t, store)).Speak(context.Background(), "cue", 0)
	var storageErr *game.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
}

func TestSpeakDegenerateLineStillAppends(t *testing.T) {
	history := newHistory(t, &memStore{})
	engine := &scriptedEngine{replies: []string{"12345 ###"}}

	entry, err := NewPersonaAgent(RabbitPersona, engine, history).Speak(context.Background(), "cue", 0)
	if err != nil {
		t.Fatalf("Speak failed: %v", err)
	}
	if entry.Text != "\".\"" {
		t.Errorf("expected degenerate line, got %q", entry.Text)
	}
	if history.Len() != 1 {
		t.Errorf("degenerate line was not appended")
	}
}

func TestLoadCast(t *testing.T) {
	cast, err := LoadCast("")
	if err != nil || cast.First.Name != "토끼" || cast.Second.Name != "거북이" {
		t.Fatalf("expected default cast, got %+v (%v)", cast, err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "cast.yaml")
	data := `first:
  name: 여우
  persona_prompt: 당신은 꾀 많은 여우입니다.
  examples:
    - situation: 두루미를 초대한 상황
      dialogue: 어서 와, 맛있는 수프를 준비했어!
second:
  name: 두루미
  persona_prompt: 당신은 점잖은 두루미입니다.
rules:
  - 한 문장만 말하세요.
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cast, err = LoadCast(path)
	if err != nil {
		t.Fatalf("LoadCast failed: %v", err)
	}
	if cast.First.Name != "여우" || len(cast.First.Examples) != 1 || cast.First.Examples[0].Dialogue != "어서 와, 맛있는 수프를 준비했어!" {
		t.Errorf("unexpected first persona %+v", cast.First)
	}
	if cast.Second.Name != "두루미" || len(cast.Rules) != 1 {
		t.Errorf("unexpected cast %+v", cast)
	}
}

func TestLoadCastRejectsIncompletePersona(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cast.yaml")
	os.WriteFile(path, []byte("first:\n  name: 여우\nsecond:\n  name: 두루미\n  persona_prompt: x\n"), 0644)

	if _, err := LoadCast(path); err == nil {
		t.Fatal("expected error for persona without prompt")
	}
}
