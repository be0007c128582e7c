package actors

import (
	"fmt"
	"strings"
)

// PromptBuilder assembles the full completion prompt for one turn.
type PromptBuilder interface {
	Build(cfg PersonaConfig, recentContext, cue string) string
}

// DefaultRules are the numbered constraints every persona prompt carries.
var DefaultRules = []string{
	"한 문장만 말하세요.",
	"한글만 사용하세요.",
	"다른 캐릭터를 언급하지 마세요.",
	"나레이션이나 지시문을 포함하지 마세요.",
	"감정을 직접적으로 표현하지 마세요.",
	"토끼는 '~야', '~지', '~네' 등의 반말을, 거북이는 '~입니다', '~습니다' 등의 존댓말을 사용하세요.",
}

// PersonaPrompt renders a speaking persona's prompt: system block, few-shot
// examples, recent context, the current cue and the continuation cue.
type PersonaPrompt struct {
	Rules []string
}

func (p PersonaPrompt) Build(cfg PersonaConfig, recentContext, cue string) string {
	rules := p.Rules
	if len(rules) == 0 {
		rules = DefaultRules
	}

	b := &strings.Builder{}
	fmt.Fprintf(b, "당신은 %s입니다. %s\n", cfg.Name, cfg.PersonaPrompt)
	b.WriteString("다음 규칙을 반드시 따르세요:\n")
	for i, rule := range rules {
		fmt.Fprintf(b, "%d. %s\n", i+1, rule)
	}
	b.WriteString("\n")

	if len(cfg.Examples) > 0 {
		b.WriteString("대화 예시:\n")
		b.WriteString(FewShot(cfg.Examples))
		b.WriteString("\n\n")
	}

	WriteTail(b, recentContext, cue, "다음 대사: ")
	return b.String()
}

// FewShot renders examples as "상황:/대사:" pairs separated by blank lines.
func FewShot(examples []Example) string {
	pairs := make([]string, 0, len(examples))
	for _, ex := range examples {
		pairs = append(pairs, fmt.Sprintf("상황: %s\n대사: %s", ex.Situation, ex.Dialogue))
	}
	return strings.Join(pairs, "\n\n")
}

// WriteTail appends the recent context, current situation and continuation cue
// shared by every prompt layout.
func WriteTail(b *strings.Builder, recentContext, cue, continuation string) {
	b.WriteString("최근 대화:\n")
	if recentContext != "" {
		b.WriteString(recentContext)
		b.WriteString("\n")
	}
	fmt.Fprintf(b, "\n현재 상황: %s\n", cue)
	b.WriteString(continuation)
}
