package narration

import (
	"fmt"
	"strings"

	"storysim/internal/game/actors"
)

var narratorRules = []string{
	"등장인물들의 대화를 바탕으로 상황을 자연스럽게 설명하세요.",
	"감정이나 분위기를 섬세하게 표현하세요.",
	"이야기의 흐름을 자연스럽게 이어가세요.",
	"한 문단으로 간결하게 설명하세요.",
	"객관적인 시점을 유지하세요.",
}

// NarratorPrompt is the narrator's prompt layout. It has no register rule and
// continues with the narration label instead of a dialogue cue.
type NarratorPrompt struct{}

func (NarratorPrompt) Build(cfg actors.PersonaConfig, recentContext, cue string) string {
	b := &strings.Builder{}
	b.WriteString("당신은 이야기의 나레이터입니다.")
	if cfg.PersonaPrompt != "" {
		b.WriteString(" ")
		b.WriteString(cfg.PersonaPrompt)
	}
	b.WriteString("\n다음 규칙을 반드시 따르세요:\n")
	for i, rule := range narratorRules {
		fmt.Fprintf(b, "%d. %s\n", i+1, rule)
	}
	b.WriteString("\n")

	if len(cfg.Examples) > 0 {
		b.WriteString("나레이션 예시:\n")
		b.WriteString(actors.FewShot(cfg.Examples))
		b.WriteString("\n\n")
	}

	actors.WriteTail(b, recentContext, cue, cfg.Name+": ")
	return b.String()
}

// SceneCue describes where the story is and what is going on there.
func SceneCue(location, situation string) string {
	return fmt.Sprintf("%s에서 %s의 모습", location, situation)
}
