package narration

import (
	"storysim/internal/game"
	"storysim/internal/game/actors"
	"storysim/internal/llm"
)

const NarratorName = "나레이션"

var NarratorPersona = actors.PersonaConfig{
	Name: NarratorName,
	PersonaPrompt: "당신은 토끼와 거북이 이야기의 나레이터입니다. " +
		"등장인물들의 대화와 행동을 관찰하고 상황을 자연스럽게 설명합니다. " +
		"항상 객관적이고 차분한 톤을 유지하며, 이야기의 흐름을 자연스럽게 이어갑니다.",
	Examples: []actors.Example{
		{Situation: "토끼가 거북이를 만난 후", Dialogue: "거북이는 토끼의 제안을 듣고 천천히 고개를 끄덕였습니다."},
		{Situation: "경주 중간 상황", Dialogue: "토끼는 자신의 빠른 속도를 과신한 나머지, 나무 그늘에서 휴식을 취하기로 했습니다."},
	},
}

// NewNarrator returns the narration-kind agent. It shares the persona pipeline and
// only differs in prompt layout and entry kind.
func NewNarrator(engine llm.Engine, history *game.History, opts ...actors.Option) *actors.Speaker {
	return actors.NewSpeaker(NarratorPersona, game.KindNarration, NarratorPrompt{}, engine, history, opts...)
}
