package director

import (
	"fmt"

	"storysim/internal/game"
)

// Transition is evaluated while the story is in From. When Guard fires the story
// advances and the two personas are handed FirstCue and SecondCue. A transition out
// of the last phase ends the story instead.
type Transition struct {
	From      game.Phase
	Guard     PhaseGuard
	FirstCue  string
	SecondCue string
}

// Script is the whole plot: setting, per-phase transitions and the fixed narration cues.
type Script struct {
	Location          string
	OpeningSituation  string
	PostTurnSituation string
	ClosingCue        string
	Transitions       []Transition
}

func DefaultScript() Script {
	return Script{
		Location:          "숲속",
		OpeningSituation:  "평화로운 오후",
		PostTurnSituation: "토끼와 거북이의 대화 이후",
		ClosingCue:        "이야기의 교훈과 마무리",
		Transitions: []Transition{
			{
				From:      game.PhaseIntroduction,
				Guard:     Always,
				FirstCue:  "거북이를 보고 경주를 제안하고 싶은 마음이 듭니다",
				SecondCue: "토끼의 갑작스러운 제안을 듣고 있습니다",
			},
			{
				From:      game.PhaseDevelopment,
				Guard:     KeywordGuard("경주"),
				FirstCue:  "경주가 시작되어 신나게 달리고 있습니다",
				SecondCue: "자신의 페이스로 천천히 전진합니다",
			},
			{
				From:      game.PhaseClimax,
				Guard:     KeywordGuard("앞서", "빠르"),
				FirstCue:  "너무 앞서가서 잠시 쉬고 싶은 마음이 듭니다",
				SecondCue: "묵묵히 전진하고 있습니다",
			},
			{
				From:  game.PhaseResolution,
				Guard: KeywordGuard("잠", "쉬"),
			},
		},
	}
}

func (s Script) transition(p game.Phase) (Transition, bool) {
	for _, t := range s.Transitions {
		if t.From == p {
			return t, true
		}
	}
	return Transition{}, false
}

// Validate checks that every phase has exactly one transition with a guard.
func (s Script) Validate() error {
	seen := make(map[game.Phase]bool)
	for _, t := range s.Transitions {
		if t.Guard == nil {
			return fmt.Errorf("transition from %s has no guard", t.From)
		}
		if seen[t.From] {
			return fmt.Errorf("duplicate transition from %s", t.From)
		}
		seen[t.From] = true
	}
	for p := game.PhaseIntroduction; p <= game.PhaseResolution; p++ {
		if !seen[p] {
			return fmt.Errorf("no transition from %s", p)
		}
	}
	return nil
}
