package game

// Phase is a stage of the story. Phases only ever move forward.
type Phase int

const (
	PhaseIntroduction Phase = iota
	PhaseDevelopment
	PhaseClimax
	PhaseResolution
)

var phaseNames = [...]string{
	PhaseIntroduction: "introduction",
	PhaseDevelopment:  "development",
	PhaseClimax:       "climax",
	PhaseResolution:   "resolution",
}

func (p Phase) String() string {
	if p < PhaseIntroduction || p > PhaseResolution {
		return "unknown"
	}
	return phaseNames[p]
}

// Next returns the successor phase. The second result is false for the final phase.
func (p Phase) Next() (Phase, bool) {
	if p >= PhaseResolution {
		return p, false
	}
	return p + 1, true
}

// StoryState is the controller's view of where the story is. It is not persisted.
type StoryState struct {
	Phase     Phase
	Location  string
	Situation string
}

func NewStoryState(location, situation string) StoryState {
	return StoryState{
		Phase:     PhaseIntroduction,
		Location:  location,
		Situation: situation,
	}
}

// Advance moves to the next phase and reports whether it did.
func (s *StoryState) Advance() bool {
	next, ok := s.Phase.Next()
	if ok {
		s.Phase = next
	}
	return ok
}
