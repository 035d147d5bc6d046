package game

// State is the round/stage position of a game.
type State struct {
	Round        int   `json:"round"`
	Stage        Stage `json:"stage"`
	RoundChanged bool  `json:"round_changed"`
}

// NewState returns the state a game starts in: round 1, first stage, with
// the round flagged as new so its headlines go out on the first tick.
func NewState() State {
	return State{
		Round:        1,
		Stage:        FirstStage,
		RoundChanged: true,
	}
}

// Advance moves to the next stage. The round number increases, and
// RoundChanged is set, only when the cycle wraps back to FirstStage.
func (s State) Advance() State {
	next := State{
		Round:        s.Round,
		Stage:        NextStage(s.Stage),
		RoundChanged: false,
	}
	if next.Stage == FirstStage {
		next.Round++
		next.RoundChanged = true
	}
	return next
}
