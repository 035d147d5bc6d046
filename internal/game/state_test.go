package game

import "testing"

func TestNewState(t *testing.T) {
	s := NewState()
	if s.Round != 1 || s.Stage != FirstStage || !s.RoundChanged {
		t.Fatalf("unexpected initial state %+v", s)
	}
}

func TestAdvanceDoesNotMutateReceiver(t *testing.T) {
	s := NewState()
	_ = s.Advance()
	if s.Stage != FirstStage || s.Round != 1 {
		t.Fatalf("receiver changed: %+v", s)
	}
}

func TestRoundIncrementsOncePerCycle(t *testing.T) {
	s := NewState()
	for cycle := 0; cycle < 5; cycle++ {
		startRound := s.Round
		for i := 0; i < len(Stages()); i++ {
			prev := s
			s = s.Advance()

			wrapped := s.Stage == FirstStage
			if wrapped {
				if s.Round != prev.Round+1 {
					t.Fatalf("round = %d after wrap, want %d", s.Round, prev.Round+1)
				}
				if !s.RoundChanged {
					t.Fatal("RoundChanged false on wrap")
				}
			} else {
				if s.Round != prev.Round {
					t.Fatalf("round changed without wrap: %d -> %d", prev.Round, s.Round)
				}
				if s.RoundChanged {
					t.Fatal("RoundChanged true without wrap")
				}
			}
		}
		if s.Round != startRound+1 {
			t.Fatalf("cycle %d: round = %d, want %d", cycle, s.Round, startRound+1)
		}
	}
}

func TestAdvanceSequence(t *testing.T) {
	s := NewState()
	want := []State{
		{Round: 1, Stage: StageCalculation, RoundChanged: false},
		{Round: 2, Stage: StageTrading, RoundChanged: true},
		{Round: 2, Stage: StageCalculation, RoundChanged: false},
		{Round: 3, Stage: StageTrading, RoundChanged: true},
	}
	for i, w := range want {
		s = s.Advance()
		if s != w {
			t.Fatalf("step %d: got %+v, want %+v", i, s, w)
		}
	}
}
