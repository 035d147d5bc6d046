package game

import (
	"fmt"
	"time"
)

// Stage is one phase of a round
type Stage int

const (
	StageTrading     Stage = iota // Players buy and sell
	StageCalculation              // Positions are scored
)

// stageOrder is the fixed cycle; its first element starts every round.
var stageOrder = [...]Stage{StageTrading, StageCalculation}

// FirstStage opens every round
const FirstStage = StageTrading

func (s Stage) String() string {
	switch s {
	case StageTrading:
		return "TRADING_STAGE"
	case StageCalculation:
		return "CALCULATION_STAGE"
	default:
		return "UNKNOWN"
	}
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Stage) UnmarshalText(b []byte) error {
	for _, st := range stageOrder {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown stage %q", b)
}

// Stages returns the cycle in order.
func Stages() []Stage {
	return stageOrder[:]
}

// NextStage returns the stage after s in the cycle, wrapping around.
func NextStage(s Stage) Stage {
	for i, st := range stageOrder {
		if st == s {
			return stageOrder[(i+1)%len(stageOrder)]
		}
	}
	// Not a valid stage; callers never pass one.
	return FirstStage
}

const (
	TradingDuration     = 300 * time.Second
	CalculationDuration = 60 * time.Second
	RunDuration         = 3 * time.Hour
)

// DefaultStageDurations returns how long each stage lasts in a real game.
func DefaultStageDurations() map[Stage]time.Duration {
	return map[Stage]time.Duration{
		StageTrading:     TradingDuration,
		StageCalculation: CalculationDuration,
	}
}
