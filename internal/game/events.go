package game

import "time"

// Broadcast event names
const (
	EventStart       = "game:start"
	EventRound       = "game:round"
	EventEnd         = "game:end"
	eventStagePrefix = "game:stage:"
)

// StageEvent returns the broadcast name for entering s, e.g.
// "game:stage:TRADING_STAGE".
func StageEvent(s Stage) string {
	return eventStagePrefix + s.String()
}

// Broadcaster delivers an event to every listener. It must not block for
// long: the scheduler calls it from its own timer callback.
type Broadcaster interface {
	Broadcast(event string, data any)
}

// StartInfo is the game:start payload
type StartInfo struct {
	StartedAt time.Time `json:"started_at"`
	EndsAt    time.Time `json:"ends_at"`
}

// StageInfo is the game:stage:* payload
type StageInfo struct {
	Round       int       `json:"round"`
	Stage       Stage     `json:"stage"`
	DurationSec int       `json:"duration_sec"`
	EndsAt      time.Time `json:"ends_at"`
}

// EndInfo is the game:end payload
type EndInfo struct {
	Round   int       `json:"round"`
	EndedAt time.Time `json:"ended_at"`
}
