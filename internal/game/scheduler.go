package game

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"stockgame/internal/news"
)

// Scheduler drives the game clock. Each tick broadcasts the current stage
// (and the round's headlines when a round just started), then re-arms a
// one-shot timer for the stage's duration. Once the run time has elapsed the
// next tick broadcasts game:end and nothing further is scheduled.
type Scheduler struct {
	mu sync.RWMutex

	clock clockwork.Clock
	bus   Broadcaster
	news  news.Catalog

	// Configuration
	stageDurations map[Stage]time.Duration
	runDuration    time.Duration

	// State
	state       State
	startedAt   time.Time
	endsAt      time.Time
	stageEndsAt time.Time
	timer       clockwork.Timer
	started     bool
	ended       bool
	stopped     bool
	done        chan struct{}
	doneOnce    sync.Once

	// Callbacks
	onEnd func(Snapshot)
}

// SchedulerConfig configures stage timing and total run time
type SchedulerConfig struct {
	StageDurations map[Stage]time.Duration
	RunDuration    time.Duration
}

// DefaultSchedulerConfig returns the fixed game timings: 5 minute trading,
// 1 minute calculation, 3 hour run.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		StageDurations: DefaultStageDurations(),
		RunDuration:    RunDuration,
	}
}

// Snapshot is a read-only view of the scheduler
type Snapshot struct {
	State
	Started     bool      `json:"started"`
	Ended       bool      `json:"ended"`
	StartedAt   time.Time `json:"started_at"`
	EndsAt      time.Time `json:"ends_at"`
	StageEndsAt time.Time `json:"stage_ends_at"`
}

// NewScheduler creates a scheduler in its initial state. Nothing runs until
// Start.
func NewScheduler(clock clockwork.Clock, bus Broadcaster, catalog news.Catalog, config SchedulerConfig) *Scheduler {
	durations := DefaultStageDurations()
	for st, d := range config.StageDurations {
		durations[st] = d
	}
	run := config.RunDuration
	if run <= 0 {
		run = RunDuration
	}
	return &Scheduler{
		clock:          clock,
		bus:            bus,
		news:           catalog,
		stageDurations: durations,
		runDuration:    run,
		state:          NewState(),
		done:           make(chan struct{}),
	}
}

// Start broadcasts game:start and runs the first tick. The end time is fixed
// here, once. Calling Start again is a no-op.
func (s *Scheduler) Start() Snapshot {
	s.mu.Lock()
	if s.started || s.stopped {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}
	s.started = true
	s.startedAt = s.clock.Now()
	s.endsAt = s.startedAt.Add(s.runDuration)
	info := StartInfo{StartedAt: s.startedAt, EndsAt: s.endsAt}
	s.mu.Unlock()

	log.Info().Time("ends_at", info.EndsAt).Msg("game started")
	s.bus.Broadcast(EventStart, info)
	s.tick()

	return s.Snapshot()
}

// tick runs one broadcast-and-reschedule step. Ticks never overlap: the
// next one is only armed after this one's broadcasts return.
func (s *Scheduler) tick() {
	s.mu.Lock()
	if s.stopped || s.ended {
		s.mu.Unlock()
		return
	}
	now := s.clock.Now()
	if now.After(s.endsAt) {
		s.ended = true
		snap := s.snapshotLocked()
		onEnd := s.onEnd
		s.mu.Unlock()

		log.Info().Int("round", snap.Round).Msg("game ended")
		s.bus.Broadcast(EventEnd, EndInfo{Round: snap.Round, EndedAt: now})
		s.finish()
		if onEnd != nil {
			onEnd(snap)
		}
		return
	}

	state := s.state
	d := s.stageDurations[state.Stage]
	s.stageEndsAt = now.Add(d)
	info := StageInfo{
		Round:       state.Round,
		Stage:       state.Stage,
		DurationSec: int(d / time.Second),
		EndsAt:      s.stageEndsAt,
	}
	s.mu.Unlock()

	log.Debug().Int("round", state.Round).Stringer("stage", state.Stage).Msg("stage")
	s.bus.Broadcast(StageEvent(state.Stage), info)
	if state.RoundChanged {
		log.Info().Int("round", state.Round).Msg("round started")
		s.bus.Broadcast(EventRound, s.news.Headlines())
	}

	s.mu.Lock()
	if !s.stopped {
		s.timer = s.clock.AfterFunc(d, s.advance)
	}
	s.mu.Unlock()
}

// advance is the timer callback: move to the next stage, then tick.
func (s *Scheduler) advance() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.state = s.state.Advance()
	s.mu.Unlock()

	s.tick()
}

// Stop cancels any pending tick without broadcasting game:end. It exists for
// process shutdown; a stopped scheduler cannot be restarted.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	s.finish()
}

func (s *Scheduler) finish() {
	s.doneOnce.Do(func() { close(s.done) })
}

// Done is closed once the game has ended or the scheduler was stopped.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// Snapshot returns the current state
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Scheduler) snapshotLocked() Snapshot {
	return Snapshot{
		State:       s.state,
		Started:     s.started,
		Ended:       s.ended,
		StartedAt:   s.startedAt,
		EndsAt:      s.endsAt,
		StageEndsAt: s.stageEndsAt,
	}
}

// OnEnd sets the callback run after game:end has been broadcast
func (s *Scheduler) OnEnd(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEnd = fn
}
