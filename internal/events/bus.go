package events

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const publishTimeout = 2 * time.Second

// Bus numbers broadcasts, keeps them in a replay log and hands each one to
// every sink in registration order. A failing sink is logged and skipped.
type Bus struct {
	mu     sync.Mutex
	runID  string
	clock  clockwork.Clock
	log    *Log
	sinks  []Sink
	closed bool
}

func NewBus(runID string, clock clockwork.Clock, replay int) *Bus {
	return &Bus{
		runID: runID,
		clock: clock,
		log:   NewLog(replay),
	}
}

func (b *Bus) RunID() string {
	return b.runID
}

// AddSink registers s for all future events
func (b *Bus) AddSink(s Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks = append(b.sinks, s)
}

// Broadcast satisfies game.Broadcaster.
func (b *Bus) Broadcast(name string, data any) {
	b.Publish(name, data)
}

// Publish records and fans out one event, returning it with its sequence
// number. Publishing after Close is a no-op.
func (b *Bus) Publish(name string, data any) Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return Event{}
	}

	ev := b.log.Append(Event{
		RunID: b.runID,
		Name:  name,
		Data:  data,
		At:    b.clock.Now(),
	})

	for _, s := range b.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := s.Publish(ctx, ev); err != nil {
			log.Warn().Err(err).Str("event", ev.Name).Int64("seq", ev.Seq).Msg("sink publish failed")
		}
		cancel()
	}
	return ev
}

// Join runs attach while no event can be published, passing the retained
// events after seq. Registering a listener inside attach therefore sees
// every event exactly once: the backlog first, then live ones. attach must
// not call back into the bus.
func (b *Bus) Join(seq int64, attach func(backlog []Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	attach(b.log.After(seq))
}

// Recent returns retained events after seq
func (b *Bus) Recent(seq int64) []Event {
	return b.log.After(seq)
}

func (b *Bus) LastSeq() int64 {
	return b.log.LastSeq()
}

// Close stops publishing. Sinks are not closed; their owners do that.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}
