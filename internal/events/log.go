package events

import "sync"

// Log keeps the most recent events of a run for replay to late joiners.
type Log struct {
	mu     sync.Mutex
	nextID int64
	max    int
	events []Event
}

func NewLog(max int) *Log {
	if max <= 0 {
		max = 256
	}
	return &Log{max: max}
}

// Append numbers ev and retains it, evicting the oldest event when full.
func (l *Log) Append(ev Event) Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	ev.Seq = l.nextID
	l.events = append(l.events, ev)
	if len(l.events) > l.max {
		l.events = l.events[len(l.events)-l.max:]
	}
	return ev
}

// After returns retained events with Seq greater than seq, oldest first.
func (l *Log) After(seq int64) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, 0, len(l.events))
	for _, ev := range l.events {
		if ev.Seq > seq {
			out = append(out, ev)
		}
	}
	return out
}

// LastSeq returns the sequence number of the newest event, 0 if none.
func (l *Log) LastSeq() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nextID
}
