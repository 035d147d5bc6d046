package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stockgame/internal/events"
)

// Compile-time check to ensure Store can sit on the event bus
var _ events.Sink = (*Store)(nil)

// Publish appends ev to the journal
func (s *Store) Publish(ctx context.Context, ev events.Event) error {
	var data []byte
	if ev.Data != nil {
		var err error
		data, err = json.Marshal(ev.Data)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", ev.Name, err)
		}
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (run_id, seq, name, data, emitted_at) VALUES (?, ?, ?, ?, ?)",
		ev.RunID, ev.Seq, ev.Name, string(data), ev.At.UTC(),
	)
	return err
}

// EventsAfter returns up to limit journaled events of runID with seq > after,
// oldest first. Payloads come back as raw JSON.
func (s *Store) EventsAfter(ctx context.Context, runID string, after int64, limit int) ([]events.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT run_id, seq, name, data, emitted_at FROM events WHERE run_id = ? AND seq > ? ORDER BY seq LIMIT ?",
		runID, after, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []events.Event{}
	for rows.Next() {
		var (
			ev   events.Event
			data string
			at   time.Time
		)
		if err := rows.Scan(&ev.RunID, &ev.Seq, &ev.Name, &data, &at); err != nil {
			return nil, err
		}
		ev.At = at
		if data != "" {
			ev.Data = json.RawMessage(data)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// CountEvents returns how many times name was journaled in runID
func (s *Store) CountEvents(ctx context.Context, runID, name string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM events WHERE run_id = ? AND name = ?",
		runID, name,
	).Scan(&n)
	return n, err
}
