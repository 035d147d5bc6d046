package store

import (
	"context"

	"stockgame/internal/actions"
)

// Compile-time check to ensure Store can audit actions
var _ actions.Recorder = (*Store)(nil)

// RecordAction appends one handled action to the audit log
func (s *Store) RecordAction(ctx context.Context, rec actions.Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO actions (run_id, session_id, action, stock, amount, status, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.SessionID, rec.Action, rec.Stock, rec.Amount, rec.Status, rec.Detail, rec.At.UTC(),
	)
	return err
}

// ActionSummary counts actions in runID by action and outcome
func (s *Store) ActionSummary(ctx context.Context, runID string) ([]ActionCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT action, status, COUNT(*) FROM actions
		WHERE run_id = ?
		GROUP BY action, status
		ORDER BY action, status`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ActionCount{}
	for rows.Next() {
		var c ActionCount
		if err := rows.Scan(&c.Action, &c.Status, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SessionActions returns how many actions a session made in runID
func (s *Store) SessionActions(ctx context.Context, runID, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM actions WHERE run_id = ? AND session_id = ?",
		runID, sessionID,
	).Scan(&n)
	return n, err
}
