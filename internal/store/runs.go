package store

import (
	"context"
	"database/sql"
	"time"
)

// CreateRun records the start of a run
func (s *Store) CreateRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, started_at, ends_at, round) VALUES (?, ?, ?, ?)",
		run.ID, run.StartedAt.UTC(), run.EndsAt.UTC(), run.Round,
	)
	return err
}

// FinishRun marks a run as ended at endedAt having reached round
func (s *Store) FinishRun(ctx context.Context, id string, endedAt time.Time, round int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE runs SET ended_at = ?, round = ? WHERE id = ?",
		endedAt.UTC(), round, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return nil
}

// GetRun retrieves a run by ID
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	run := &Run{}
	var endedAt sql.NullTime
	err := s.db.QueryRowContext(ctx,
		"SELECT id, started_at, ends_at, ended_at, round FROM runs WHERE id = ?",
		id,
	).Scan(&run.ID, &run.StartedAt, &run.EndsAt, &endedAt, &run.Round)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	if endedAt.Valid {
		t := endedAt.Time
		run.EndedAt = &t
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, started_at, ends_at, ended_at, round FROM runs ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var endedAt sql.NullTime
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.EndsAt, &endedAt, &run.Round); err != nil {
			return nil, err
		}
		if endedAt.Valid {
			t := endedAt.Time
			run.EndedAt = &t
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
