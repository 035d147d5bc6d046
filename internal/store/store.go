package store

import (
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

var ErrRunNotFound = errors.New("run not found")

// Store provides SQLite persistence for the game journal
type Store struct {
	db *sql.DB
}

// New opens the database at dbPath and applies pending migrations
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; ":memory:" databases are per connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Run is one process lifetime of the game
type Run struct {
	ID        string
	StartedAt time.Time
	EndsAt    time.Time
	EndedAt   *time.Time // nil while running or if the process stopped early
	Round     int        // last round reached
}

// ActionCount is the number of actions with a given outcome
type ActionCount struct {
	Action string `json:"action"`
	Status string `json:"status"`
	Count  int    `json:"count"`
}
