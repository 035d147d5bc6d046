package events

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Event is one broadcast, numbered within its run.
type Event struct {
	Seq   int64     `json:"seq"`
	RunID string    `json:"run_id"`
	Name  string    `json:"event"`
	Data  any       `json:"data,omitempty"`
	At    time.Time `json:"at"`
}

// Sink receives every event in sequence order.
type Sink interface {
	Publish(ctx context.Context, ev Event) error
}

var (
	ulidEntropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	ulidEntropyMu sync.Mutex
)

// NewRunID returns a new time-sortable run identifier.
func NewRunID() string {
	ulidEntropyMu.Lock()
	defer ulidEntropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}
