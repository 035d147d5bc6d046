package actions

import (
	"math/rand"
	"sync"
)

// Dice is the source of randomness behind simulated outcomes. Tests inject a
// fixed implementation.
type Dice interface {
	// Roll returns a value uniformly drawn from [0, 10).
	Roll() float64
	// Intn returns a value uniformly drawn from [0, n).
	Intn(n int) int
}

type randDice struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewDice returns a goroutine-safe Dice seeded with seed.
func NewDice(seed int64) Dice {
	return &randDice{rng: rand.New(rand.NewSource(seed))}
}

func (d *randDice) Roll() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rng.Float64() * 10
}

func (d *randDice) Intn(n int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rng.Intn(n)
}

// fails reports whether a fresh roll lands under threshold (out of 10).
func fails(d Dice, threshold float64) bool {
	return d.Roll() < threshold
}
