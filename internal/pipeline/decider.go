package pipeline

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Decider makes the probabilistic escalation choice.
type Decider interface {
	// Decide reports true with probability p.
	Decide(p float64) bool
}

// randDecider draws from a seeded PCG source. Safe for concurrent use.
type randDecider struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewDecider returns a Decider seeded with seed. A zero seed is replaced by
// the current time.
func NewDecider(seed int64) Decider {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &randDecider{rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1))}
}

func (d *randDecider) Decide(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rng.Float64() < p
}

// FixedDecider always returns its own value, regardless of probability.
type FixedDecider bool

func (f FixedDecider) Decide(float64) bool { return bool(f) }
