// Package backoff computes retry delays for the pool's retry policy.
package backoff

import (
	"math/rand"
	"sync"
	"time"
)

// maxShift prevents overflow in the exponential factor.
const maxShift = 62

// Kind selects the delay algorithm.
type Kind int

const (
	// Exponential doubles the delay on every attempt (default).
	Exponential Kind = iota
	// Jittered applies a random ±jitter factor to the exponential delay.
	Jittered
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Jittered:
		return "jittered"
	default:
		return "exponential"
	}
}

// Strategy yields the delay to wait before a retry.
// attempt is 0-indexed: 0 is the first retry after the initial failure.
type Strategy interface {
	NextDelay(attempt int) time.Duration
}

// New builds a Strategy for kind. Unknown kinds fall back to Exponential.
func New(kind Kind, initialDelay, maxDelay time.Duration, jitter float64) Strategy {
	if maxDelay <= 0 || maxDelay < initialDelay {
		maxDelay = initialDelay
	}

	switch kind {
	case Jittered:
		return &jittered{
			initialDelay: initialDelay,
			maxDelay:     maxDelay,
			jitter:       clamp(jitter, 0, 1),
			rng:          rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- jitter does not need crypto rand
		}
	default:
		return exponential{initialDelay: initialDelay, maxDelay: maxDelay}
	}
}

type exponential struct {
	initialDelay time.Duration
	maxDelay     time.Duration
}

func (e exponential) NextDelay(attempt int) time.Duration {
	return exponentialDelay(attempt, e.initialDelay, e.maxDelay)
}

// jittered spreads out retries of units that failed together so they do
// not hit a downstream service in lockstep.
type jittered struct {
	initialDelay time.Duration
	maxDelay     time.Duration
	jitter       float64

	mu  sync.Mutex
	rng *rand.Rand
}

func (j *jittered) NextDelay(attempt int) time.Duration {
	base := exponentialDelay(attempt, j.initialDelay, j.maxDelay)

	j.mu.Lock()
	factor := 1.0 + (j.rng.Float64()*2-1)*j.jitter
	j.mu.Unlock()

	return clamp(time.Duration(float64(base)*factor), 0, j.maxDelay)
}

func exponentialDelay(attempt int, initialDelay, maxDelay time.Duration) time.Duration {
	if attempt < 0 {
		return 0
	}
	if attempt > maxShift {
		return maxDelay
	}

	if initialDelay > maxDelay>>uint(attempt) {
		return maxDelay
	}
	return initialDelay << uint(attempt)
}

func clamp[T int | float64 | time.Duration](v, lo, hi T) T {
	return max(lo, min(v, hi))
}
