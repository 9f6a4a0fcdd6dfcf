// Package ratelimit guards the consumption ingest path with per-company
// token buckets. Buckets live in process memory; a multi-replica deployment
// would move them to a shared store.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"github.com/smallbiznis/cantina/internal/clock"
)

type bucket struct {
	tokens float64
	ts     time.Time
}

// TokenBucket is a keyed token bucket with continuous refill.
type TokenBucket struct {
	clock clock.Clock

	mu      sync.Mutex
	buckets map[string]*bucket
}

func NewTokenBucket(clk clock.Clock) *TokenBucket {
	return &TokenBucket{
		clock:   clk,
		buckets: make(map[string]*bucket),
	}
}

// Allow takes one token from the key's bucket, refilling at rate tokens per
// second up to burst.
func (t *TokenBucket) Allow(key string, rate float64, burst int) bool {
	if rate <= 0 || burst <= 0 {
		return true
	}

	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	b, ok := t.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(burst), ts: now}
		t.buckets[key] = b
	} else {
		delta := now.Sub(b.ts).Seconds()
		if delta < 0 {
			delta = 0
		}
		b.tokens = math.Min(float64(burst), b.tokens+delta*rate)
		b.ts = now
	}

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}
