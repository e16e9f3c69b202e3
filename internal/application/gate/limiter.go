package gate

import (
	"time"

	"github.com/aescanero/awo/pkg/domain"
)

// bucketState is the token bucket for one principal. Buckets are
// created full and refilled proportionally to elapsed time on every
// touch; tokens stay within [0, capacity]. Callers hold the entry lock.
type bucketState struct {
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

func newBucketState(capacity, refillRate float64, now time.Time) *bucketState {
	return &bucketState{
		tokens:     capacity,
		capacity:   capacity,
		refillRate: refillRate,
		lastRefill: now,
	}
}

// refill credits tokens for the time elapsed since the last refill,
// clamped to capacity. Arbitrarily long idle periods never overflow.
func (b *bucketState) refill(now time.Time) {
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed > 0 {
		b.tokens = min(b.capacity, b.tokens+elapsed*b.refillRate)
	}
	b.lastRefill = now
}

// consume spends one token. The clamp keeps the invariant under
// concurrent evaluations that raced between refill and consumption.
func (b *bucketState) consume() {
	b.tokens = max(0, b.tokens-1)
}

func (b *bucketState) snapshot() domain.BucketSnapshot {
	return domain.BucketSnapshot{
		Tokens:     b.tokens,
		Capacity:   b.capacity,
		RefillRate: b.refillRate,
		LastRefill: b.lastRefill,
	}
}
