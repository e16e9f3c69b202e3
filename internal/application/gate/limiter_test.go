package gate

import (
	"testing"
	"time"
)

func TestBucketCreatedFull(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := newBucketState(5, 1, now)
	if b.tokens != 5 {
		t.Fatalf("expected a full bucket, got %g", b.tokens)
	}
}

func TestBucketRefillProportionalToElapsed(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := newBucketState(10, 2, now)
	b.tokens = 0

	b.refill(now.Add(3 * time.Second))
	if b.tokens != 6 {
		t.Fatalf("expected 6 tokens after 3s at 2/s, got %g", b.tokens)
	}
}

func TestBucketRefillClamped(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := newBucketState(10, 2, now)
	b.tokens = 9

	b.refill(now.Add(time.Hour))
	if b.tokens != 10 {
		t.Fatalf("refill must clamp at capacity, got %g", b.tokens)
	}
}

func TestBucketConsumeClampedAtZero(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := newBucketState(10, 1, now)
	b.tokens = 0.5

	b.consume()
	if b.tokens != 0 {
		t.Fatalf("consume must clamp at zero, got %g", b.tokens)
	}
}
