package gate

import (
	"time"

	"github.com/aescanero/awo/pkg/domain"
)

// breakerState is the mutable circuit breaker state for one
// (principal, action) key. Phase changes only through check,
// recordFailure and recordSuccess; callers hold the entry lock.
type breakerState struct {
	phase           domain.BreakerPhase
	failureCount    int
	lastFailureTime time.Time
	lastSuccessTime time.Time
	tripThreshold   int
	cooldown        time.Duration
}

func newBreakerState(tripThreshold int, cooldown time.Duration) *breakerState {
	return &breakerState{
		phase:         domain.BreakerClosed,
		tripThreshold: tripThreshold,
		cooldown:      cooldown,
	}
}

// check advances open to half-open once the cooldown has elapsed.
// There is no background timer; the transition happens lazily on the
// next call. Returns true when the request may proceed.
func (b *breakerState) check(now time.Time) bool {
	if b.phase != domain.BreakerOpen {
		return true
	}
	if now.Sub(b.lastFailureTime) >= b.cooldown {
		b.phase = domain.BreakerHalfOpen
		return true
	}
	return false
}

// recordFailure increments the cumulative counter and trips the
// breaker when it reaches the threshold. A failure while half-open
// does not re-open the breaker by itself; the counter must climb back
// to the threshold (observed behavior, kept deliberately).
func (b *breakerState) recordFailure(now time.Time) (tripped bool) {
	b.failureCount++
	b.lastFailureTime = now
	if b.failureCount >= b.tripThreshold {
		b.phase = domain.BreakerOpen
		b.failureCount = 0
		return true
	}
	return false
}

// recordSuccess closes the breaker and resets the counter.
func (b *breakerState) recordSuccess(now time.Time) {
	b.phase = domain.BreakerClosed
	b.failureCount = 0
	b.lastSuccessTime = now
}

func (b *breakerState) snapshot() domain.BreakerSnapshot {
	return domain.BreakerSnapshot{
		Phase:           b.phase,
		FailureCount:    b.failureCount,
		LastFailureTime: b.lastFailureTime,
		LastSuccessTime: b.lastSuccessTime,
		TripThreshold:   b.tripThreshold,
		Cooldown:        b.cooldown,
	}
}
