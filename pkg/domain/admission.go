package domain

import "time"

// Verdict is the outcome of an admission evaluation.
type Verdict string

const (
	VerdictAllow       Verdict = "ALLOW"
	VerdictDeny        Verdict = "DENY"
	VerdictThrottle    Verdict = "THROTTLE"
	VerdictCircuitOpen Verdict = "CIRCUIT_OPEN"
)

// GateCheck identifies which stage of the gate produced the verdict.
type GateCheck string

const (
	GateCheckBreaker GateCheck = "breaker"
	GateCheckLimiter GateCheck = "limiter"
	GateCheckRules   GateCheck = "rules"
)

// AdmissionContext carries per-request attributes used by rule
// conditions. Zero values mean "absent": a missing risk score is 0.
type AdmissionContext struct {
	MFAPassed bool              `json:"mfa_passed"`
	RiskScore float64           `json:"risk_score"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// AdmissionRequest describes one unit of work asking to be admitted.
// It is ephemeral; nothing in the gate retains it after evaluation.
type AdmissionRequest struct {
	PrincipalID string           `json:"principal_id"`
	Action      string           `json:"action"`
	Resource    string           `json:"resource"`
	Context     AdmissionContext `json:"context"`
}

// BreakerPhase is the circuit breaker state machine phase.
type BreakerPhase string

const (
	BreakerClosed   BreakerPhase = "closed"
	BreakerOpen     BreakerPhase = "open"
	BreakerHalfOpen BreakerPhase = "half-open"
)

// BreakerSnapshot is a point-in-time copy of one breaker's state,
// attached to decisions and returned by diagnostics.
type BreakerSnapshot struct {
	Phase           BreakerPhase  `json:"phase"`
	FailureCount    int           `json:"failure_count"`
	LastFailureTime time.Time     `json:"last_failure_time"`
	LastSuccessTime time.Time     `json:"last_success_time"`
	TripThreshold   int           `json:"trip_threshold"`
	Cooldown        time.Duration `json:"cooldown"`
}

// BucketSnapshot is a point-in-time copy of one token bucket.
type BucketSnapshot struct {
	Tokens     float64   `json:"tokens"`
	Capacity   float64   `json:"capacity"`
	RefillRate float64   `json:"refill_rate"`
	LastRefill time.Time `json:"last_refill"`
}

// AdmissionDecision is the immutable result of one gate evaluation.
// It is always returned as data, never as an error.
type AdmissionDecision struct {
	Verdict          Verdict         `json:"verdict"`
	Reason           string          `json:"reason"`
	RuleID           string          `json:"rule_id,omitempty"`
	DecidedAt        time.Time       `json:"decided_at"`
	RequestHash      string          `json:"request_hash"`
	GateResult       GateCheck       `json:"gate_result"`
	Breaker          BreakerSnapshot `json:"breaker"`
	LimiterRemaining float64         `json:"limiter_remaining"`
}

// Allowed reports whether the decision admits the request.
func (d *AdmissionDecision) Allowed() bool {
	return d.Verdict == VerdictAllow
}
