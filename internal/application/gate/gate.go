package gate

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aescanero/awo/pkg/domain"
	"github.com/aescanero/awo/pkg/ports"
	"go.uber.org/zap"
)

// Config holds the gate thresholds.
type Config struct {
	TripThreshold  int           // cumulative failures before the breaker opens
	Cooldown       time.Duration // open -> half-open delay
	BucketCapacity float64       // tokens per principal
	RefillRate     float64       // tokens per second
}

// Gate fuses the circuit breaker, token-bucket limiter and policy
// rules into one verdict per request. It is safe for concurrent use.
type Gate struct {
	cfg     Config
	clock   ports.Clock
	bus     ports.EventBus
	metrics ports.MetricsCollector
	logger  *zap.Logger

	rulesMu sync.RWMutex
	rules   []compiledRule

	breakers *keyedStore[*breakerState]
	buckets  *keyedStore[*bucketState]
}

// New creates a gate with the given rule set. Rules are compiled and
// sorted once here; ReplaceRules swaps in a new compiled set.
func New(
	cfg Config,
	rules []domain.PolicyRule,
	clock ports.Clock,
	bus ports.EventBus,
	metrics ports.MetricsCollector,
	logger *zap.Logger,
) *Gate {
	return &Gate{
		cfg:      cfg,
		clock:    clock,
		bus:      bus,
		metrics:  metrics,
		logger:   logger,
		rules:    compileRules(rules),
		breakers: newKeyedStore[*breakerState](),
		buckets:  newKeyedStore[*bucketState](),
	}
}

// ReplaceRules atomically swaps the rule set. In-flight evaluations
// keep the snapshot they started with.
func (g *Gate) ReplaceRules(rules []domain.PolicyRule) {
	compiled := compileRules(rules)
	g.rulesMu.Lock()
	g.rules = compiled
	g.rulesMu.Unlock()
}

// Rules returns the active rule set in evaluation order.
func (g *Gate) Rules() []domain.PolicyRule {
	g.rulesMu.RLock()
	defer g.rulesMu.RUnlock()
	out := make([]domain.PolicyRule, len(g.rules))
	for i, cr := range g.rules {
		out[i] = cr.rule
	}
	return out
}

// Evaluate runs the breaker, limiter and rule checks in that fixed
// order, each short-circuiting the rest, and returns an immutable
// decision. It never returns an error; all outcomes are data.
func (g *Gate) Evaluate(ctx context.Context, req *domain.AdmissionRequest) *domain.AdmissionDecision {
	now := g.clock.Now()
	hash := g.clock.Hash(canonicalize(req))
	breakerKey := req.PrincipalID + "|" + req.Action

	// Breaker first. While open and cooling down the limiter and rules
	// are never touched and no token is spent.
	var proceed bool
	var breakerSnap domain.BreakerSnapshot
	g.breakers.update(breakerKey, g.newBreaker, func(b *breakerState) {
		proceed = b.check(now)
		breakerSnap = b.snapshot()
	})
	if !proceed {
		return g.decided(ctx, req, &domain.AdmissionDecision{
			Verdict:          domain.VerdictCircuitOpen,
			Reason:           fmt.Sprintf("circuit open for %s; cooling down", breakerKey),
			DecidedAt:        now,
			RequestHash:      hash,
			GateResult:       domain.GateCheckBreaker,
			Breaker:          breakerSnap,
			LimiterRemaining: g.peekTokens(req.PrincipalID),
		})
	}

	// Limiter second. The bucket is refilled on every pass, but the
	// token is not consumed yet: a request the rules will deny must
	// not spend one.
	var remaining float64
	var throttled bool
	g.buckets.update(req.PrincipalID, g.newBucketAt(now), func(b *bucketState) {
		b.refill(now)
		remaining = b.tokens
		throttled = b.tokens < 1
	})
	if throttled {
		return g.decided(ctx, req, &domain.AdmissionDecision{
			Verdict:          domain.VerdictThrottle,
			Reason:           fmt.Sprintf("rate limit exceeded for %s", req.PrincipalID),
			DecidedAt:        now,
			RequestHash:      hash,
			GateResult:       domain.GateCheckLimiter,
			Breaker:          breakerSnap,
			LimiterRemaining: remaining,
		})
	}

	// Rules last, against a stable snapshot of the active set.
	g.rulesMu.RLock()
	rules := g.rules
	g.rulesMu.RUnlock()

	for i := range rules {
		if !rules[i].matches(req) {
			continue
		}
		rule := rules[i].rule
		if rule.Effect == domain.EffectAllow {
			g.buckets.update(req.PrincipalID, g.newBucketAt(now), func(b *bucketState) {
				b.consume()
				remaining = b.tokens
			})
			g.breakers.update(breakerKey, g.newBreaker, func(b *breakerState) {
				b.recordSuccess(now)
				breakerSnap = b.snapshot()
			})
			return g.decided(ctx, req, &domain.AdmissionDecision{
				Verdict:          domain.VerdictAllow,
				Reason:           fmt.Sprintf("matched allow rule %s", rule.ID),
				RuleID:           rule.ID,
				DecidedAt:        now,
				RequestHash:      hash,
				GateResult:       domain.GateCheckRules,
				Breaker:          breakerSnap,
				LimiterRemaining: remaining,
			})
		}
		return g.deny(ctx, req, now, hash, breakerKey,
			fmt.Sprintf("matched deny rule %s", rule.ID), rule.ID, remaining)
	}

	// Default posture: deny.
	return g.deny(ctx, req, now, hash, breakerKey, "no matching rule", "", remaining)
}

// deny records a breaker failure for the key and builds the decision.
func (g *Gate) deny(
	ctx context.Context,
	req *domain.AdmissionRequest,
	now time.Time,
	hash, breakerKey, reason, ruleID string,
	remaining float64,
) *domain.AdmissionDecision {
	var breakerSnap domain.BreakerSnapshot
	var tripped bool
	g.breakers.update(breakerKey, g.newBreaker, func(b *breakerState) {
		tripped = b.recordFailure(now)
		breakerSnap = b.snapshot()
	})
	if tripped {
		g.metrics.RecordBreakerOpened()
		g.logger.Warn("circuit breaker opened",
			zap.String("key", breakerKey),
			zap.Duration("cooldown", g.cfg.Cooldown))
		g.emit(ctx, ports.Event{
			ID:        g.clock.NewID(),
			Type:      domain.EventTypeBreakerOpened,
			Timestamp: now,
			Source:    "gate",
			Data: map[string]interface{}{
				"key":      breakerKey,
				"cooldown": g.cfg.Cooldown.String(),
			},
		})
	}
	return g.decided(ctx, req, &domain.AdmissionDecision{
		Verdict:          domain.VerdictDeny,
		Reason:           reason,
		RuleID:           ruleID,
		DecidedAt:        now,
		RequestHash:      hash,
		GateResult:       domain.GateCheckRules,
		Breaker:          breakerSnap,
		LimiterRemaining: remaining,
	})
}

// decided records metrics and telemetry for the final decision.
func (g *Gate) decided(ctx context.Context, req *domain.AdmissionRequest, d *domain.AdmissionDecision) *domain.AdmissionDecision {
	g.metrics.RecordDecision(d.Verdict)
	g.logger.Debug("admission decision",
		zap.String("principal_id", req.PrincipalID),
		zap.String("action", req.Action),
		zap.String("verdict", string(d.Verdict)),
		zap.String("reason", d.Reason),
		zap.String("request_hash", d.RequestHash))
	g.emit(ctx, ports.Event{
		ID:        g.clock.NewID(),
		Type:      domain.EventTypeDecisionRendered,
		Timestamp: d.DecidedAt,
		Source:    "gate",
		Data: map[string]interface{}{
			"principal_id": req.PrincipalID,
			"action":       req.Action,
			"resource":     req.Resource,
			"verdict":      string(d.Verdict),
			"reason":       d.Reason,
			"request_hash": d.RequestHash,
		},
	})
	return d
}

// emit publishes telemetry fire-and-forget; a slow or failing sink
// must never block or fail an evaluation.
func (g *Gate) emit(ctx context.Context, event ports.Event) {
	go func() {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := g.bus.Publish(pubCtx, domain.TopicAdmission, event); err != nil {
			g.logger.Warn("failed to publish gate event",
				zap.String("type", string(event.Type)),
				zap.Error(err))
		}
	}()
}

// BreakerStates returns a deep copy of every breaker keyed by
// principal|action. Mutating the copies has no effect on the gate.
func (g *Gate) BreakerStates() map[string]domain.BreakerSnapshot {
	out := make(map[string]domain.BreakerSnapshot)
	g.breakers.each(func(key string, b *breakerState) {
		out[key] = b.snapshot()
	})
	return out
}

// LimiterStates returns a deep copy of every token bucket keyed by
// principal.
func (g *Gate) LimiterStates() map[string]domain.BucketSnapshot {
	out := make(map[string]domain.BucketSnapshot)
	g.buckets.each(func(key string, b *bucketState) {
		out[key] = b.snapshot()
	})
	return out
}

func (g *Gate) newBreaker() *breakerState {
	return newBreakerState(g.cfg.TripThreshold, g.cfg.Cooldown)
}

func (g *Gate) newBucketAt(now time.Time) func() *bucketState {
	return func() *bucketState {
		return newBucketState(g.cfg.BucketCapacity, g.cfg.RefillRate, now)
	}
}

// peekTokens reads a bucket's level without refilling or creating it.
// A principal with no bucket yet has a full one.
func (g *Gate) peekTokens(principalID string) float64 {
	tokens := g.cfg.BucketCapacity
	g.buckets.each(func(key string, b *bucketState) {
		if key == principalID {
			tokens = b.tokens
		}
	})
	return tokens
}

// canonicalize builds a stable byte representation of the request for
// content hashing, used to correlate decisions in audit trails.
func canonicalize(req *domain.AdmissionRequest) []byte {
	var sb strings.Builder
	sb.WriteString(req.PrincipalID)
	sb.WriteByte('\n')
	sb.WriteString(req.Action)
	sb.WriteByte('\n')
	sb.WriteString(req.Resource)
	sb.WriteByte('\n')
	sb.WriteString(strconv.FormatBool(req.Context.MFAPassed))
	sb.WriteByte('\n')
	sb.WriteString(strconv.FormatFloat(req.Context.RiskScore, 'g', -1, 64))
	if len(req.Context.Metadata) > 0 {
		keys := make([]string, 0, len(req.Context.Metadata))
		for k := range req.Context.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteByte('\n')
			sb.WriteString(k)
			sb.WriteByte('=')
			sb.WriteString(req.Context.Metadata[k])
		}
	}
	return []byte(sb.String())
}
