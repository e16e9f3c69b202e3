// Package gate implements the admission gate: a circuit breaker, a
// token-bucket rate limiter and an ordered policy-rule evaluator fused
// into a single verdict per request.
//
// Evaluation order is fixed and short-circuiting:
//   - breaker (keyed by principal+action): CIRCUIT_OPEN while cooling
//   - limiter (keyed by principal): THROTTLE when no token available
//   - rules: first match wins, default deny
//
// A request denied by policy never consumes a token. Every decision is
// returned as a read-only value carrying a content hash of the request,
// a breaker snapshot and the remaining limiter tokens.
package gate
