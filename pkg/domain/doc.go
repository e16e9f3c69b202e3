// Package domain contains the core types shared across AWO:
// admission requests and decisions, policy rules, circuit breaker and
// token bucket state, workflow steps and results, and engine tasks.
//
// Types here are plain data. Behavior lives in the application
// packages (gate, engine, orchestrator).
package domain
