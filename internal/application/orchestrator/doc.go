// Package orchestrator executes caller-supplied step lists as a
// sequential pipeline, a concurrent fan-out, or a saga with
// compensating rollback.
//
// Every workflow is gated by a single admission check at entry; a
// non-ALLOW verdict returns immediately with no step run. Step
// failures never escape as errors: a failed workflow always yields a
// complete, inspectable result. Only malformed step lists return a
// synchronous error.
package orchestrator
