package domain

import "errors"

// Sentinel errors for the engine and orchestrator. Admission outcomes
// (deny, throttle, circuit open) are never errors: they are carried as
// data inside AdmissionDecision and WorkflowResult.
var (
	// ErrEngineAtCapacity is returned when the engine is asked to run
	// a task while every slot is occupied. The engine never queues.
	ErrEngineAtCapacity = errors.New("engine at capacity")

	// ErrStepTimeout marks an attempt that exceeded its deadline. The
	// underlying call is abandoned, not terminated.
	ErrStepTimeout = errors.New("step timed out")

	// ErrSummaryNotFound is returned by summary stores for unknown
	// workflow IDs.
	ErrSummaryNotFound = errors.New("workflow summary not found")
)
