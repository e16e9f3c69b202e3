package domain

import (
	"context"
	"time"
)

// Pattern is the workflow execution pattern.
type Pattern string

const (
	PatternPipeline Pattern = "pipeline"
	PatternFanOut   Pattern = "fan-out"
	PatternSaga     Pattern = "saga"
)

// StepStatus tracks a step through its lifecycle.
type StepStatus string

const (
	StepPending     StepStatus = "pending"
	StepRunning     StepStatus = "running"
	StepDone        StepStatus = "done"
	StepFailed      StepStatus = "failed"
	StepCompensated StepStatus = "compensated"
)

// StepFunc executes a step against its input and returns its output.
// Implementations must honor ctx cancellation; a timed-out step is
// abandoned, never force-terminated.
type StepFunc func(ctx context.Context, input interface{}) (interface{}, error)

// CompensateFunc undoes a completed step. It receives the same input
// the step was executed with.
type CompensateFunc func(ctx context.Context, input interface{}) error

// WorkflowStep is one caller-supplied unit of a workflow.
type WorkflowStep struct {
	ID         string
	Name       string
	Execute    StepFunc
	Compensate CompensateFunc // optional, saga only
	Timeout    time.Duration
}

// StepResult records what happened to one step.
type StepResult struct {
	StepID      string        `json:"step_id"`
	Name        string        `json:"name"`
	Status      StepStatus    `json:"status"`
	Output      interface{}   `json:"output,omitempty"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
}

// WorkflowResult is the immutable outcome of one workflow execution.
// The orchestrator seals it (deep copy) before returning, so callers
// can never reach back into orchestrator state.
type WorkflowResult struct {
	ID          string             `json:"id"`
	Pattern     Pattern            `json:"pattern"`
	Decision    *AdmissionDecision `json:"decision"`
	Steps       []StepResult       `json:"steps"`
	Output      interface{}        `json:"output,omitempty"`
	Success     bool               `json:"success"`
	StartedAt   time.Time          `json:"started_at"`
	CompletedAt time.Time          `json:"completed_at"`
	Duration    time.Duration      `json:"duration"`
}

// Clone returns a deep copy of the result. Steps are copied into a
// fresh slice; the decision is copied by value.
func (r *WorkflowResult) Clone() *WorkflowResult {
	out := *r
	if r.Decision != nil {
		decision := *r.Decision
		out.Decision = &decision
	}
	out.Steps = make([]StepResult, len(r.Steps))
	copy(out.Steps, r.Steps)
	return &out
}
