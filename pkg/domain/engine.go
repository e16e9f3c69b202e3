package domain

import (
	"context"
	"time"
)

// TaskFunc is the unit of work the engine runs. It must honor ctx
// cancellation; on attempt timeout the call is abandoned.
type TaskFunc func(ctx context.Context) (interface{}, error)

// EngineTask describes one retryable unit of work.
type EngineTask struct {
	ID         string
	Name       string
	Fn         TaskFunc
	Timeout    time.Duration // per attempt
	Retries    int           // additional attempts after the first
	RetryDelay time.Duration // linear backoff base
}

// EngineResult records the outcome of running a task.
type EngineResult struct {
	TaskID       string        `json:"task_id"`
	Name         string        `json:"name"`
	Success      bool          `json:"success"`
	Output       interface{}   `json:"output,omitempty"`
	Error        string        `json:"error,omitempty"`
	Attempts     int           `json:"attempts"`
	FuelConsumed int           `json:"fuel_consumed"` // execution credits, one per attempt
	Duration     time.Duration `json:"duration"`
	StartedAt    time.Time     `json:"started_at"`
	CompletedAt  time.Time     `json:"completed_at"`
}
