package ports

import (
	"context"
	"time"

	"github.com/aescanero/awo/pkg/domain"
)

// Clock supplies time, unique identifiers and content hashing to the
// core. Production uses the system clock adapter; tests substitute a
// manual clock to drive breaker cooldowns and bucket refills.
type Clock interface {
	Now() time.Time
	NewID() string
	Hash(data []byte) string
}

// Event is a telemetry event published on the bus.
type Event struct {
	ID          string                 `json:"id"`
	Type        domain.EventType       `json:"type"`
	Timestamp   time.Time              `json:"timestamp"`
	ExecutionID string                 `json:"execution_id,omitempty"`
	Source      string                 `json:"source"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// EventHandler processes a single event delivered by a subscription.
type EventHandler func(ctx context.Context, event Event) error

// EventBus is the fire-and-forget telemetry sink. Publishing must
// never block workflow progress; callers ignore publish errors beyond
// logging them.
type EventBus interface {
	Publish(ctx context.Context, topic string, event Event) error
	Subscribe(ctx context.Context, topic string, handler EventHandler) error
	Close() error
}

// SummaryStore persists terminal workflow results. A store failure
// must never affect the result returned to the caller.
type SummaryStore interface {
	Put(ctx context.Context, result *domain.WorkflowResult) error
	Get(ctx context.Context, workflowID string) (*domain.WorkflowResult, error)
	List(ctx context.Context) ([]string, error)
}

// MetricsCollector records operational metrics for the gate, engine
// and orchestrator.
type MetricsCollector interface {
	RecordDecision(verdict domain.Verdict)
	RecordBreakerOpened()
	RecordWorkflow(pattern domain.Pattern, success bool, duration time.Duration)
	RecordStep(status domain.StepStatus, duration time.Duration)
	RecordEngineTask(success bool, attempts int, duration time.Duration)
	RecordEngineRejection()
	RecordCompensationFailure()
	SetEngineRunning(count int)
}

// LLMClient generates completions for prompt-backed workflow steps.
type LLMClient interface {
	GenerateCompletion(ctx context.Context, req *domain.LLMRequest) (*domain.LLMResponse, error)
}
