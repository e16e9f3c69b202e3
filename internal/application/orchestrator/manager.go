package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/aescanero/awo/internal/application/engine"
	"github.com/aescanero/awo/internal/application/gate"
	"github.com/aescanero/awo/pkg/domain"
	"github.com/aescanero/awo/pkg/ports"
	"go.uber.org/zap"
)

// Manager coordinates workflow execution across the gate and engine.
type Manager struct {
	gate      *gate.Gate
	engine    *engine.Engine
	bus       ports.EventBus
	storage   ports.SummaryStore
	metrics   ports.MetricsCollector
	validator *Validator
	clock     ports.Clock
	logger    *zap.Logger

	// stepTimeout applies to steps that declare none.
	stepTimeout time.Duration
}

// NewManager creates a new orchestrator manager.
func NewManager(
	admission *gate.Gate,
	eng *engine.Engine,
	bus ports.EventBus,
	storage ports.SummaryStore,
	metrics ports.MetricsCollector,
	validator *Validator,
	clock ports.Clock,
	logger *zap.Logger,
	stepTimeout time.Duration,
) *Manager {
	return &Manager{
		gate:        admission,
		engine:      eng,
		bus:         bus,
		storage:     storage,
		metrics:     metrics,
		validator:   validator,
		clock:       clock,
		logger:      logger,
		stepTimeout: stepTimeout,
	}
}

// Pipeline runs steps strictly in order, feeding each step's output to
// the next. The first failure stops the workflow; later steps never
// run and never appear in the result.
func (m *Manager) Pipeline(ctx context.Context, req *domain.AdmissionRequest, steps []domain.WorkflowStep, input interface{}) (*domain.WorkflowResult, error) {
	return m.run(ctx, domain.PatternPipeline, req, steps, input, m.runPipeline)
}

// FanOut dispatches every step concurrently against the same shared
// input and waits for all to settle. Step results keep declaration
// order regardless of completion order.
func (m *Manager) FanOut(ctx context.Context, req *domain.AdmissionRequest, steps []domain.WorkflowStep, input interface{}) (*domain.WorkflowResult, error) {
	return m.run(ctx, domain.PatternFanOut, req, steps, input, m.runFanOut)
}

// Saga runs steps like a pipeline, but on failure walks the completed
// steps in reverse invoking each optional compensation. Rollback is
// best effort: a failed compensation is reported via telemetry and the
// walk continues. A saga that hit a step failure is never successful.
func (m *Manager) Saga(ctx context.Context, req *domain.AdmissionRequest, steps []domain.WorkflowStep, input interface{}) (*domain.WorkflowResult, error) {
	return m.run(ctx, domain.PatternSaga, req, steps, input, m.runSaga)
}

// patternFunc executes the admitted steps and fills in the result's
// steps, output and success.
type patternFunc func(ctx context.Context, workflowID string, steps []domain.WorkflowStep, input interface{}, result *domain.WorkflowResult)

// run is the common preamble and postamble for all three patterns.
func (m *Manager) run(ctx context.Context, pattern domain.Pattern, req *domain.AdmissionRequest, steps []domain.WorkflowStep, input interface{}, fn patternFunc) (*domain.WorkflowResult, error) {
	if err := m.validator.Validate(req, steps); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	workflowID := m.clock.NewID()
	startedAt := m.clock.Now()
	decision := m.gate.Evaluate(ctx, req)

	result := &domain.WorkflowResult{
		ID:        workflowID,
		Pattern:   pattern,
		Decision:  decision,
		Steps:     []domain.StepResult{},
		StartedAt: startedAt,
	}

	if !decision.Allowed() {
		m.logger.Info("workflow rejected at admission",
			zap.String("workflow_id", workflowID),
			zap.String("pattern", string(pattern)),
			zap.String("verdict", string(decision.Verdict)),
			zap.String("reason", decision.Reason))
		return m.finish(ctx, result), nil
	}

	m.logger.Info("workflow admitted",
		zap.String("workflow_id", workflowID),
		zap.String("pattern", string(pattern)),
		zap.String("principal_id", req.PrincipalID),
		zap.Int("steps", len(steps)))
	m.emit(ctx, workflowID, domain.EventTypeWorkflowStarted, map[string]interface{}{
		"pattern":      string(pattern),
		"principal_id": req.PrincipalID,
		"steps":        len(steps),
	})

	fn(ctx, workflowID, steps, input, result)
	return m.finish(ctx, result), nil
}

// finish stamps timing, persists the terminal summary and seals the
// result. Callers receive a deep copy; nothing they do to it can reach
// back into orchestrator state.
func (m *Manager) finish(ctx context.Context, result *domain.WorkflowResult) *domain.WorkflowResult {
	result.CompletedAt = m.clock.Now()
	result.Duration = result.CompletedAt.Sub(result.StartedAt)

	m.metrics.RecordWorkflow(result.Pattern, result.Success, result.Duration)
	m.logger.Info("workflow completed",
		zap.String("workflow_id", result.ID),
		zap.String("pattern", string(result.Pattern)),
		zap.Bool("success", result.Success),
		zap.Int("steps", len(result.Steps)),
		zap.Duration("duration", result.Duration))
	m.emit(ctx, result.ID, domain.EventTypeWorkflowCompleted, map[string]interface{}{
		"pattern":  string(result.Pattern),
		"success":  result.Success,
		"verdict":  string(result.Decision.Verdict),
		"steps":    len(result.Steps),
		"duration": result.Duration.String(),
	})

	sealed := result.Clone()

	// Terminal summary persistence is best effort; a store failure
	// must not affect the returned result. The store gets its own copy,
	// taken before the caller can touch the sealed one.
	stored := sealed.Clone()
	go func() {
		putCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := m.storage.Put(putCtx, stored); err != nil {
			m.logger.Warn("failed to persist workflow summary",
				zap.String("workflow_id", stored.ID),
				zap.Error(err))
		}
	}()

	return sealed
}

// emit publishes a workflow telemetry event fire-and-forget.
func (m *Manager) emit(ctx context.Context, workflowID string, eventType domain.EventType, data map[string]interface{}) {
	event := ports.Event{
		ID:          m.clock.NewID(),
		Type:        eventType,
		Timestamp:   m.clock.Now(),
		ExecutionID: workflowID,
		Source:      "orchestrator",
		Data:        data,
	}
	go func() {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := m.bus.Publish(pubCtx, domain.TopicWorkflow, event); err != nil {
			m.logger.Warn("failed to publish workflow event",
				zap.String("workflow_id", workflowID),
				zap.String("type", string(eventType)),
				zap.Error(err))
		}
	}()
}

// GetSummary fetches a persisted terminal summary.
func (m *Manager) GetSummary(ctx context.Context, workflowID string) (*domain.WorkflowResult, error) {
	return m.storage.Get(ctx, workflowID)
}

// ListSummaries returns the IDs of persisted summaries.
func (m *Manager) ListSummaries(ctx context.Context) ([]string, error) {
	return m.storage.List(ctx)
}
