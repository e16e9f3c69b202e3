package orchestrator

import (
	"context"

	"github.com/aescanero/awo/pkg/domain"
)

// runFanOut dispatches every step concurrently against the same shared
// input, routed through the engine's batch executor so fan-out work is
// bounded by the same concurrency policy as everything else. Step
// results keep declaration order regardless of completion order; the
// aggregate output lists only the successful outputs, also in
// declaration order.
func (m *Manager) runFanOut(ctx context.Context, workflowID string, steps []domain.WorkflowStep, input interface{}, result *domain.WorkflowResult) {
	tasks := make([]*domain.EngineTask, len(steps))
	for i, step := range steps {
		step := step
		timeout := step.Timeout
		if timeout <= 0 {
			timeout = m.stepTimeout
		}
		tasks[i] = &domain.EngineTask{
			ID:      step.ID,
			Name:    step.Name,
			Timeout: timeout,
			Fn: func(taskCtx context.Context) (interface{}, error) {
				return step.Execute(taskCtx, input)
			},
		}
	}

	taskResults := m.engine.Batch(ctx, tasks, len(tasks))

	outputs := make([]interface{}, 0, len(steps))
	allDone := true
	for i, tr := range taskResults {
		sr := domain.StepResult{
			StepID:      steps[i].ID,
			Name:        steps[i].Name,
			StartedAt:   tr.StartedAt,
			CompletedAt: tr.CompletedAt,
			Duration:    tr.Duration,
		}
		if tr.Success {
			sr.Status = domain.StepDone
			sr.Output = tr.Output
			outputs = append(outputs, tr.Output)
		} else {
			sr.Status = domain.StepFailed
			sr.Error = tr.Error
			allDone = false
		}
		m.metrics.RecordStep(sr.Status, sr.Duration)
		result.Steps = append(result.Steps, sr)
		if sr.Status == domain.StepFailed {
			m.emitStepFailed(ctx, workflowID, sr)
		}
	}

	result.Output = outputs
	result.Success = allDone
}
