package orchestrator

import (
	"context"

	"github.com/aescanero/awo/pkg/domain"
	"go.uber.org/zap"
)

// runSaga chains steps like a pipeline, remembering the input each
// step was given. On the first failure it walks the completed steps in
// reverse, invoking each optional compensation with that remembered
// input. Rollback is best effort, not a guarantee: a failed
// compensation leaves the step failed, emits telemetry, and the walk
// continues. The saga is never successful after a step failure.
func (m *Manager) runSaga(ctx context.Context, workflowID string, steps []domain.WorkflowStep, input interface{}, result *domain.WorkflowResult) {
	current := input
	inputs := make([]interface{}, 0, len(steps))

	for i, step := range steps {
		inputs = append(inputs, current)
		sr := m.runStep(ctx, step, current)
		result.Steps = append(result.Steps, sr)
		if sr.Status != domain.StepDone {
			m.emitStepFailed(ctx, workflowID, sr)
			m.compensate(ctx, workflowID, steps, inputs, result, i)
			return
		}
		current = sr.Output
	}

	result.Output = current
	result.Success = true
}

// compensate reverse-walks the steps completed before failedIndex.
func (m *Manager) compensate(ctx context.Context, workflowID string, steps []domain.WorkflowStep, inputs []interface{}, result *domain.WorkflowResult, failedIndex int) {
	for j := failedIndex - 1; j >= 0; j-- {
		if steps[j].Compensate == nil {
			continue
		}
		if err := m.runCompensation(ctx, steps[j], inputs[j]); err != nil {
			result.Steps[j].Status = domain.StepFailed
			result.Steps[j].Error = "compensation failed: " + err.Error()
			m.metrics.RecordCompensationFailure()
			m.logger.Error("compensation failed",
				zap.String("workflow_id", workflowID),
				zap.String("step_id", steps[j].ID),
				zap.Error(err))
			m.emit(ctx, workflowID, domain.EventTypeCompensationFailed, map[string]interface{}{
				"step_id": steps[j].ID,
				"name":    steps[j].Name,
				"error":   err.Error(),
			})
			continue
		}
		result.Steps[j].Status = domain.StepCompensated
	}
}
