package orchestrator

import (
	"context"

	"github.com/aescanero/awo/pkg/domain"
)

// runPipeline executes steps strictly in sequence, each step's output
// becoming the next step's input. The first failure stops the
// pipeline; the result reports only the steps that ran.
func (m *Manager) runPipeline(ctx context.Context, workflowID string, steps []domain.WorkflowStep, input interface{}, result *domain.WorkflowResult) {
	current := input
	for _, step := range steps {
		sr := m.runStep(ctx, step, current)
		result.Steps = append(result.Steps, sr)
		if sr.Status != domain.StepDone {
			m.emitStepFailed(ctx, workflowID, sr)
			return
		}
		current = sr.Output
	}
	result.Output = current
	result.Success = true
}

func (m *Manager) emitStepFailed(ctx context.Context, workflowID string, sr domain.StepResult) {
	m.emit(ctx, workflowID, domain.EventTypeStepFailed, map[string]interface{}{
		"step_id": sr.StepID,
		"name":    sr.Name,
		"error":   sr.Error,
	})
}
