package orchestrator

import (
	"context"
	"fmt"

	"github.com/aescanero/awo/pkg/domain"
)

// runStep executes one step raced against its timeout. A timed-out
// step is abandoned: the goroutine finishes into a buffered channel
// and is dropped, since the orchestrator cannot forcibly terminate
// in-flight work. Panics are recovered into step failures.
func (m *Manager) runStep(ctx context.Context, step domain.WorkflowStep, input interface{}) domain.StepResult {
	timeout := step.Timeout
	if timeout <= 0 {
		timeout = m.stepTimeout
	}
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result := domain.StepResult{
		StepID:    step.ID,
		Name:      step.Name,
		Status:    domain.StepRunning,
		StartedAt: m.clock.Now(),
	}

	type outcome struct {
		output interface{}
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("step panicked: %v", r)}
			}
		}()
		output, err := step.Execute(stepCtx, input)
		done <- outcome{output: output, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			result.Status = domain.StepFailed
			result.Error = o.err.Error()
		} else {
			result.Status = domain.StepDone
			result.Output = o.output
		}
	case <-stepCtx.Done():
		result.Status = domain.StepFailed
		if stepCtx.Err() == context.DeadlineExceeded {
			result.Error = fmt.Sprintf("%s after %s", domain.ErrStepTimeout, timeout)
		} else {
			result.Error = stepCtx.Err().Error()
		}
	}

	result.CompletedAt = m.clock.Now()
	result.Duration = result.CompletedAt.Sub(result.StartedAt)
	m.metrics.RecordStep(result.Status, result.Duration)
	return result
}

// runCompensation invokes a step's compensation with the input the
// step was originally given, under the same timeout discipline.
func (m *Manager) runCompensation(ctx context.Context, step domain.WorkflowStep, input interface{}) error {
	timeout := step.Timeout
	if timeout <= 0 {
		timeout = m.stepTimeout
	}
	compCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("compensation panicked: %v", r)
			}
		}()
		done <- step.Compensate(compCtx, input)
	}()

	select {
	case err := <-done:
		return err
	case <-compCtx.Done():
		if compCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("compensation %w after %s", domain.ErrStepTimeout, timeout)
		}
		return compCtx.Err()
	}
}
