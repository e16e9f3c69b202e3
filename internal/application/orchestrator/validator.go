package orchestrator

import (
	"fmt"

	"github.com/aescanero/awo/pkg/domain"
)

// Validator checks workflow submissions before any state is touched.
// Validation failures are programmer errors and surface as synchronous
// errors, unlike step failures which become data in the result.
type Validator struct{}

// NewValidator creates a new workflow validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks the request and step list.
func (v *Validator) Validate(req *domain.AdmissionRequest, steps []domain.WorkflowStep) error {
	if req == nil {
		return fmt.Errorf("request is nil")
	}
	if req.PrincipalID == "" {
		return fmt.Errorf("request principal ID is required")
	}
	if req.Action == "" {
		return fmt.Errorf("request action is required")
	}
	if len(steps) == 0 {
		return fmt.Errorf("workflow must have at least one step")
	}

	seen := make(map[string]bool, len(steps))
	for i, step := range steps {
		if step.ID == "" {
			return fmt.Errorf("step %d: ID is required", i)
		}
		if step.Execute == nil {
			return fmt.Errorf("step %s: execute function is required", step.ID)
		}
		if seen[step.ID] {
			return fmt.Errorf("duplicate step ID: %s", step.ID)
		}
		seen[step.ID] = true
	}
	return nil
}
