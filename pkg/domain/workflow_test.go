package domain

import "testing"

func TestWorkflowResultClone(t *testing.T) {
	original := &WorkflowResult{
		ID:      "wf-1",
		Pattern: PatternSaga,
		Decision: &AdmissionDecision{
			Verdict: VerdictAllow,
			RuleID:  "r1",
		},
		Steps: []StepResult{
			{StepID: "a", Status: StepDone},
			{StepID: "b", Status: StepCompensated},
		},
		Success: true,
	}

	clone := original.Clone()
	clone.Steps[0].Status = StepFailed
	clone.Decision.Verdict = VerdictDeny
	clone.Success = false

	if original.Steps[0].Status != StepDone {
		t.Fatalf("clone shares the steps slice: %s", original.Steps[0].Status)
	}
	if original.Decision.Verdict != VerdictAllow {
		t.Fatalf("clone shares the decision: %s", original.Decision.Verdict)
	}
	if !original.Success {
		t.Fatal("clone shares scalar fields")
	}
}

func TestWorkflowResultCloneNilDecision(t *testing.T) {
	original := &WorkflowResult{ID: "wf-1"}
	clone := original.Clone()
	if clone.Decision != nil {
		t.Fatal("expected a nil decision to stay nil")
	}
	if clone.Steps == nil {
		t.Fatal("expected a non-nil steps slice")
	}
}

func TestAdmissionDecisionAllowed(t *testing.T) {
	for _, tt := range []struct {
		verdict Verdict
		want    bool
	}{
		{VerdictAllow, true},
		{VerdictDeny, false},
		{VerdictThrottle, false},
		{VerdictCircuitOpen, false},
	} {
		d := AdmissionDecision{Verdict: tt.verdict}
		if got := d.Allowed(); got != tt.want {
			t.Errorf("Allowed() for %s = %v, want %v", tt.verdict, got, tt.want)
		}
	}
}
