package orchestrator

import (
	"context"
	"testing"

	"github.com/aescanero/awo/pkg/domain"
)

func TestValidate(t *testing.T) {
	noop := func(ctx context.Context, input interface{}) (interface{}, error) { return input, nil }
	req := &domain.AdmissionRequest{PrincipalID: "alice", Action: "run"}

	tests := []struct {
		name    string
		req     *domain.AdmissionRequest
		steps   []domain.WorkflowStep
		wantErr bool
	}{
		{
			name:  "valid",
			req:   req,
			steps: []domain.WorkflowStep{{ID: "a", Execute: noop}},
		},
		{
			name:    "nil request",
			req:     nil,
			steps:   []domain.WorkflowStep{{ID: "a", Execute: noop}},
			wantErr: true,
		},
		{
			name:    "missing principal",
			req:     &domain.AdmissionRequest{Action: "run"},
			steps:   []domain.WorkflowStep{{ID: "a", Execute: noop}},
			wantErr: true,
		},
		{
			name:    "missing action",
			req:     &domain.AdmissionRequest{PrincipalID: "alice"},
			steps:   []domain.WorkflowStep{{ID: "a", Execute: noop}},
			wantErr: true,
		},
		{
			name:    "no steps",
			req:     req,
			steps:   nil,
			wantErr: true,
		},
		{
			name:    "step without ID",
			req:     req,
			steps:   []domain.WorkflowStep{{Execute: noop}},
			wantErr: true,
		},
		{
			name:    "step without execute",
			req:     req,
			steps:   []domain.WorkflowStep{{ID: "a"}},
			wantErr: true,
		},
		{
			name:    "duplicate step IDs",
			req:     req,
			steps:   []domain.WorkflowStep{{ID: "a", Execute: noop}, {ID: "a", Execute: noop}},
			wantErr: true,
		},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req, tt.steps)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
