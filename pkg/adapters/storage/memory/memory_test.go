package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/aescanero/awo/pkg/domain"
)

func TestPutGet(t *testing.T) {
	store := NewSummaryStore()
	ctx := context.Background()

	result := &domain.WorkflowResult{
		ID:      "wf-1",
		Pattern: domain.PatternPipeline,
		Success: true,
		Steps:   []domain.StepResult{{StepID: "a", Status: domain.StepDone}},
	}
	if err := store.Put(ctx, result); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "wf-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != "wf-1" || !got.Success || len(got.Steps) != 1 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestGetUnknown(t *testing.T) {
	store := NewSummaryStore()
	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrSummaryNotFound) {
		t.Fatalf("expected ErrSummaryNotFound, got %v", err)
	}
}

func TestStoredCopiesAreIsolated(t *testing.T) {
	store := NewSummaryStore()
	ctx := context.Background()

	original := &domain.WorkflowResult{
		ID:    "wf-1",
		Steps: []domain.StepResult{{StepID: "a", Status: domain.StepDone}},
	}
	if err := store.Put(ctx, original); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Mutating the caller's value after Put must not reach the store.
	original.Steps[0].Status = domain.StepFailed

	got, err := store.Get(ctx, "wf-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Steps[0].Status != domain.StepDone {
		t.Fatalf("store leaked the caller's mutation: %s", got.Steps[0].Status)
	}

	// And mutating a fetched copy must not reach the store either.
	got.Steps[0].Status = domain.StepFailed
	again, err := store.Get(ctx, "wf-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.Steps[0].Status != domain.StepDone {
		t.Fatalf("store leaked a reader's mutation: %s", again.Steps[0].Status)
	}
}

func TestList(t *testing.T) {
	store := NewSummaryStore()
	ctx := context.Background()

	for _, id := range []string{"wf-1", "wf-2"} {
		if err := store.Put(ctx, &domain.WorkflowResult{ID: id}); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}

	ids, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 IDs, got %d", len(ids))
	}
}
