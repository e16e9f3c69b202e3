package memory

import (
	"context"
	"sync"

	"github.com/aescanero/awo/pkg/domain"
)

// SummaryStore implements ports.SummaryStore using an in-memory map.
// This is for testing purposes only.
type SummaryStore struct {
	summaries map[string]*domain.WorkflowResult
	mu        sync.RWMutex
}

// NewSummaryStore creates a new in-memory summary store.
func NewSummaryStore() *SummaryStore {
	return &SummaryStore{
		summaries: make(map[string]*domain.WorkflowResult),
	}
}

// Put stores a deep copy of the terminal result.
func (s *SummaryStore) Put(ctx context.Context, result *domain.WorkflowResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.summaries[result.ID] = result.Clone()
	return nil
}

// Get retrieves a copy of a stored summary.
func (s *SummaryStore) Get(ctx context.Context, workflowID string) (*domain.WorkflowResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.summaries[workflowID]
	if !ok {
		return nil, domain.ErrSummaryNotFound
	}
	return result.Clone(), nil
}

// List returns all stored workflow IDs.
func (s *SummaryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.summaries))
	for id := range s.summaries {
		ids = append(ids, id)
	}
	return ids, nil
}
