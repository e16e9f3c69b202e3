package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aescanero/awo/pkg/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "awo:summary:"

// SummaryStore implements ports.SummaryStore using Redis.
type SummaryStore struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewSummaryStore creates a new Redis summary store.
func NewSummaryStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *SummaryStore {
	return &SummaryStore{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

// Put persists a terminal workflow summary with TTL.
func (s *SummaryStore) Put(ctx context.Context, result *domain.WorkflowResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	if err := s.client.Set(ctx, summaryKey(result.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}

	s.logger.Debug("summary saved",
		zap.String("workflow_id", result.ID),
		zap.String("pattern", string(result.Pattern)))

	return nil
}

// Get retrieves a workflow summary.
func (s *SummaryStore) Get(ctx context.Context, workflowID string) (*domain.WorkflowResult, error) {
	data, err := s.client.Get(ctx, summaryKey(workflowID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrSummaryNotFound, workflowID)
		}
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}

	var result domain.WorkflowResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}

	return &result, nil
}

// List returns all workflow IDs with stored summaries.
func (s *SummaryStore) List(ctx context.Context) ([]string, error) {
	var cursor uint64
	var keys []string

	for {
		var batch []string
		var err error

		batch, cursor, err = s.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys: %w", err)
		}

		keys = append(keys, batch...)

		if cursor == 0 {
			break
		}
	}

	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		if len(key) > len(keyPrefix) {
			ids = append(ids, key[len(keyPrefix):])
		}
	}

	return ids, nil
}

func summaryKey(workflowID string) string {
	return keyPrefix + workflowID
}
