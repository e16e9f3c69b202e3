package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/aescanero/awo/pkg/domain"
	"github.com/aescanero/awo/pkg/ports"
	"go.uber.org/zap"
)

// Config holds engine limits.
type Config struct {
	MaxConcurrent int
}

// Engine runs tasks with retry and timeout semantics under a hard
// concurrency ceiling.
type Engine struct {
	slots   chan struct{}
	clock   ports.Clock
	metrics ports.MetricsCollector
	logger  *zap.Logger
}

// New creates an engine with cfg.MaxConcurrent slots.
func New(cfg Config, clock ports.Clock, metrics ports.MetricsCollector, logger *zap.Logger) *Engine {
	return &Engine{
		slots:   make(chan struct{}, cfg.MaxConcurrent),
		clock:   clock,
		metrics: metrics,
		logger:  logger,
	}
}

// Running returns the number of tasks currently holding a slot.
func (e *Engine) Running() int {
	return len(e.slots)
}

// Capacity returns the concurrency ceiling.
func (e *Engine) Capacity() int {
	return cap(e.slots)
}

// Run executes a task, failing fast with domain.ErrEngineAtCapacity
// when every slot is occupied. Task failures are reported inside the
// result, not as errors.
func (e *Engine) Run(ctx context.Context, task *domain.EngineTask) (*domain.EngineResult, error) {
	if task == nil || task.Fn == nil {
		return nil, fmt.Errorf("engine: task and task.Fn are required")
	}

	select {
	case e.slots <- struct{}{}:
	default:
		e.metrics.RecordEngineRejection()
		return nil, fmt.Errorf("engine: cannot run %s: %w", task.Name, domain.ErrEngineAtCapacity)
	}
	defer func() {
		<-e.slots
		e.metrics.SetEngineRunning(e.Running())
	}()
	e.metrics.SetEngineRunning(e.Running())

	return e.execute(ctx, task), nil
}

// execute runs the attempt loop. The caller holds a slot.
func (e *Engine) execute(ctx context.Context, task *domain.EngineTask) *domain.EngineResult {
	startedAt := e.clock.Now()
	result := &domain.EngineResult{
		TaskID:    task.ID,
		Name:      task.Name,
		StartedAt: startedAt,
	}

	var lastErr error
	for attempt := 0; attempt <= task.Retries; attempt++ {
		result.Attempts = attempt + 1
		output, err := e.attempt(ctx, task)
		if err == nil {
			result.Success = true
			result.Output = output
			break
		}
		lastErr = err
		e.logger.Debug("task attempt failed",
			zap.String("task_id", task.ID),
			zap.String("name", task.Name),
			zap.Int("attempt", attempt+1),
			zap.Error(err))

		if attempt == task.Retries {
			break
		}
		// Linear backoff: delay grows with the attempt number.
		delay := task.RetryDelay * time.Duration(attempt+1)
		select {
		case <-time.After(delay):
			continue
		case <-ctx.Done():
			lastErr = fmt.Errorf("retry aborted: %w", ctx.Err())
		}
		break
	}

	if !result.Success {
		result.Error = lastErr.Error()
	}
	result.FuelConsumed = result.Attempts
	result.CompletedAt = e.clock.Now()
	result.Duration = result.CompletedAt.Sub(startedAt)
	e.metrics.RecordEngineTask(result.Success, result.Attempts, result.Duration)
	if !result.Success {
		e.logger.Warn("task exhausted retries",
			zap.String("task_id", task.ID),
			zap.String("name", task.Name),
			zap.Int("attempts", result.Attempts),
			zap.String("error", result.Error))
	}
	return result
}

// attempt runs task.Fn once, raced against the per-attempt timeout.
// On timeout the underlying call is abandoned, not force-terminated;
// the goroutine sends into a buffered channel and exits on its own.
func (e *Engine) attempt(ctx context.Context, task *domain.EngineTask) (interface{}, error) {
	attemptCtx := ctx
	cancel := context.CancelFunc(func() {})
	if task.Timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, task.Timeout)
	}
	defer cancel()

	type outcome struct {
		output interface{}
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("task panicked: %v", r)}
			}
		}()
		output, err := task.Fn(attemptCtx)
		done <- outcome{output: output, err: err}
	}()

	select {
	case o := <-done:
		return o.output, o.err
	case <-attemptCtx.Done():
		if attemptCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w after %s", domain.ErrStepTimeout, task.Timeout)
		}
		return nil, attemptCtx.Err()
	}
}

// Batch runs tasks through a worker pool bounded by concurrency,
// starting the next queued task as soon as any settles. Workers also
// take engine slots, blocking when the ceiling is reached, so batched
// work counts against the same concurrency policy as Run. Results are
// returned in task order.
func (e *Engine) Batch(ctx context.Context, tasks []*domain.EngineTask, concurrency int) []*domain.EngineResult {
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(tasks) {
		concurrency = len(tasks)
	}

	results := make([]*domain.EngineResult, len(tasks))
	indexes := make(chan int)
	done := make(chan struct{})

	for w := 0; w < concurrency; w++ {
		go func() {
			for i := range indexes {
				results[i] = e.runBlocking(ctx, tasks[i])
				done <- struct{}{}
			}
		}()
	}

	go func() {
		for i := range tasks {
			indexes <- i
		}
		close(indexes)
	}()

	for range tasks {
		<-done
	}
	return results
}

// runBlocking waits for a slot instead of failing fast. Used by Batch
// workers, which already bound their own parallelism.
func (e *Engine) runBlocking(ctx context.Context, task *domain.EngineTask) *domain.EngineResult {
	select {
	case e.slots <- struct{}{}:
	case <-ctx.Done():
		now := e.clock.Now()
		return &domain.EngineResult{
			TaskID:      task.ID,
			Name:        task.Name,
			Error:       ctx.Err().Error(),
			StartedAt:   now,
			CompletedAt: now,
		}
	}
	defer func() {
		<-e.slots
		e.metrics.SetEngineRunning(e.Running())
	}()
	e.metrics.SetEngineRunning(e.Running())

	return e.execute(ctx, task)
}
