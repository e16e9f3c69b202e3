package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aescanero/awo/pkg/domain"
	"go.uber.org/zap"
)

type testClock struct {
	seq atomic.Int64
}

func (c *testClock) Now() time.Time { return time.Now() }

func (c *testClock) NewID() string {
	return fmt.Sprintf("id-%d", c.seq.Add(1))
}

func (c *testClock) Hash(data []byte) string { return fmt.Sprintf("%x", data) }

type nopMetrics struct{}

func (nopMetrics) RecordDecision(domain.Verdict)                      {}
func (nopMetrics) RecordBreakerOpened()                               {}
func (nopMetrics) RecordWorkflow(domain.Pattern, bool, time.Duration) {}
func (nopMetrics) RecordStep(domain.StepStatus, time.Duration)        {}
func (nopMetrics) RecordEngineTask(bool, int, time.Duration)          {}
func (nopMetrics) RecordEngineRejection()                             {}
func (nopMetrics) RecordCompensationFailure()                         {}
func (nopMetrics) SetEngineRunning(int)                               {}

func newTestEngine(maxConcurrent int) *Engine {
	return New(Config{MaxConcurrent: maxConcurrent}, &testClock{}, nopMetrics{}, zap.NewNop())
}

func TestRunSuccessFirstAttempt(t *testing.T) {
	e := newTestEngine(2)

	result, err := e.Run(context.Background(), &domain.EngineTask{
		ID:   "t1",
		Name: "greet",
		Fn: func(ctx context.Context) (interface{}, error) {
			return "hello", nil
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if result.Output != "hello" {
		t.Fatalf("expected output hello, got %v", result.Output)
	}
	if result.Attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", result.Attempts)
	}
	if result.FuelConsumed != 1 {
		t.Fatalf("expected 1 credit consumed, got %d", result.FuelConsumed)
	}
}

func TestRunExhaustsRetries(t *testing.T) {
	e := newTestEngine(2)
	var calls atomic.Int64

	result, err := e.Run(context.Background(), &domain.EngineTask{
		ID:         "t1",
		Name:       "flaky",
		Retries:    2,
		RetryDelay: time.Millisecond,
		Fn: func(ctx context.Context) (interface{}, error) {
			calls.Add(1)
			return nil, errors.New("boom")
		},
	})
	if err != nil {
		t.Fatalf("task failure must be data, not an error: %v", err)
	}
	if result.Success {
		t.Fatal("expected failure after exhausting retries")
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts (1 + 2 retries), got %d", got)
	}
	if result.Attempts != 3 {
		t.Fatalf("expected Attempts 3, got %d", result.Attempts)
	}
	if result.FuelConsumed != 3 {
		t.Fatalf("expected 3 credits consumed, got %d", result.FuelConsumed)
	}
	if result.Error != "boom" {
		t.Fatalf("expected last error, got %q", result.Error)
	}
}

func TestRunRecoversAfterFailure(t *testing.T) {
	e := newTestEngine(2)
	var calls atomic.Int64

	result, err := e.Run(context.Background(), &domain.EngineTask{
		ID:         "t1",
		Name:       "second-time-lucky",
		Retries:    3,
		RetryDelay: time.Millisecond,
		Fn: func(ctx context.Context) (interface{}, error) {
			if calls.Add(1) < 2 {
				return nil, errors.New("transient")
			}
			return 42, nil
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected recovery, got %q", result.Error)
	}
	if result.Attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", result.Attempts)
	}
}

func TestRunFailsFastAtCapacity(t *testing.T) {
	e := newTestEngine(1)
	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_, _ = e.Run(context.Background(), &domain.EngineTask{
			ID:   "long",
			Name: "long",
			Fn: func(ctx context.Context) (interface{}, error) {
				close(started)
				<-release
				return nil, nil
			},
		})
	}()
	<-started

	_, err := e.Run(context.Background(), &domain.EngineTask{
		ID:   "extra",
		Name: "extra",
		Fn: func(ctx context.Context) (interface{}, error) {
			return nil, nil
		},
	})
	if !errors.Is(err, domain.ErrEngineAtCapacity) {
		t.Fatalf("expected ErrEngineAtCapacity, got %v", err)
	}
	close(release)
}

func TestRunAttemptTimeout(t *testing.T) {
	e := newTestEngine(2)

	result, err := e.Run(context.Background(), &domain.EngineTask{
		ID:      "slow",
		Name:    "slow",
		Timeout: 20 * time.Millisecond,
		Fn: func(ctx context.Context) (interface{}, error) {
			select {
			case <-time.After(5 * time.Second):
				return "too late", nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success {
		t.Fatal("expected timeout failure")
	}
	if want := domain.ErrStepTimeout.Error(); !strings.Contains(result.Error, want) {
		t.Fatalf("expected error to mention %q, got %q", want, result.Error)
	}
}

func TestRunRecoversPanics(t *testing.T) {
	e := newTestEngine(2)

	result, err := e.Run(context.Background(), &domain.EngineTask{
		ID:   "panicky",
		Name: "panicky",
		Fn: func(ctx context.Context) (interface{}, error) {
			panic("kaboom")
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success {
		t.Fatal("expected a panicking task to fail")
	}
	if !strings.Contains(result.Error, "kaboom") {
		t.Fatalf("expected panic message in error, got %q", result.Error)
	}
}

func TestRunNilTask(t *testing.T) {
	e := newTestEngine(1)
	if _, err := e.Run(context.Background(), nil); err == nil {
		t.Fatal("expected an error for a nil task")
	}
	if _, err := e.Run(context.Background(), &domain.EngineTask{ID: "x"}); err == nil {
		t.Fatal("expected an error for a task without Fn")
	}
}

func TestBatchPreservesOrder(t *testing.T) {
	e := newTestEngine(2)

	tasks := make([]*domain.EngineTask, 5)
	for i := range tasks {
		i := i
		tasks[i] = &domain.EngineTask{
			ID:   fmt.Sprintf("t%d", i),
			Name: fmt.Sprintf("t%d", i),
			Fn: func(ctx context.Context) (interface{}, error) {
				// Later tasks finish first to exercise ordering.
				time.Sleep(time.Duration(5-i) * 5 * time.Millisecond)
				return i, nil
			},
		}
	}

	results := e.Batch(context.Background(), tasks, 2)
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	for i, r := range results {
		if !r.Success {
			t.Fatalf("task %d failed: %s", i, r.Error)
		}
		if r.Output != i {
			t.Fatalf("position %d holds output %v; results must keep task order", i, r.Output)
		}
	}
}

func TestBatchReportsFailuresInPlace(t *testing.T) {
	e := newTestEngine(3)

	tasks := []*domain.EngineTask{
		{ID: "a", Name: "a", Fn: func(ctx context.Context) (interface{}, error) { return "ok", nil }},
		{ID: "b", Name: "b", Fn: func(ctx context.Context) (interface{}, error) { return nil, errors.New("bad") }},
		{ID: "c", Name: "c", Fn: func(ctx context.Context) (interface{}, error) { return "ok", nil }},
	}

	results := e.Batch(context.Background(), tasks, 3)
	if !results[0].Success || results[1].Success || !results[2].Success {
		t.Fatalf("expected ok/fail/ok, got %v/%v/%v",
			results[0].Success, results[1].Success, results[2].Success)
	}
	if results[1].Error != "bad" {
		t.Fatalf("expected failure detail in place, got %q", results[1].Error)
	}
}

func TestBatchSlidingWindow(t *testing.T) {
	e := newTestEngine(10)
	var running, peak atomic.Int64

	tasks := make([]*domain.EngineTask, 6)
	for i := range tasks {
		tasks[i] = &domain.EngineTask{
			ID:   fmt.Sprintf("t%d", i),
			Name: fmt.Sprintf("t%d", i),
			Fn: func(ctx context.Context) (interface{}, error) {
				n := running.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				running.Add(-1)
				return nil, nil
			},
		}
	}

	e.Batch(context.Background(), tasks, 2)
	if got := peak.Load(); got > 2 {
		t.Fatalf("batch concurrency exceeded the window: peak %d", got)
	}
}
