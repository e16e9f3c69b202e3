// Package steps maps declarative step specs, as submitted over the
// API, to executable workflow steps. Step kinds are registered once at
// startup; unknown kinds fail validation before any workflow state is
// touched.
package steps

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aescanero/awo/pkg/domain"
	"github.com/aescanero/awo/pkg/ports"
	"go.uber.org/zap"
)

// Spec is the declarative form of one workflow step.
type Spec struct {
	ID      string                 `json:"id"`
	Name    string                 `json:"name"`
	Kind    string                 `json:"kind"`
	Timeout time.Duration          `json:"timeout,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// Factory builds an executable step from its spec.
type Factory func(spec Spec) (domain.WorkflowStep, error)

// Registry holds the registered step kinds.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	logger    *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		logger:    logger,
	}
}

// Register adds a step kind. Registering a duplicate kind is an error.
func (r *Registry) Register(kind string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("step kind already registered: %s", kind)
	}
	r.factories[kind] = factory
	r.logger.Debug("step kind registered", zap.String("kind", kind))
	return nil
}

// Kinds returns the registered kind names.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	return kinds
}

// Build resolves every spec against the registry.
func (r *Registry) Build(specs []Spec) ([]domain.WorkflowStep, error) {
	built := make([]domain.WorkflowStep, 0, len(specs))
	for i, spec := range specs {
		r.mu.RLock()
		factory, ok := r.factories[spec.Kind]
		r.mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("step %d (%s): unknown kind %q", i, spec.ID, spec.Kind)
		}
		step, err := factory(spec)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, spec.ID, err)
		}
		built = append(built, step)
	}
	return built, nil
}

// RegisterBuiltins adds the echo, delay and fail kinds.
func RegisterBuiltins(r *Registry) error {
	builtins := map[string]Factory{
		"echo":  echoFactory,
		"delay": delayFactory,
		"fail":  failFactory,
	}
	for kind, factory := range builtins {
		if err := r.Register(kind, factory); err != nil {
			return err
		}
	}
	return nil
}

// echoFactory returns params["value"] when set, otherwise passes the
// step input through unchanged.
func echoFactory(spec Spec) (domain.WorkflowStep, error) {
	value, hasValue := spec.Params["value"]
	return domain.WorkflowStep{
		ID:      spec.ID,
		Name:    spec.Name,
		Timeout: spec.Timeout,
		Execute: func(ctx context.Context, input interface{}) (interface{}, error) {
			if hasValue {
				return value, nil
			}
			return input, nil
		},
	}, nil
}

// delayFactory sleeps for params["duration"] honoring cancellation.
func delayFactory(spec Spec) (domain.WorkflowStep, error) {
	raw, ok := spec.Params["duration"].(string)
	if !ok {
		return domain.WorkflowStep{}, fmt.Errorf("delay step requires a duration param")
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return domain.WorkflowStep{}, fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	return domain.WorkflowStep{
		ID:      spec.ID,
		Name:    spec.Name,
		Timeout: spec.Timeout,
		Execute: func(ctx context.Context, input interface{}) (interface{}, error) {
			select {
			case <-time.After(d):
				return input, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}, nil
}

// failFactory always fails; used to exercise breaker, retry and saga
// rollback paths end to end.
func failFactory(spec Spec) (domain.WorkflowStep, error) {
	message := "step configured to fail"
	if m, ok := spec.Params["message"].(string); ok && m != "" {
		message = m
	}
	return domain.WorkflowStep{
		ID:      spec.ID,
		Name:    spec.Name,
		Timeout: spec.Timeout,
		Execute: func(ctx context.Context, input interface{}) (interface{}, error) {
			return nil, fmt.Errorf("%s", message)
		},
	}, nil
}

// LLMDefaults carries the model settings for prompt steps.
type LLMDefaults struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// RegisterLLM adds the llm.prompt kind backed by the given client.
func RegisterLLM(r *Registry, client ports.LLMClient, defaults LLMDefaults) error {
	return r.Register("llm.prompt", func(spec Spec) (domain.WorkflowStep, error) {
		prompt, ok := spec.Params["prompt"].(string)
		if !ok || prompt == "" {
			return domain.WorkflowStep{}, fmt.Errorf("llm.prompt step requires a prompt param")
		}
		model := defaults.Model
		if m, ok := spec.Params["model"].(string); ok && m != "" {
			model = m
		}
		return domain.WorkflowStep{
			ID:      spec.ID,
			Name:    spec.Name,
			Timeout: spec.Timeout,
			Execute: func(ctx context.Context, input interface{}) (interface{}, error) {
				resp, err := client.GenerateCompletion(ctx, &domain.LLMRequest{
					Model:       model,
					Prompt:      prompt,
					Temperature: defaults.Temperature,
					MaxTokens:   defaults.MaxTokens,
				})
				if err != nil {
					return nil, err
				}
				return resp.Content, nil
			},
		}, nil
	})
}
