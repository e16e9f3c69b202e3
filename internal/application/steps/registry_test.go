package steps

import (
	"context"
	"testing"
	"time"

	"github.com/aescanero/awo/pkg/domain"
	"go.uber.org/zap"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry(zap.NewNop())
	if err := RegisterBuiltins(r); err != nil {
		t.Fatalf("register builtins: %v", err)
	}
	return r
}

func TestRegisterDuplicateKind(t *testing.T) {
	r := newTestRegistry(t)
	err := r.Register("echo", func(spec Spec) (domain.WorkflowStep, error) {
		return domain.WorkflowStep{}, nil
	})
	if err == nil {
		t.Fatal("expected an error for a duplicate kind")
	}
}

func TestKinds(t *testing.T) {
	r := newTestRegistry(t)
	kinds := r.Kinds()
	want := map[string]bool{"echo": false, "delay": false, "fail": false}
	for _, k := range kinds {
		want[k] = true
	}
	for k, seen := range want {
		if !seen {
			t.Fatalf("builtin kind %q not registered", k)
		}
	}
}

func TestBuildUnknownKind(t *testing.T) {
	r := newTestRegistry(t)
	_, err := r.Build([]Spec{{ID: "s1", Kind: "teleport"}})
	if err == nil {
		t.Fatal("expected an error for an unknown kind")
	}
}

func TestEchoStep(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	built, err := r.Build([]Spec{
		{ID: "passthrough", Kind: "echo"},
		{ID: "fixed", Kind: "echo", Params: map[string]interface{}{"value": "pinned"}},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	out, err := built[0].Execute(ctx, "input")
	if err != nil || out != "input" {
		t.Fatalf("passthrough echo: got %v, %v", out, err)
	}

	out, err = built[1].Execute(ctx, "input")
	if err != nil || out != "pinned" {
		t.Fatalf("fixed echo: got %v, %v", out, err)
	}
}

func TestDelayStep(t *testing.T) {
	r := newTestRegistry(t)

	built, err := r.Build([]Spec{
		{ID: "d", Kind: "delay", Params: map[string]interface{}{"duration": "1ms"}},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	out, err := built[0].Execute(context.Background(), "payload")
	if err != nil || out != "payload" {
		t.Fatalf("delay: got %v, %v", out, err)
	}
}

func TestDelayStepHonorsCancellation(t *testing.T) {
	r := newTestRegistry(t)

	built, err := r.Build([]Spec{
		{ID: "d", Kind: "delay", Params: map[string]interface{}{"duration": "10s"}},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := built[0].Execute(ctx, nil); err == nil {
		t.Fatal("expected a cancellation error")
	}
}

func TestDelayStepValidation(t *testing.T) {
	r := newTestRegistry(t)

	if _, err := r.Build([]Spec{{ID: "d", Kind: "delay"}}); err == nil {
		t.Fatal("expected an error for a missing duration")
	}
	if _, err := r.Build([]Spec{
		{ID: "d", Kind: "delay", Params: map[string]interface{}{"duration": "soon"}},
	}); err == nil {
		t.Fatal("expected an error for a malformed duration")
	}
}

func TestFailStep(t *testing.T) {
	r := newTestRegistry(t)

	built, err := r.Build([]Spec{
		{ID: "f", Kind: "fail", Params: map[string]interface{}{"message": "configured failure"}},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	_, err = built[0].Execute(context.Background(), nil)
	if err == nil || err.Error() != "configured failure" {
		t.Fatalf("expected configured failure, got %v", err)
	}
}

type fakeLLM struct {
	lastReq *domain.LLMRequest
}

func (f *fakeLLM) GenerateCompletion(ctx context.Context, req *domain.LLMRequest) (*domain.LLMResponse, error) {
	f.lastReq = req
	return &domain.LLMResponse{Content: "completion for: " + req.Prompt}, nil
}

func TestLLMPromptStep(t *testing.T) {
	r := newTestRegistry(t)
	client := &fakeLLM{}
	defaults := LLMDefaults{Model: "default-model", Temperature: 0.7, MaxTokens: 256}
	if err := RegisterLLM(r, client, defaults); err != nil {
		t.Fatalf("register llm: %v", err)
	}

	built, err := r.Build([]Spec{
		{ID: "p", Kind: "llm.prompt", Params: map[string]interface{}{"prompt": "summarize"}},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	out, err := built[0].Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "completion for: summarize" {
		t.Fatalf("unexpected output: %v", out)
	}
	if client.lastReq.Model != "default-model" {
		t.Fatalf("expected default model, got %q", client.lastReq.Model)
	}

	// Per-step model override.
	built, err = r.Build([]Spec{
		{ID: "p2", Kind: "llm.prompt", Params: map[string]interface{}{
			"prompt": "translate",
			"model":  "bigger-model",
		}},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := built[0].Execute(context.Background(), nil); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if client.lastReq.Model != "bigger-model" {
		t.Fatalf("expected model override, got %q", client.lastReq.Model)
	}
}

func TestLLMPromptStepRequiresPrompt(t *testing.T) {
	r := newTestRegistry(t)
	if err := RegisterLLM(r, &fakeLLM{}, LLMDefaults{}); err != nil {
		t.Fatalf("register llm: %v", err)
	}
	if _, err := r.Build([]Spec{{ID: "p", Kind: "llm.prompt"}}); err == nil {
		t.Fatal("expected an error for a missing prompt")
	}
}
