package memory

import (
	"context"
	"sync"

	"github.com/aescanero/awo/pkg/ports"
)

// EventBus implements ports.EventBus with in-memory handlers.
// This is for testing purposes only.
type EventBus struct {
	subscribers map[string][]ports.EventHandler
	mu          sync.RWMutex
}

// NewEventBus creates a new in-memory event bus.
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[string][]ports.EventHandler),
	}
}

// Publish delivers an event to every subscriber of the topic. Handler
// errors are swallowed; telemetry is fire-and-forget.
func (e *EventBus) Publish(ctx context.Context, topic string, event ports.Event) error {
	e.mu.RLock()
	handlers := make([]ports.EventHandler, len(e.subscribers[topic]))
	copy(handlers, e.subscribers[topic])
	e.mu.RUnlock()

	for _, handler := range handlers {
		_ = handler(ctx, event)
	}

	return nil
}

// Subscribe registers a handler for a topic.
func (e *EventBus) Subscribe(ctx context.Context, topic string, handler ports.EventHandler) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.subscribers[topic] = append(e.subscribers[topic], handler)
	return nil
}

// Close drops all subscriptions.
func (e *EventBus) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.subscribers = make(map[string][]ports.EventHandler)
	return nil
}
