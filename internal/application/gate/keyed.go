package gate

import "sync"

// keyedStore holds lazily created per-key state. Each key's
// read-modify-write runs under its own lock, so Evaluate observes and
// mutates breaker and bucket state atomically per key even under real
// goroutine parallelism.
type keyedStore[V any] struct {
	mu      sync.RWMutex
	entries map[string]*keyedEntry[V]
}

type keyedEntry[V any] struct {
	mu  sync.Mutex
	val V
}

func newKeyedStore[V any]() *keyedStore[V] {
	return &keyedStore[V]{entries: make(map[string]*keyedEntry[V])}
}

// update runs fn against the entry for key, creating it with init on
// first use. fn executes under the entry lock.
func (s *keyedStore[V]) update(key string, init func() V, fn func(val V)) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		s.mu.Lock()
		e, ok = s.entries[key]
		if !ok {
			e = &keyedEntry[V]{val: init()}
			s.entries[key] = e
		}
		s.mu.Unlock()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.val)
}

// each visits every entry under its lock, in no particular order.
func (s *keyedStore[V]) each(fn func(key string, val V)) {
	s.mu.RLock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	s.mu.RUnlock()

	for _, k := range keys {
		s.mu.RLock()
		e, ok := s.entries[k]
		s.mu.RUnlock()
		if !ok {
			continue
		}
		e.mu.Lock()
		fn(k, e.val)
		e.mu.Unlock()
	}
}
