package memory

import (
	"context"
	"sync"

	audit "ebirth/pkg/platform/audit"
)

// InMemoryStore keeps audit events in process memory. Default sink for
// development and the backing assertion point for tests.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(ctx context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListByUBRN returns events for one registration, oldest first.
func (s *InMemoryStore) ListByUBRN(ctx context.Context, ubrn string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []audit.Event
	for _, e := range s.events {
		if e.UBRN == ubrn {
			out = append(out, e)
		}
	}
	return out, nil
}

// All returns every stored event, oldest first.
func (s *InMemoryStore) All() []audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]audit.Event, len(s.events))
	copy(out, s.events)
	return out
}
