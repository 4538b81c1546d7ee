// Package memory provides an in-memory audit store for development and
// tests.
package memory

import (
	"context"
	"sync"

	id "academy/pkg/domain"
	"academy/pkg/platform/audit"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

var _ audit.Store = (*InMemoryStore)(nil)

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListByStudent(_ context.Context, studentID id.StudentID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, event := range s.events {
		if event.StudentID == studentID {
			out = append(out, event)
		}
	}
	return out, nil
}
