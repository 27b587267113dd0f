package todo

import (
	"context"
	"sync"
)

// InMemory implements Repository with in-process concurrency safety. It is
// the default backend for tests and local runs; durable backends live in
// internal/store.
type InMemory struct {
	mu     sync.RWMutex
	owners map[string]map[string]Todo // owner -> id -> todo
}

var _ Repository = (*InMemory)(nil)

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{owners: make(map[string]map[string]Todo)}
}

func (s *InMemory) Save(ctx context.Context, t Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	part, ok := s.owners[t.OwnerID]
	if !ok {
		part = make(map[string]Todo)
		s.owners[t.OwnerID] = part
	}
	part[t.ID] = t
	return nil
}

func (s *InMemory) GetByKey(ctx context.Context, id, ownerID string) (Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.owners[ownerID][id]
	if !ok {
		return Todo{}, ErrNotFound
	}
	return t, nil
}

func (s *InMemory) ListByOwner(ctx context.Context, ownerID string) ([]Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	part := s.owners[ownerID]
	out := make([]Todo, 0, len(part))
	for _, t := range part {
		out = append(out, t)
	}
	return out, nil
}

func (s *InMemory) DeleteByKey(ctx context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if part, ok := s.owners[ownerID]; ok {
		delete(part, id)
	}
	return nil
}
