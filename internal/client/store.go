// Package client holds the synchronization store behind the thin client:
// the in-memory todo list, optimistic mutations, and their reconciliation
// with server responses.
package client

import (
	"context"
	"sync"

	"taskdesk.org/internal/todo"
)

// Store applies delete and toggle optimistically: local state mutates
// before the network call resolves, and on failure it is restored from the
// exact snapshot taken immediately before the apply. Create is not
// optimistic; the list only gains the record the server returns.
//
// The snapshot/apply and commit/rollback steps are atomic with respect to
// Todos(); no reader observes a half-applied mutation. Overlapping
// mutations on the same record are last-response-wins: a slow response
// commits or rolls back against whatever the state is by then. There is no
// per-record queueing.
type Store struct {
	gateway Gateway

	mu     sync.Mutex
	todos  []todo.Todo
	loaded bool
	err    error
}

// New creates an uninitialized store; Fetch loads the list.
func New(gateway Gateway) *Store {
	return &Store{gateway: gateway}
}

// Todos returns a copy of the current list in render order.
func (s *Store) Todos() []todo.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]todo.Todo, len(s.todos))
	copy(out, s.todos)
	return out
}

// Loaded reports whether the initial fetch has completed.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Err returns the last surfaced error, if any.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// ClearError resets the surfaced error.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = nil
}

// Fetch replaces the list with the server's view.
func (s *Store) Fetch(ctx context.Context) error {
	items, err := s.gateway.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.err = err
		return err
	}
	s.todos = items
	s.loaded = true
	s.err = nil
	return nil
}

// Add creates a todo on the server and prepends the returned record. A
// failed create leaves the list unchanged.
func (s *Store) Add(ctx context.Context, title, description string) (todo.Todo, error) {
	created, err := s.gateway.Create(ctx, title, description)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.err = err
		return todo.Todo{}, err
	}
	s.todos = append([]todo.Todo{created}, s.todos...)
	s.err = nil
	return created, nil
}

// Update sends a patch and replaces the local record with the server's
// authoritative response. Not optimistic.
func (s *Store) Update(ctx context.Context, id string, patch todo.Patch) (todo.Todo, error) {
	updated, err := s.gateway.Update(ctx, id, patch)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.err = err
		return todo.Todo{}, err
	}
	s.replaceLocked(updated)
	s.err = nil
	return updated, nil
}

// Delete removes the record locally before the network call resolves. On
// failure the pre-mutation snapshot is restored and the error surfaced.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	snapshot := s.snapshotLocked()
	filtered := s.todos[:0:0]
	for _, t := range s.todos {
		if t.ID != id {
			filtered = append(filtered, t)
		}
	}
	s.todos = filtered
	s.mu.Unlock()

	if err := s.gateway.Delete(ctx, id); err != nil {
		s.mu.Lock()
		s.todos = snapshot
		s.err = err
		s.mu.Unlock()
		return err
	}
	// Success: the record is already gone locally.
	return nil
}

// Toggle flips the record's completed flag from the local value, applies it
// optimistically, and reconciles with the server's returned record. On
// failure the pre-mutation snapshot is restored exactly.
func (s *Store) Toggle(ctx context.Context, id string) (todo.Todo, error) {
	s.mu.Lock()
	current, ok := s.findLocked(id)
	if !ok {
		s.mu.Unlock()
		return todo.Todo{}, todo.ErrNotFound
	}
	snapshot := s.snapshotLocked()
	flipped := !current.Completed
	optimistic := current
	optimistic.Completed = flipped
	s.replaceLocked(optimistic)
	s.mu.Unlock()

	updated, err := s.gateway.Update(ctx, id, todo.Patch{Completed: &flipped})

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.todos = snapshot
		s.err = err
		return todo.Todo{}, err
	}
	// Server response carries fields the client could not predict (updatedAt).
	s.replaceLocked(updated)
	s.err = nil
	return updated, nil
}

func (s *Store) snapshotLocked() []todo.Todo {
	snap := make([]todo.Todo, len(s.todos))
	copy(snap, s.todos)
	return snap
}

func (s *Store) findLocked(id string) (todo.Todo, bool) {
	for _, t := range s.todos {
		if t.ID == id {
			return t, true
		}
	}
	return todo.Todo{}, false
}

func (s *Store) replaceLocked(updated todo.Todo) {
	for i, t := range s.todos {
		if t.ID == updated.ID {
			s.todos[i] = updated
			return
		}
	}
}
