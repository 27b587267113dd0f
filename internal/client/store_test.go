package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskdesk.org/internal/todo"
)

// fakeGateway lets tests fail individual calls and observe store state at
// the moment a call is in flight.
type fakeGateway struct {
	createFn func(ctx context.Context, title, description string) (todo.Todo, error)
	listFn   func(ctx context.Context) ([]todo.Todo, error)
	updateFn func(ctx context.Context, id string, patch todo.Patch) (todo.Todo, error)
	deleteFn func(ctx context.Context, id string) error
}

func (f *fakeGateway) Create(ctx context.Context, title, description string) (todo.Todo, error) {
	return f.createFn(ctx, title, description)
}
func (f *fakeGateway) List(ctx context.Context) ([]todo.Todo, error) { return f.listFn(ctx) }
func (f *fakeGateway) Update(ctx context.Context, id string, patch todo.Patch) (todo.Todo, error) {
	return f.updateFn(ctx, id, patch)
}
func (f *fakeGateway) Delete(ctx context.Context, id string) error { return f.deleteFn(ctx, id) }

func seededStore(gw *fakeGateway, items ...todo.Todo) *Store {
	s := New(gw)
	s.todos = items
	s.loaded = true
	return s
}

func record(id, title string, completed bool) todo.Todo {
	now := time.Now().UTC()
	return todo.Todo{
		ID:        id,
		OwnerID:   "user-a",
		Title:     title,
		Completed: completed,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestFetchLoadsList(t *testing.T) {
	items := []todo.Todo{record("t1", "one", false)}
	gw := &fakeGateway{listFn: func(ctx context.Context) ([]todo.Todo, error) { return items, nil }}
	s := New(gw)

	if s.Loaded() {
		t.Fatal("store must start uninitialized")
	}
	if err := s.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !s.Loaded() || len(s.Todos()) != 1 {
		t.Fatalf("unexpected state after fetch: %+v", s.Todos())
	}
}

func TestToggleIsOptimisticThenReconciles(t *testing.T) {
	t1 := record("t1", "one", false)

	var observedDuringFlight bool
	server := t1
	server.Completed = true
	server.UpdatedAt = t1.UpdatedAt.Add(time.Second)

	var s *Store
	gw := &fakeGateway{
		updateFn: func(ctx context.Context, id string, patch todo.Patch) (todo.Todo, error) {
			// The flip must already be visible while the call is in flight.
			observedDuringFlight = s.Todos()[0].Completed
			return server, nil
		},
	}
	s = seededStore(gw, t1)

	updated, err := s.Toggle(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !observedDuringFlight {
		t.Fatal("optimistic flip not visible before the network call resolved")
	}
	if !updated.UpdatedAt.Equal(server.UpdatedAt) {
		t.Fatal("server record did not replace local state")
	}
	if got := s.Todos()[0]; !got.Completed || !got.UpdatedAt.Equal(server.UpdatedAt) {
		t.Fatalf("local state not reconciled: %+v", got)
	}
}

func TestToggleRollsBackExactlyOnFailure(t *testing.T) {
	t1 := record("t1", "one", false)

	var s *Store
	gw := &fakeGateway{
		updateFn: func(ctx context.Context, id string, patch todo.Patch) (todo.Todo, error) {
			if !s.Todos()[0].Completed {
				t.Fatal("expected optimistic state during flight")
			}
			return todo.Todo{}, errors.New("network down")
		},
	}
	s = seededStore(gw, t1)

	if _, err := s.Toggle(context.Background(), "t1"); err == nil {
		t.Fatal("expected failure")
	}

	got := s.Todos()[0]
	if got.Completed {
		t.Fatal("rollback did not restore completed flag")
	}
	if got != t1 {
		t.Fatalf("rollback left residual changes: %+v != %+v", got, t1)
	}
	if s.Err() == nil {
		t.Fatal("failure must be surfaced")
	}
}

func TestToggleUnknownRecord(t *testing.T) {
	s := seededStore(&fakeGateway{})
	if _, err := s.Toggle(context.Background(), "nope"); !errors.Is(err, todo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteIsOptimisticAndCommits(t *testing.T) {
	t1 := record("t1", "one", false)
	t2 := record("t2", "two", false)

	var lenDuringFlight int
	var s *Store
	gw := &fakeGateway{
		deleteFn: func(ctx context.Context, id string) error {
			lenDuringFlight = len(s.Todos())
			return nil
		},
	}
	s = seededStore(gw, t1, t2)

	if err := s.Delete(context.Background(), "t1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if lenDuringFlight != 1 {
		t.Fatalf("record not removed before the call resolved: len=%d", lenDuringFlight)
	}
	if got := s.Todos(); len(got) != 1 || got[0].ID != "t2" {
		t.Fatalf("unexpected list after delete: %+v", got)
	}
}

func TestDeleteRollsBackOnFailure(t *testing.T) {
	t1 := record("t1", "one", false)
	t2 := record("t2", "two", true)

	gw := &fakeGateway{
		deleteFn: func(ctx context.Context, id string) error { return errors.New("boom") },
	}
	s := seededStore(gw, t1, t2)

	if err := s.Delete(context.Background(), "t1"); err == nil {
		t.Fatal("expected failure")
	}
	got := s.Todos()
	if len(got) != 2 || got[0] != t1 || got[1] != t2 {
		t.Fatalf("snapshot not restored: %+v", got)
	}
}

func TestAddIsNotOptimistic(t *testing.T) {
	created := record("server-id", "new", false)

	calls := 0
	gw := &fakeGateway{
		createFn: func(ctx context.Context, title, description string) (todo.Todo, error) {
			calls++
			if calls == 1 {
				return todo.Todo{}, errors.New("rejected")
			}
			return created, nil
		},
	}
	s := seededStore(gw)

	if _, err := s.Add(context.Background(), "new", ""); err == nil {
		t.Fatal("expected failure")
	}
	if len(s.Todos()) != 0 {
		t.Fatal("failed create must leave the list unchanged")
	}

	got, err := s.Add(context.Background(), "new", "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got.ID != "server-id" {
		t.Fatalf("store must insert the server-assigned record, got %+v", got)
	}
	if list := s.Todos(); len(list) != 1 || list[0].ID != "server-id" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestAddPrependsNewest(t *testing.T) {
	old := record("t1", "old", false)
	created := record("t2", "new", false)

	gw := &fakeGateway{
		createFn: func(ctx context.Context, title, description string) (todo.Todo, error) {
			return created, nil
		},
	}
	s := seededStore(gw, old)

	if _, err := s.Add(context.Background(), "new", ""); err != nil {
		t.Fatalf("Add: %v", err)
	}
	list := s.Todos()
	if list[0].ID != "t2" || list[1].ID != "t1" {
		t.Fatalf("new todo must be first: %+v", list)
	}
}
