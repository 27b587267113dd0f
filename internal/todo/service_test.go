package todo

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestCreateSetsDefaults(t *testing.T) {
	svc := NewService(NewInMemory())

	created, err := svc.Create(context.Background(), CreateParams{
		OwnerID: "user-a",
		Title:   "  Buy milk  ",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.OwnerID != "user-a" {
		t.Fatalf("unexpected owner: %s", created.OwnerID)
	}
	if created.Title != "Buy milk" {
		t.Fatalf("expected trimmed title, got %q", created.Title)
	}
	if created.Completed {
		t.Fatal("new todos must start incomplete")
	}
	if !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("createdAt %v != updatedAt %v", created.CreatedAt, created.UpdatedAt)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(NewInMemory())

	cases := []CreateParams{
		{OwnerID: "", Title: "x"},
		{OwnerID: "user-a", Title: ""},
		{OwnerID: "user-a", Title: "   "},
	}
	for _, p := range cases {
		if _, err := svc.Create(context.Background(), p); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("Create(%+v): expected ErrInvalidInput, got %v", p, err)
		}
	}
}

func TestTenantIsolation(t *testing.T) {
	svc := NewService(NewInMemory())

	created, err := svc.Create(context.Background(), CreateParams{OwnerID: "user-a", Title: "private"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Update(context.Background(), created.ID, "user-b", Patch{Completed: boolPtr(true)}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
	}

	items, err := svc.List(context.Background(), "user-b")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("owner B must not see owner A's todos, got %d", len(items))
	}
}

func TestListNewestFirst(t *testing.T) {
	repo := NewInMemory()
	svc := NewService(repo)

	var ids []string
	for i := 0; i < 3; i++ {
		created, err := svc.Create(context.Background(), CreateParams{OwnerID: "user-a", Title: fmt.Sprintf("task %d", i)})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, created.ID)
	}

	items, err := svc.List(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for i := range items {
		if items[i].ID != ids[len(ids)-1-i] {
			t.Fatalf("list not newest-first at %d: got %s", i, items[i].ID)
		}
	}
}

func TestUpdateMergesFields(t *testing.T) {
	svc := NewService(NewInMemory())

	created, err := svc.Create(context.Background(), CreateParams{
		OwnerID:     "user-a",
		Title:       "write report",
		Description: "quarterly numbers",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(context.Background(), created.ID, "user-a", Patch{Completed: boolPtr(true)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.Completed {
		t.Fatal("completed flag not applied")
	}
	if updated.Title != "write report" || updated.Description != "quarterly numbers" {
		t.Fatalf("partial update clobbered fields: %+v", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("updatedAt must advance: %v -> %v", created.UpdatedAt, updated.UpdatedAt)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatal("createdAt must never change")
	}
	if updated.OwnerID != created.OwnerID {
		t.Fatal("ownerId must never change")
	}
}

func TestUpdateValidation(t *testing.T) {
	svc := NewService(NewInMemory())

	if _, err := svc.Update(context.Background(), "some-id", "user-a", Patch{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty patch: expected ErrInvalidInput, got %v", err)
	}
	empty := "   "
	if _, err := svc.Update(context.Background(), "some-id", "user-a", Patch{Title: &empty}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank title: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Update(context.Background(), "", "user-a", Patch{Completed: boolPtr(true)}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing id: expected ErrInvalidInput, got %v", err)
	}
}

func TestUpdateMissingRecord(t *testing.T) {
	svc := NewService(NewInMemory())

	_, err := svc.Update(context.Background(), "no-such-id", "user-a", Patch{Completed: boolPtr(true)})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	items, err := svc.List(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 0 {
		t.Fatal("failed update must not create a record")
	}
}

func TestDeleteIdempotent(t *testing.T) {
	repo := NewInMemory()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), CreateParams{OwnerID: "user-a", Title: "temp"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID, "user-a"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID, "user-a"); err != nil {
		t.Fatalf("second delete must also succeed: %v", err)
	}
	if _, err := repo.GetByKey(context.Background(), created.ID, "user-a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected record gone, got %v", err)
	}
}

func TestStorageFaultPropagates(t *testing.T) {
	svc := NewService(faultyRepo{})

	_, err := svc.Create(context.Background(), CreateParams{OwnerID: "user-a", Title: "x"})
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if _, err := svc.List(context.Background(), "user-a"); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

// faultyRepo simulates a throttled/unreachable backend.
type faultyRepo struct{}

func (faultyRepo) Save(ctx context.Context, t Todo) error { return ErrStorageUnavailable }
func (faultyRepo) GetByKey(ctx context.Context, id, ownerID string) (Todo, error) {
	return Todo{}, ErrStorageUnavailable
}
func (faultyRepo) ListByOwner(ctx context.Context, ownerID string) ([]Todo, error) {
	return nil, ErrStorageUnavailable
}
func (faultyRepo) DeleteByKey(ctx context.Context, id, ownerID string) error {
	return ErrStorageUnavailable
}

func boolPtr(b bool) *bool { return &b }
