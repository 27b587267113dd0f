package todo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"taskdesk.org/internal/ids"
)

// Service implements the one-shot CRUD use cases over a Repository. Each
// invocation validates first and fails fast before touching storage.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires the use cases to a repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// CreateParams carries the caller-supplied fields for a new todo. The id is
// generated server-side and never accepted from the client.
type CreateParams struct {
	OwnerID     string
	Title       string
	Description string
}

// Create validates input and persists a fresh record with Completed=false
// and CreatedAt==UpdatedAt.
func (s *Service) Create(ctx context.Context, p CreateParams) (Todo, error) {
	owner := strings.TrimSpace(p.OwnerID)
	if owner == "" {
		return Todo{}, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return Todo{}, fmt.Errorf("%w: title is required and cannot be empty", ErrInvalidInput)
	}

	now := s.now()
	t := Todo{
		ID:          ids.New(),
		OwnerID:     owner,
		Title:       title,
		Description: p.Description,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Save(ctx, t); err != nil {
		return Todo{}, err
	}
	return t, nil
}

// List returns the owner's todos, newest first. The ordering is part of the
// API contract; clients render the list as returned.
func (s *Service) List(ctx context.Context, ownerID string) ([]Todo, error) {
	owner := strings.TrimSpace(ownerID)
	if owner == "" {
		return nil, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}
	items, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
	return items, nil
}

// Update merges the patch over the stored record and refreshes UpdatedAt.
// An absent record yields ErrNotFound; no record is created as a side
// effect. OwnerID and CreatedAt are never touched.
func (s *Service) Update(ctx context.Context, id, ownerID string, patch Patch) (Todo, error) {
	owner := strings.TrimSpace(ownerID)
	if owner == "" {
		return Todo{}, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(id) == "" {
		return Todo{}, fmt.Errorf("%w: todo id is required", ErrInvalidInput)
	}
	if patch.IsEmpty() {
		return Todo{}, fmt.Errorf("%w: no updates provided", ErrInvalidInput)
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return Todo{}, fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
	}

	existing, err := s.repo.GetByKey(ctx, id, owner)
	if err != nil {
		return Todo{}, err
	}

	merged := existing
	if patch.Title != nil {
		merged.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		merged.Description = *patch.Description
	}
	if patch.Completed != nil {
		merged.Completed = *patch.Completed
	}
	now := s.now()
	if !now.After(existing.UpdatedAt) {
		// Clock did not advance within this tick; UpdatedAt must still move forward.
		now = existing.UpdatedAt.Add(time.Millisecond)
	}
	merged.UpdatedAt = now

	if err := s.repo.Save(ctx, merged); err != nil {
		return Todo{}, err
	}
	return merged, nil
}

// Delete removes the record at (owner, id). Deleting an absent record is
// success, so the operation is safe to repeat.
func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	owner := strings.TrimSpace(ownerID)
	if owner == "" {
		return fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: todo id is required", ErrInvalidInput)
	}
	return s.repo.DeleteByKey(ctx, id, owner)
}
