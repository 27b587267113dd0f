package todo

import (
	"errors"
	"time"
)

// Todo is a single task owned by exactly one user. OwnerID and CreatedAt are
// fixed at creation; every mutation refreshes UpdatedAt.
type Todo struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Patch carries the fields an update may change. Nil means "leave as is".
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

var (
	ErrInvalidInput       = errors.New("todo: invalid input")
	ErrNotFound           = errors.New("todo: not found")
	ErrStorageUnavailable = errors.New("todo: storage unavailable")
)
