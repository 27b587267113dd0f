package todo

import "context"

// Repository persists todos under the composite key (owner, id). Every
// operation takes the owner explicitly; records are never addressable by id
// alone, which is what keeps one tenant out of another tenant's data.
//
// Implementations return ErrNotFound for an absent key on reads, succeed on
// deletes of absent keys, and wrap backend faults in ErrStorageUnavailable
// rather than masking them as not-found.
type Repository interface {
	Save(ctx context.Context, t Todo) error
	GetByKey(ctx context.Context, id, ownerID string) (Todo, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Todo, error)
	DeleteByKey(ctx context.Context, id, ownerID string) error
}
