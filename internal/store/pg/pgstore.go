package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"taskdesk.org/internal/todo"
)

// Store is the Postgres-backed todo repository. All queries are bounded by
// the owner key; there is no code path that reads another tenant's rows.
type Store struct {
	db *sql.DB
}

var _ todo.Repository = (*Store)(nil)

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing handle. Used by tests and the migrate CLI.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Save(ctx context.Context, t todo.Todo) error {
	_, err := s.db.ExecContext(ctx, `
		insert into todos(user_id, todo_id, title, description, completed, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7)
		on conflict (user_id, todo_id) do update
		set title = excluded.title,
		    description = excluded.description,
		    completed = excluded.completed,
		    updated_at = excluded.updated_at
	`, t.OwnerID, t.ID, t.Title, t.Description, t.Completed, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return storageErr("save todo", err)
	}
	return nil
}

func (s *Store) GetByKey(ctx context.Context, id, ownerID string) (todo.Todo, error) {
	var t todo.Todo
	err := s.db.QueryRowContext(ctx, `
		select user_id, todo_id, title, description, completed, created_at, updated_at
		from todos where user_id=$1 and todo_id=$2
	`, ownerID, id).Scan(&t.OwnerID, &t.ID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return todo.Todo{}, todo.ErrNotFound
	}
	if err != nil {
		return todo.Todo{}, storageErr("get todo", err)
	}
	return t, nil
}

func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]todo.Todo, error) {
	rows, err := s.db.QueryContext(ctx, `
		select user_id, todo_id, title, description, completed, created_at, updated_at
		from todos where user_id=$1
		order by created_at desc, todo_id desc
	`, ownerID)
	if err != nil {
		return nil, storageErr("list todos", err)
	}
	defer rows.Close()

	var res []todo.Todo
	for rows.Next() {
		var t todo.Todo
		if err := rows.Scan(&t.OwnerID, &t.ID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, storageErr("scan todo", err)
		}
		res = append(res, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list todos", err)
	}
	return res, nil
}

func (s *Store) DeleteByKey(ctx context.Context, id, ownerID string) error {
	// Absence is success: delete is idempotent by contract.
	_, err := s.db.ExecContext(ctx, `delete from todos where user_id=$1 and todo_id=$2`, ownerID, id)
	if err != nil {
		return storageErr("delete todo", err)
	}
	return nil
}

// storageErr keeps backend faults distinguishable from not-found. They must
// surface as 500s, never be downgraded.
func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", todo.ErrStorageUnavailable, op, err)
}
