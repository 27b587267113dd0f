// Package redisstore is the Redis-backed todo repository. Each record lives
// at its own composite key and a per-owner set indexes the partition, so
// reads are always bounded by the owner key and never scan the keyspace.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"taskdesk.org/internal/todo"
)

const keyPrefix = "todo:"

// Store implements todo.Repository on a redis client.
type Store struct {
	client *redis.Client
}

var _ todo.Repository = (*Store)(nil)

// Open connects to the given address.
func Open(addr string) *Store {
	return &Store{client: redis.NewClient(&redis.Options{Addr: addr})}
}

// NewWithClient wraps an existing client. Used by tests.
func NewWithClient(client *redis.Client) *Store { return &Store{client: client} }

func (s *Store) Close() error { return s.client.Close() }

// Ping reports backend reachability for the readiness probe.
func (s *Store) Ping(ctx context.Context) error { return s.client.Ping(ctx).Err() }

func recordKey(ownerID, id string) string { return keyPrefix + ownerID + ":" + id }
func indexKey(ownerID string) string      { return keyPrefix + "index:" + ownerID }

func (s *Store) Save(ctx context.Context, t todo.Todo) error {
	data, err := json.Marshal(t)
	if err != nil {
		return storageErr("encode todo", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, recordKey(t.OwnerID, t.ID), data, 0)
		pipe.SAdd(ctx, indexKey(t.OwnerID), t.ID)
		return nil
	})
	if err != nil {
		return storageErr("save todo", err)
	}
	return nil
}

func (s *Store) GetByKey(ctx context.Context, id, ownerID string) (todo.Todo, error) {
	data, err := s.client.Get(ctx, recordKey(ownerID, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return todo.Todo{}, todo.ErrNotFound
	}
	if err != nil {
		return todo.Todo{}, storageErr("get todo", err)
	}
	var t todo.Todo
	if err := json.Unmarshal(data, &t); err != nil {
		return todo.Todo{}, storageErr("decode todo", err)
	}
	return t, nil
}

func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]todo.Todo, error) {
	ids, err := s.client.SMembers(ctx, indexKey(ownerID)).Result()
	if err != nil {
		return nil, storageErr("list index", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = recordKey(ownerID, id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, storageErr("list todos", err)
	}

	res := make([]todo.Todo, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index entry without a record: a delete raced the index update.
			s.client.SRem(ctx, indexKey(ownerID), ids[i])
			continue
		}
		var t todo.Todo
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return nil, storageErr("decode todo", err)
		}
		res = append(res, t)
	}
	return res, nil
}

func (s *Store) DeleteByKey(ctx context.Context, id, ownerID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, recordKey(ownerID, id))
		pipe.SRem(ctx, indexKey(ownerID), id)
		return nil
	})
	if err != nil {
		return storageErr("delete todo", err)
	}
	return nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", todo.ErrStorageUnavailable, op, err)
}
