// Package kv is a small durable key/value layer with a plain string keyspace and
// string hashes. Backends: Redis, SQLite, in-memory.
package kv

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("kv: key not found")
	// ErrConflict is returned when an optimistic update keeps losing races.
	ErrConflict = errors.New("kv: update conflict")
)

// UpdateFunc receives the current value of a key and returns the value to store.
// Returning the current value unchanged skips the write.
type UpdateFunc func(current string, found bool) (string, error)

// Store defines the operations the watchlist and RSI repositories need.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Update applies fn atomically against concurrent writers of the same key
	// and returns the stored value.
	Update(ctx context.Context, key string, fn UpdateFunc) (string, error)

	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HSet(ctx context.Context, key string, values map[string]string) error
	HDel(ctx context.Context, key string, fields ...string) error

	Ping(ctx context.Context) error
	Close() error
}
