// Package kv is the key-value substrate of the vault: a flat map of string
// keys to opaque byte values. Absent keys read as nil without an error.
package kv

import (
	"context"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}

// Store is a Repository that can also apply several writes atomically.
type Store interface {
	Repository
	// Batch runs fn against a repository bound to a single transaction.
	// Every write made through it is committed together or not at all.
	Batch(ctx context.Context, fn func(ctx context.Context, r Repository) error) error
}
