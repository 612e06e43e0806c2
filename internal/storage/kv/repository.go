// Package kv provides the key/value scopes the application persists into.
//
// The durable scope holds the document blob and the month configuration; the
// session scope holds the current-user marker. Every backend honours the same
// contract: Get returns (nil, nil) for an absent key, Delete is idempotent,
// and values are opaque byte slices.
package kv

import (
	"context"
	"io"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetMany writes all pairs atomically where the backend allows it.
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}

// Store is a Repository that owns a connection.
type Store interface {
	Repository
	io.Closer
}
