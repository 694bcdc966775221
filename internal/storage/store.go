package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested object key does not exist.
var ErrNotFound = errors.New("storage: object not found")

// Source is the read side of an object store.
type Source interface {
	// List returns the object keys under the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	// Download returns the object's bytes.
	Download(ctx context.Context, key string) ([]byte, error)
}

// Destination is the write side of an object store. Upload is idempotent
// under retry: same key, same bytes, safe to repeat. Callers must not write
// the same key from two workers concurrently.
type Destination interface {
	Upload(ctx context.Context, key string, data []byte) error
}

// Waiter gates storage requests; satisfied by worker.Limiter.
type Waiter interface {
	Wait(ctx context.Context, container string) error
}
