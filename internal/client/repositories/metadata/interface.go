package metadata

import (
	"context"
)

// Repository is a flat key/value store. Get returns (nil, nil) for a
// missing key; Delete of a missing key is not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}

// Store is a Repository that can apply several writes atomically.
//
// Batch calls fn with a Repository whose writes become visible to other
// readers all at once when fn returns nil, and are discarded when it returns
// an error. Reads inside fn observe the batch's own pending writes.
type Store interface {
	Repository
	Batch(ctx context.Context, fn func(ctx context.Context, r Repository) error) error
	Close() error
}
