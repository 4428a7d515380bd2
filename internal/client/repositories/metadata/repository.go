// Package metadata is the local persistent key/value store of the client.
// Values are opaque byte slices; callers choose the encoding (the auth layer
// stores JSON documents).
package metadata

import (
	"context"
)

// Repository is a string-keyed blob store.
//
// Get returns (nil, nil) for an absent key. Set upserts. Delete and
// DeleteKeys are idempotent.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	DeleteKeys(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
