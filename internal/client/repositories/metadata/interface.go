// Package metadata persists the console's session key/value pairs
// (encoded credential, current username) in the local SQLite database.
package metadata

import (
	"context"
)

// Repository is a synchronous key/value store. Get returns (nil, nil) for an
// absent key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}
