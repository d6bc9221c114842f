package kv

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get for keys that do not exist.
var ErrKeyNotFound = errors.New("key not found")

// Store is a flat, process-wide map from string keys to JSON-encoded
// values. It mirrors the capability set of the mobile client's local
// storage: get, set, remove, key listing and batched reads. All methods
// may fail with an I/O error from the backing medium.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	// ListKeys returns all keys starting with prefix; "" lists everything.
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	// MultiGet fetches a batch of keys; missing keys are absent from the
	// result rather than an error.
	MultiGet(ctx context.Context, keys []string) (map[string][]byte, error)
}
