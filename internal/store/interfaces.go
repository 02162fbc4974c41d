package store

import (
	"context"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// KeyValueStorage is the persistence collaborator of the credential store:
// a flat string-to-string map shared by every named service. Each Set
// replaces the value under key atomically, so a reader never sees a partly
// written record.
type KeyValueStorage interface {
	// Get returns the value stored under key. ok is false when the key is
	// absent; that is not an error.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key succeeds.
	Remove(ctx context.Context, key string) error

	// Keys lists the stored keys that start with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases the underlying resources.
	Close() error
}

// Watcher is implemented by storages that can notice changes made by other
// processes. onChange is called from a background goroutine until ctx is
// done.
type Watcher interface {
	Watch(ctx context.Context, onChange func()) error
}
