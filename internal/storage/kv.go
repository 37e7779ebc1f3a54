// Package storage provides the namespaced key-value store backing the
// tracker. Every persisted entity lives under a string key (profile-scoped
// via key prefixes); values are JSON or scalar strings.
package storage

import "context"

// KV is the storage contract: get/set/remove/enumerate string keys.
type KV interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns all keys starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
