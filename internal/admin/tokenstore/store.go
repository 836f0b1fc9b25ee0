// Package tokenstore persists the single admin bearer credential.
//
// The store performs no expiry tracking: a stale token is only discovered
// when an authenticated call comes back 401/403.
package tokenstore

import "context"

// Key is the stable name under which the token is persisted.
const Key = "lockme_token"

// Store is a key-value abstraction over durable client storage holding one
// bearer token. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the current token; ok is false when none is stored.
	Get(ctx context.Context) (token string, ok bool, err error)
	// Set persists token, replacing any previous value.
	Set(ctx context.Context, token string) error
	// Clear removes the token. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
