// Package kvstore provides the durable key-value backends used for session
// state: the serialised cart and the "last order" pointer.
//
// Writes are last-write-wins. Two sessions or two instances writing the same
// key concurrently overwrite each other.
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is a durable key-value store.
type Store interface {
	// Get returns the value stored at key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value at key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Key namespace shared by every backend. The version segment lets a schema
// change start from a fresh key instead of misreading old data.
const (
	keyNamespace    = "dulcekart"
	CartKeyVersion  = "v1"
	OrderKeyVersion = "v1"
)

// CartKey returns the storage key for a session's cart.
func CartKey(sessionID string) string {
	return keyNamespace + ":cart:" + CartKeyVersion + ":" + sessionID
}

// LastOrderKey returns the storage key for a user's last order id.
func LastOrderKey(scope string) string {
	return keyNamespace + ":last-order:" + OrderKeyVersion + ":" + scope
}
