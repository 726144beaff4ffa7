// Package blob abstracts binary object storage. The server core treats it
// as a black box: bytes in under a key, bytes out by key.
package blob

import "context"

// Store persists opaque binary blobs. Implementations return
// common.ErrorNotFound when Get misses.
type Store interface {
	// Put stores data under key, overwriting any previous object.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Get retrieves the object stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the object under key. Deleting a missing object is
	// not an error.
	Delete(ctx context.Context, key string) error
}
