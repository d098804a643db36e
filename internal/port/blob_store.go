package port

import (
	"context"
	"time"
)

// BlobStore is a key-addressed binary object store. Keys are opaque to
// the store; the archive derives and re-parses them itself.
type BlobStore interface {
	// Put stores payload under key with the given content type and
	// informational metadata.
	Put(ctx context.Context, key, contentType string, metadata map[string]string, payload []byte) error

	// List returns the keys of all stored objects whose key begins with
	// prefix, in the store's native listing order.
	List(ctx context.Context, prefix string) ([]string, error)

	// SignedURL issues a time-limited read URL for an object.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
