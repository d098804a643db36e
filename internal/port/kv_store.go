package port

import "context"

// KeyValueStore is a string-keyed, string-valued store. It has no
// numeric or transactional operations; the ledger owns all decrement
// semantics on top of plain reads and writes.
type KeyValueStore interface {
	// Get returns the value for key. ok is false when the key is absent;
	// an absent key is not an error.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Put writes value under key, creating or overwriting it.
	Put(ctx context.Context, key, value string) error
}
