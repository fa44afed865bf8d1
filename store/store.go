// Package store defines the typed single-item storage abstraction used by
// dynacache.
//
// Implementations MUST be transparent: Get must return the Item exactly as
// it was last Put for the key (no re-encoding, no mutation, no invented
// fields). Put is an unconditional overwrite; the remote store is the sole
// arbiter of per-key atomicity. Implementations perform no retries and no
// deletes; request deadlines arrive through the context.
package store

import "context"

// Item is one stored row, modeled on a typed attribute set with string,
// binary, numeric-as-string and boolean kinds.
//
// Exactly one of ValueString (string kind) and ValueBytes (binary kind) is
// set, and it must agree with Compressed: compressed payloads live in
// ValueBytes, plain payloads in ValueString. Readers treat disagreement as
// corruption, never as a fallback to the other kind.
type Item struct {
	Key string

	ValueString *string
	ValueBytes  []byte

	// CreatedAt is the entry creation time, decimal unix milliseconds.
	// Always present on a well-formed item.
	CreatedAt string

	Invalidated bool
	Compressed  bool

	// ExpiresAt, when set, is decimal unix seconds after which the store's
	// autonomous expiry sweep may remove the item. Advisory, not
	// instantaneous; always derived from CreatedAt plus a duration, never
	// stored independently.
	ExpiresAt *string
}

// Store is a minimal single-item typed store.
// Must be safe for concurrent use.
type Store interface {
	// Get returns (item, true, nil) on hit; (Item{}, false, nil) on miss.
	// IO/remote errors return (Item{}, false, err) unchanged; the caller
	// does not interpret them.
	Get(ctx context.Context, key string) (Item, bool, error)

	// Put stores the item, unconditionally replacing any existing item
	// under the same key.
	Put(ctx context.Context, item Item) error

	// Close releases resources.
	Close(ctx context.Context) error
}
