package dynacache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/dynacache/codec"
	st "github.com/unkn0wn-root/dynacache/store"
)

// Entry is the unit exchanged with the calling cache layer.
type Entry[V any] struct {
	Value V

	// CreatedAt is when the entry was produced, unix milliseconds.
	// Zero on Set means "now".
	CreatedAt int64

	// Invalidated marks the entry explicitly stale. Distinct from TTL
	// expiry; the stored item stays readable, callers decide what a stale
	// hit means.
	Invalidated bool

	// TTL, when positive, asks the store to expire the item once
	// CreatedAt+TTL has passed (whole-second granularity on the store
	// side). Write-side only; Get never reconstructs it.
	TTL time.Duration
}

// Cache is the store-agnostic adapter API.
// V is the caller's value type. Serialization is handled by a pluggable Codec[V].
type Cache[V any] interface {
	// Get fetches the entry under key. ok=false with a nil error is a
	// miss. Corrupt items are reported through Hooks and read as misses.
	Get(ctx context.Context, key string) (e Entry[V], ok bool, err error)

	// Set writes the entry under key, unconditionally replacing any
	// existing item (last-writer-wins; no read-modify-write atomicity).
	Set(ctx context.Context, key string, e Entry[V]) error

	Close(context.Context) error
}

// Options tune the adapter. Only Store is required.
type Options[V any] struct {
	// Required
	Store st.Store

	Codec          c.Codec[V]    // nil => codec.JSON[V]{}
	Compress       bool          // gzip payloads into the binary value kind
	RequestTimeout time.Duration // per Get/Set deadline; 0 => 3s
	Logger         Logger        // nil => NopLogger
	Hooks          Hooks         // nil => NopHooks
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
