package dynacache

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	st "github.com/unkn0wn-root/dynacache/store"
)

// Corruption reasons passed to Hooks.CorruptEntry.
const (
	reasonBinaryMissing = "binary_missing"
	reasonStringMissing = "string_missing"
	reasonPayload       = "payload_decode"
	reasonTimestamp     = "timestamp"
)

// buildItem converts an entry into the typed row stored remotely.
// Deterministic: the same entry always yields the same item, so repeated
// writes leave the stored row byte-identical.
func (cc *cache[V]) buildItem(key string, e Entry[V]) (st.Item, error) {
	payload, err := cc.codec.Encode(e.Value)
	if err != nil {
		// caller contract violation (unencodable value); fail the write
		return st.Item{}, fmt.Errorf("dynacache: encode value for %q: %w", key, err)
	}

	createdAt := e.CreatedAt
	if createdAt == 0 {
		createdAt = time.Now().UnixMilli()
	}

	it := st.Item{
		Key:         key,
		CreatedAt:   strconv.FormatInt(createdAt, 10),
		Invalidated: e.Invalidated,
		Compressed:  cc.compress,
	}
	if cc.compress {
		b, err := gzipBytes(payload)
		if err != nil {
			return st.Item{}, fmt.Errorf("dynacache: compress value for %q: %w", key, err)
		}
		it.ValueBytes = b
	} else {
		s := string(payload)
		it.ValueString = &s
	}
	if e.TTL > 0 {
		// the store's expiry sweep works in whole unix seconds
		exp := (createdAt + e.TTL.Milliseconds()) / 1000
		v := strconv.FormatInt(exp, 10)
		it.ExpiresAt = &v
	}
	return it, nil
}

// parseItem reconstructs an entry from a stored row. A row whose value kind
// disagrees with the compressed flag, or whose payload does not decode, is
// reported through the hooks and read as a miss. Never falls back to the
// other value kind.
func (cc *cache[V]) parseItem(it st.Item) (Entry[V], bool) {
	var zero Entry[V]

	var payload []byte
	if it.Compressed {
		if it.ValueBytes == nil {
			cc.reportCorrupt(it.Key, reasonBinaryMissing,
				errors.New("compressed flag set but binary value missing"))
			return zero, false
		}
		b, err := gunzipBytes(it.ValueBytes)
		if err != nil {
			cc.reportCorrupt(it.Key, reasonPayload, err)
			return zero, false
		}
		payload = b
	} else {
		if it.ValueString == nil {
			cc.reportCorrupt(it.Key, reasonStringMissing,
				errors.New("string value missing"))
			return zero, false
		}
		payload = []byte(*it.ValueString)
	}

	v, err := cc.codec.Decode(payload)
	if err != nil {
		cc.reportCorrupt(it.Key, reasonPayload, err)
		return zero, false
	}

	createdAt, err := strconv.ParseInt(it.CreatedAt, 10, 64)
	if err != nil {
		cc.reportCorrupt(it.Key, reasonTimestamp, err)
		return zero, false
	}

	// ExpiresAt stays store-only; it is an eviction hint, not entry state
	return Entry[V]{Value: v, CreatedAt: createdAt, Invalidated: it.Invalidated}, true
}

func (cc *cache[V]) reportCorrupt(key, reason string, cause error) {
	cc.hooks.CorruptEntry(key, reason, cause)
	cc.log.Warn("corrupt stored item read as miss", Fields{"key": key, "reason": reason, "err": cause})
}
