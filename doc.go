// Package dynacache adapts a cache layer onto a remote durable key/value
// store with a typed item model, DynamoDB being the primary backend.
// Values are serialized by a pluggable Codec (JSON by default), optionally
// gzip-compressed, and written as one typed item per key:
//
//	key (string) | v (string or binary payload) | t (numeric, unix ms)
//	i (bool, invalidated) | c (bool, compressed) | ttl (numeric, unix s)
//
// Components:
//   - store.Store: single-item Get/Put against a named table
//     (store/dynamo for DynamoDB, store/redis for Redis hashes).
//   - codec.Codec[V]: (de)serializes V <-> []byte.
//   - Hooks: explicit error-reporting callbacks for corruption and
//     misconfiguration, instead of a side-channel event bus.
//
// Policy choices:
//   - A read that hits a corrupt item (value kind disagreeing with the
//     compressed flag, undecodable payload) reports once through Hooks and
//     degrades to a miss. Availability wins over strictness; the caller
//     re-fetches from the source of truth.
//   - Expiry is delegated to the store's own TTL sweep keyed on the ttl
//     attribute. The adapter never deletes items itself.
//   - Every Get/Set carries a request deadline (default 3s). A deadline
//     hit fails the call with *TimeoutError, but the in-flight remote
//     operation may still land: writes are at-least-once under timeout.
package dynacache
