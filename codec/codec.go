// Package codec provides value serializers for dynacache.
//
// The uncompressed write path stores the encoded payload in the store's
// string attribute kind, which on most backends must be valid text. The
// default JSON codec produces UTF-8 and is safe in both modes. Binary
// codecs (Msgpack, CBOR, Protobuf) must be paired with compression enabled
// so their payloads travel through the binary attribute kind.
package codec

import "encoding/json"

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// JSON is the default codec. The zero value is ready to use.
type JSON[V any] struct{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}

// String is a trivial codec for values that already are strings. Assumes
// UTF-8 and performs no validation.
type String struct{}

func (String) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (String) Decode(b []byte) (string, error) { return string(b), nil }
