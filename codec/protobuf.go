package codec

import "google.golang.org/protobuf/proto"

// Protobuf serializes proto messages. Output is binary: enable compression
// on the cache so the payload is stored under the binary attribute kind.
// Note that proto.Marshal output is not guaranteed canonical across
// library versions; if byte-identical rewrites matter, prefer JSON or
// deterministic CBOR.
type Protobuf[T proto.Message] struct {
	new func() T // constructor for a concrete message, e.g. func() *mypb.User { return &mypb.User{} }
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.new()
	err := proto.Unmarshal(b, m)
	return m, err
}
