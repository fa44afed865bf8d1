package codec

import "fmt"

// Limit wraps another codec to cap the payload size accepted at Decode
// time. Encode is forwarded unchanged. MaxDecode <= 0 disables the cap.
//
// Typical use: a shared table written by multiple services, where an
// oversized foreign item should fail decoding (and so read as a miss)
// instead of ballooning memory.
type Limit[V any] struct {
	// Inner is the underlying codec being wrapped. It must be set.
	Inner Codec[V]

	// MaxDecode is the maximum permitted payload length in bytes.
	MaxDecode int
}

func (c Limit[V]) Encode(v V) ([]byte, error) { return c.Inner.Encode(v) }

func (c Limit[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, fmt.Errorf("payload too large: %d > %d", len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}
