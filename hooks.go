package dynacache

// Hooks lightweight callbacks for high-signal failure events.
// Implementations MUST be cheap and non-blocking; the cache calls them on
// hot paths. Wrap with hooks/async to offload a slow sink.
type Hooks interface {
	// A fetched item violated the encode/decode invariant and the read
	// degraded to a miss.
	// reason ∈ {"binary_missing", "string_missing", "payload_decode", "timestamp"}
	CorruptEntry(key, reason string, cause error)

	// A required option was missing at construction.
	ConfigError(field string, cause error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) CorruptEntry(string, string, error) {}
func (NopHooks) ConfigError(string, error)          {}
