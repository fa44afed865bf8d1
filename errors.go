package dynacache

import (
	"fmt"
	"time"
)

// ConfigError reports a required option missing at construction.
// Also delivered through Hooks.ConfigError so misconfiguration is visible
// on the same channel as runtime corruption.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("dynacache: invalid configuration (%s): %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// TimeoutError reports a get or set that exceeded the configured request
// deadline. Local waiting stops; the in-flight remote operation is not
// necessarily aborted, so a timed-out set may still land (at-least-once).
// No retry is performed here.
type TimeoutError struct {
	Op      string // "get" or "set"
	Key     string
	Timeout time.Duration
	Err     error // wraps context.DeadlineExceeded
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("dynacache: %s %q exceeded %s: %v", e.Op, e.Key, e.Timeout, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }
