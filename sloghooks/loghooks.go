// Package sloghooks implements dynacache.Hooks on top of log/slog, with
// optional sampling and key redaction. A corrupt item on a hot key fires
// on every read until it is rewritten, hence the sampling knob.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/dynacache"
)

type Options struct {
	// CorruptEvery samples corruption reports to avoid floods; 0/1 = log all.
	CorruptEvery uint64

	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	corruptCtr atomic.Uint64
}

var _ dynacache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) CorruptEntry(key, reason string, cause error) {
	if h.l == nil || !sample(h.opts.CorruptEvery, &h.corruptCtr) {
		return
	}
	h.l.Warn("dynacache.corrupt_entry",
		"key", h.redact(key),
		"reason", reason,
		"err", cause)
}

func (h *Hooks) ConfigError(field string, cause error) {
	if h.l == nil {
		return
	}
	h.l.Error("dynacache.config_error",
		"field", field,
		"err", cause)
}
