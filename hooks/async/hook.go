// Package asynchook decorates a dynacache.Hooks with a bounded queue and a
// worker pool so slow sinks never block Get/Set hot paths. Events are
// dropped when the queue is full.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{CorruptEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := dynacache.New[User](dynacache.Options[User]{
//	    Store: store,
//	    Hooks: hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/dynacache"
)

type Hooks struct {
	inner dynacache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ dynacache.Hooks = (*Hooks)(nil)

func New(inner dynacache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains the queue and stops the workers. Safe to call twice.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) CorruptEntry(key, reason string, cause error) {
	h.try(func() { h.inner.CorruptEntry(key, reason, cause) })
}

func (h *Hooks) ConfigError(field string, cause error) {
	h.try(func() { h.inner.ConfigError(field, cause) })
}
