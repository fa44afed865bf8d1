package dynacache

import (
	"context"
	"errors"
	"time"

	c "github.com/unkn0wn-root/dynacache/codec"
	st "github.com/unkn0wn-root/dynacache/store"
)

const defaultRequestTimeout = 3 * time.Second

type cache[V any] struct {
	store    st.Store
	codec    c.Codec[V]
	compress bool
	timeout  time.Duration
	log      Logger
	hooks    Hooks
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	hooks := Hooks(NopHooks{})
	if opts.Hooks != nil {
		hooks = opts.Hooks
	}

	if opts.Store == nil {
		cause := errors.New("store is required")
		hooks.ConfigError("Store", cause)
		return nil, &ConfigError{Field: "Store", Err: cause}
	}

	cc := &cache[V]{
		store:    opts.Store,
		compress: opts.Compress,
		hooks:    hooks,
	}

	// defaults
	cc.codec = opts.Codec
	if cc.codec == nil {
		cc.codec = c.JSON[V]{}
	}
	cc.log = coalesce[Logger](opts.Logger, NopLogger{})
	cc.timeout = coalesce(opts.RequestTimeout, defaultRequestTimeout)

	return cc, nil
}

func (cc *cache[V]) Get(ctx context.Context, key string) (Entry[V], bool, error) {
	var zero Entry[V]

	ctx, cancel := context.WithTimeout(ctx, cc.timeout)
	defer cancel()

	it, ok, err := cc.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return zero, false, &TimeoutError{Op: "get", Key: key, Timeout: cc.timeout, Err: err}
		}
		// throttling, access-denied, network: opaque to us, caller decides
		return zero, false, err
	}
	if !ok {
		return zero, false, nil // plain miss; not reported anywhere
	}

	e, ok := cc.parseItem(it)
	if !ok {
		// corrupt; already reported, reads as a miss
		return zero, false, nil
	}
	return e, true, nil
}

func (cc *cache[V]) Set(ctx context.Context, key string, e Entry[V]) error {
	it, err := cc.buildItem(key, e)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cc.timeout)
	defer cancel()

	if err := cc.store.Put(ctx, it); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return &TimeoutError{Op: "set", Key: key, Timeout: cc.timeout, Err: err}
		}
		return err
	}
	return nil
}

func (cc *cache[V]) Close(ctx context.Context) error {
	return cc.store.Close(ctx)
}
