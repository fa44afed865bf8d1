package dynacache

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	st "github.com/unkn0wn-root/dynacache/store"
)

type memStore struct {
	mu   sync.Mutex
	m    map[string]st.Item
	puts int
}

var _ st.Store = (*memStore)(nil)

func newMemStore() *memStore { return &memStore{m: make(map[string]st.Item)} }

func (s *memStore) Get(_ context.Context, key string) (st.Item, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.m[key]
	if !ok {
		return st.Item{}, false, nil
	}
	return it, true, nil
}

func (s *memStore) Put(_ context.Context, it st.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[it.Key] = it
	s.puts++
	return nil
}

func (s *memStore) Close(context.Context) error { return nil }

func (s *memStore) item(t *testing.T, key string) st.Item {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.m[key]
	if !ok {
		t.Fatalf("no stored item for %q", key)
	}
	return it
}

func (s *memStore) put(it st.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[it.Key] = it
}

// slowStore never answers; it blocks until the request deadline fires.
type slowStore struct{}

var _ st.Store = slowStore{}

func (slowStore) Get(ctx context.Context, _ string) (st.Item, bool, error) {
	<-ctx.Done()
	return st.Item{}, false, ctx.Err()
}

func (slowStore) Put(ctx context.Context, _ st.Item) error {
	<-ctx.Done()
	return ctx.Err()
}

func (slowStore) Close(context.Context) error { return nil }

// failStore returns a fixed error from every call.
type failStore struct{ err error }

var _ st.Store = failStore{}

func (s failStore) Get(context.Context, string) (st.Item, bool, error) {
	return st.Item{}, false, s.err
}
func (s failStore) Put(context.Context, st.Item) error { return s.err }
func (s failStore) Close(context.Context) error        { return nil }

type corruptReport struct {
	key    string
	reason string
}

type recordHooks struct {
	mu      sync.Mutex
	corrupt []corruptReport
	config  []string
}

var _ Hooks = (*recordHooks)(nil)

func (h *recordHooks) CorruptEntry(key, reason string, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.corrupt = append(h.corrupt, corruptReport{key: key, reason: reason})
}

func (h *recordHooks) ConfigError(field string, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.config = append(h.config, field)
}

type user struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTestCache(t *testing.T, s st.Store, optsOpt func(*Options[user])) Cache[user] {
	t.Helper()
	opts := Options[user]{Store: s}
	if optsOpt != nil {
		optsOpt(&opts)
	}
	cc, err := New[user](opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return cc
}

// ==============================
// Get/Set round trips
// ==============================

func TestGetMiss(t *testing.T) {
	ctx := context.Background()
	hk := &recordHooks{}
	cc := newTestCache(t, newMemStore(), func(o *Options[user]) { o.Hooks = hk })

	e, ok, err := cc.Get(ctx, "absent")
	if err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v e=%+v", ok, err, e)
	}
	if len(hk.corrupt) != 0 {
		t.Fatalf("miss must not report corruption, got %v", hk.corrupt)
	}
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	cc := newTestCache(t, ms, nil)

	in := Entry[user]{
		Value:       user{ID: "1", Name: "Ada"},
		CreatedAt:   1700000000123,
		Invalidated: true,
		TTL:         5 * time.Minute,
	}
	if err := cc.Set(ctx, "u:1", in); err != nil {
		t.Fatalf("Set: %v", err)
	}

	out, ok, err := cc.Get(ctx, "u:1")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if out.Value != in.Value || out.CreatedAt != in.CreatedAt || out.Invalidated != in.Invalidated {
		t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
	}
	if out.TTL != 0 {
		t.Fatalf("TTL is store-only and must not be reconstructed, got %v", out.TTL)
	}
}

func TestCompressedRoundTrip(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	cc := newTestCache(t, ms, func(o *Options[user]) { o.Compress = true })

	in := Entry[user]{Value: user{ID: "2", Name: "Grace"}, CreatedAt: 42}
	if err := cc.Set(ctx, "u:2", in); err != nil {
		t.Fatalf("Set: %v", err)
	}

	it := ms.item(t, "u:2")
	if !it.Compressed || it.ValueBytes == nil || it.ValueString != nil {
		t.Fatalf("compressed item must populate only the binary kind: %+v", it)
	}

	out, ok, err := cc.Get(ctx, "u:2")
	if err != nil || !ok || out.Value != in.Value || out.CreatedAt != 42 {
		t.Fatalf("Get: ok=%v err=%v out=%+v", ok, err, out)
	}
}

func TestUncompressedItemShape(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	cc := newTestCache(t, ms, nil)

	if err := cc.Set(ctx, "u:3", Entry[user]{Value: user{ID: "3"}, CreatedAt: 1}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	it := ms.item(t, "u:3")
	if it.Compressed || it.ValueString == nil || it.ValueBytes != nil {
		t.Fatalf("plain item must populate only the string kind: %+v", it)
	}
}

func TestTTLArithmetic(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	cc := newTestCache(t, ms, nil)

	if err := cc.Set(ctx, "k", Entry[user]{CreatedAt: 1000, TTL: 5 * time.Second}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	it := ms.item(t, "k")
	if it.ExpiresAt == nil || *it.ExpiresAt != "6" {
		t.Fatalf("expected ttl attribute 6, got %v", it.ExpiresAt)
	}
	if it.CreatedAt != "1000" {
		t.Fatalf("expected t attribute 1000, got %q", it.CreatedAt)
	}
}

func TestNoTTLNoExpiresAt(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	cc := newTestCache(t, ms, nil)

	if err := cc.Set(ctx, "k", Entry[user]{CreatedAt: 1000}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if it := ms.item(t, "k"); it.ExpiresAt != nil {
		t.Fatalf("no TTL was supplied, ttl attribute must be absent, got %q", *it.ExpiresAt)
	}
}

func TestDefaultCreatedAt(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	cc := newTestCache(t, ms, nil)

	before := time.Now().UnixMilli()
	if err := cc.Set(ctx, "k", Entry[user]{Value: user{ID: "x"}}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	after := time.Now().UnixMilli()

	out, ok, err := cc.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if out.CreatedAt < before || out.CreatedAt > after {
		t.Fatalf("zero CreatedAt should default to now, got %d not in [%d,%d]", out.CreatedAt, before, after)
	}
}

func TestDeterministicSet(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	cc := newTestCache(t, ms, func(o *Options[user]) { o.Compress = true })

	e := Entry[user]{Value: user{ID: "9", Name: "Edsger"}, CreatedAt: 1234, TTL: time.Minute}
	if err := cc.Set(ctx, "k", e); err != nil {
		t.Fatalf("Set 1: %v", err)
	}
	first := ms.item(t, "k")
	if err := cc.Set(ctx, "k", e); err != nil {
		t.Fatalf("Set 2: %v", err)
	}
	second := ms.item(t, "k")

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical entries must encode identically:\n%+v\n%+v", first, second)
	}
	if ms.puts != 2 {
		t.Fatalf("both writes must reach the store, puts=%d", ms.puts)
	}
}

// ==============================
// Corruption policy
// ==============================

func TestCorruptCompressedMissingBinary(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	hk := &recordHooks{}
	cc := newTestCache(t, ms, func(o *Options[user]) { o.Hooks = hk })

	s := `{"id":"1"}`
	ms.put(st.Item{Key: "bad", ValueString: &s, CreatedAt: "1000", Compressed: true})

	if _, ok, err := cc.Get(ctx, "bad"); err != nil || ok {
		t.Fatalf("corrupt item must read as miss, ok=%v err=%v", ok, err)
	}
	if len(hk.corrupt) != 1 || hk.corrupt[0].key != "bad" || hk.corrupt[0].reason != "binary_missing" {
		t.Fatalf("expected one binary_missing report for key bad, got %v", hk.corrupt)
	}
}

func TestCorruptUncompressedMissingString(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	hk := &recordHooks{}
	cc := newTestCache(t, ms, func(o *Options[user]) { o.Hooks = hk })

	ms.put(st.Item{Key: "bad", ValueBytes: []byte{1, 2, 3}, CreatedAt: "1000", Compressed: false})

	if _, ok, err := cc.Get(ctx, "bad"); err != nil || ok {
		t.Fatalf("corrupt item must read as miss, ok=%v err=%v", ok, err)
	}
	if len(hk.corrupt) != 1 || hk.corrupt[0].reason != "string_missing" {
		t.Fatalf("expected one string_missing report, got %v", hk.corrupt)
	}
}

func TestCorruptPayloads(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	hk := &recordHooks{}
	cc := newTestCache(t, ms, func(o *Options[user]) { o.Hooks = hk })

	notJSON := `{"id":`
	ms.put(st.Item{Key: "badjson", ValueString: &notJSON, CreatedAt: "1000"})
	// not a gzip stream
	ms.put(st.Item{Key: "badgzip", ValueBytes: []byte("plainly not gzip"), CreatedAt: "1000", Compressed: true})

	for _, key := range []string{"badjson", "badgzip"} {
		if _, ok, err := cc.Get(ctx, key); err != nil || ok {
			t.Fatalf("%s: corrupt payload must read as miss, ok=%v err=%v", key, ok, err)
		}
	}
	if len(hk.corrupt) != 2 {
		t.Fatalf("expected two reports, got %v", hk.corrupt)
	}
	for _, r := range hk.corrupt {
		if r.reason != "payload_decode" {
			t.Fatalf("expected payload_decode, got %v", r)
		}
	}
}

func TestCorruptTimestamp(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	hk := &recordHooks{}
	cc := newTestCache(t, ms, func(o *Options[user]) { o.Hooks = hk })

	s := `{"id":"1"}`
	ms.put(st.Item{Key: "bad", ValueString: &s, CreatedAt: "not-a-number"})

	if _, ok, _ := cc.Get(ctx, "bad"); ok {
		t.Fatalf("non-numeric t attribute must read as miss")
	}
	if len(hk.corrupt) != 1 || hk.corrupt[0].reason != "timestamp" {
		t.Fatalf("expected one timestamp report, got %v", hk.corrupt)
	}
}

// ==============================
// Timeouts and store errors
// ==============================

func TestTimeout(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, slowStore{}, func(o *Options[user]) {
		o.RequestTimeout = 20 * time.Millisecond
	})

	_, ok, err := cc.Get(ctx, "k")
	if ok {
		t.Fatalf("timed-out get must not surface an entry")
	}
	var te *TimeoutError
	if !errors.As(err, &te) || te.Op != "get" || te.Key != "k" {
		t.Fatalf("expected get TimeoutError, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("TimeoutError must wrap context.DeadlineExceeded, got %v", err)
	}

	err = cc.Set(ctx, "k", Entry[user]{Value: user{ID: "1"}, CreatedAt: 1})
	if !errors.As(err, &te) || te.Op != "set" {
		t.Fatalf("expected set TimeoutError, got %v", err)
	}
}

func TestStoreErrorPropagatesOpaquely(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("ProvisionedThroughputExceededException")
	cc := newTestCache(t, failStore{err: boom}, nil)

	if _, _, err := cc.Get(ctx, "k"); !errors.Is(err, boom) {
		t.Fatalf("remote errors must pass through unchanged, got %v", err)
	}
	if err := cc.Set(ctx, "k", Entry[user]{CreatedAt: 1}); !errors.Is(err, boom) {
		t.Fatalf("remote errors must pass through unchanged, got %v", err)
	}
}

// ==============================
// Construction
// ==============================

func TestNewMissingStore(t *testing.T) {
	hk := &recordHooks{}
	_, err := New[user](Options[user]{Hooks: hk})

	var ce *ConfigError
	if !errors.As(err, &ce) || ce.Field != "Store" {
		t.Fatalf("expected ConfigError for Store, got %v", err)
	}
	if len(hk.config) != 1 || hk.config[0] != "Store" {
		t.Fatalf("misconfiguration must also reach the hook, got %v", hk.config)
	}
}

func TestDefaultsApplied(t *testing.T) {
	cc := newTestCache(t, newMemStore(), nil)
	impl, ok := cc.(*cache[user])
	if !ok {
		t.Fatalf("unexpected concrete type for Cache")
	}
	if impl.timeout != defaultRequestTimeout {
		t.Fatalf("expected default timeout %v, got %v", defaultRequestTimeout, impl.timeout)
	}
	if impl.codec == nil {
		t.Fatalf("codec default not applied")
	}
}
