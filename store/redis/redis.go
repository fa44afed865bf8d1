// Package redis implements store.Store on Redis, one hash per key.
//
// It mirrors the typed-item model of the primary DynamoDB backend: the
// string and binary value kinds live in separate hash fields, and expiry
// uses EXPIREAT from the item's ExpiresAt seconds, so TTL semantics match.
// Useful for local development and for deployments that already run Redis.
package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	st "github.com/unkn0wn-root/dynacache/store"
)

var ErrNilClient = errors.New("redis store: nil client")

// Hash fields. vs/vb mirror the string/binary value kinds; only one is set.
const (
	fieldValueString = "vs"
	fieldValueBytes  = "vb"
	fieldCreatedAt   = "t"
	fieldInvalidated = "i"
	fieldCompressed  = "c"
	fieldExpiresAt   = "ttl"
)

type Store struct {
	rdb         goredis.UniversalClient
	prefix      string
	closeClient bool
}

var _ st.Store = (*Store)(nil)

type Config struct {
	Client goredis.UniversalClient

	// KeyPrefix namespaces the hashes, e.g. "cache:".
	KeyPrefix string

	// CloseClient: set true only if this store exclusively owns the client.
	CloseClient bool
}

func New(cfg Config) (*Store, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Store{rdb: cfg.Client, prefix: cfg.KeyPrefix, closeClient: cfg.CloseClient}, nil
}

func (s *Store) key(k string) string { return s.prefix + k }

func (s *Store) Get(ctx context.Context, key string) (st.Item, bool, error) {
	m, err := s.rdb.HGetAll(ctx, s.key(key)).Result()
	if err != nil {
		return st.Item{}, false, err
	}
	if len(m) == 0 {
		return st.Item{}, false, nil // HGETALL yields an empty map on miss, not Nil
	}

	it := st.Item{Key: key}
	if v, ok := m[fieldValueString]; ok {
		it.ValueString = &v
	}
	if v, ok := m[fieldValueBytes]; ok {
		it.ValueBytes = []byte(v)
	}
	it.CreatedAt = m[fieldCreatedAt]
	it.Invalidated = m[fieldInvalidated] == "1"
	it.Compressed = m[fieldCompressed] == "1"
	if v, ok := m[fieldExpiresAt]; ok {
		it.ExpiresAt = &v
	}
	return it, true, nil
}

func (s *Store) Put(ctx context.Context, item st.Item) error {
	fields := map[string]any{
		fieldCreatedAt:   item.CreatedAt,
		fieldInvalidated: boolField(item.Invalidated),
		fieldCompressed:  boolField(item.Compressed),
	}
	if item.ValueBytes != nil {
		fields[fieldValueBytes] = item.ValueBytes
	} else if item.ValueString != nil {
		fields[fieldValueString] = *item.ValueString
	}
	if item.ExpiresAt != nil {
		fields[fieldExpiresAt] = *item.ExpiresAt
	}

	k := s.key(item.Key)

	// DEL+HSET in one transaction so an overwrite never leaves fields from
	// a previous item (e.g. a stale vb next to a new vs).
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, k)
	pipe.HSet(ctx, k, fields)
	if item.ExpiresAt != nil {
		if sec, err := strconv.ParseInt(*item.ExpiresAt, 10, 64); err == nil {
			pipe.ExpireAt(ctx, k, time.Unix(sec, 0))
		}
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Close releases the underlying client only when this store owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (s *Store) Close(context.Context) error {
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
