// Package dynamo implements store.Store on a DynamoDB table.
//
// The table uses a single string partition key ("key"). Expiry relies on
// the table's native TTL feature being enabled on the "ttl" attribute;
// this store never issues deletes itself.
package dynamo

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	st "github.com/unkn0wn-root/dynacache/store"
)

// Attribute names in the table.
const (
	attrKey         = "key"
	attrValue       = "v"
	attrCreatedAt   = "t"
	attrInvalidated = "i"
	attrCompressed  = "c"
	attrExpiresAt   = "ttl"
)

var (
	ErrMissingTable  = errors.New("dynamo store: table name is required")
	ErrMissingClient = errors.New("dynamo store: either Client or AWS config is required")
)

type Store struct {
	db         *dynamodb.Client
	table      string
	consistent bool
}

var _ st.Store = (*Store)(nil)

type Config struct {
	// Table is the target table name. Required.
	Table string

	// Client, when set, is used directly (caller owns its lifecycle).
	Client *dynamodb.Client

	// AWS builds a client when Client is nil. Clients are pooled per
	// PoolKey, so two stores against the same configuration share one
	// client and its connection pool.
	AWS *aws.Config

	// PoolKey identifies the AWS configuration for client reuse.
	// Empty => AWS.Region. Distinct configurations MUST use distinct keys;
	// a pooled client is never handed out across two different ones.
	PoolKey string

	// Pool overrides the shared process-wide pool.
	Pool *ClientPool

	// ConsistentRead asks for strongly consistent GetItem calls.
	// Default false (eventually consistent, half the read cost).
	ConsistentRead bool
}

func New(cfg Config) (*Store, error) {
	if cfg.Table == "" {
		return nil, ErrMissingTable
	}

	db := cfg.Client
	if db == nil {
		if cfg.AWS == nil {
			return nil, ErrMissingClient
		}
		pool := cfg.Pool
		if pool == nil {
			pool = defaultPool
		}
		key := cfg.PoolKey
		if key == "" {
			key = cfg.AWS.Region
		}
		awsCfg := *cfg.AWS
		db = pool.Get(key, func() *dynamodb.Client {
			return dynamodb.NewFromConfig(awsCfg)
		})
	}
	return &Store{db: db, table: cfg.Table, consistent: cfg.ConsistentRead}, nil
}

func (s *Store) Get(ctx context.Context, key string) (st.Item, bool, error) {
	out, err := s.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			attrKey: &types.AttributeValueMemberS{Value: key},
		},
		ConsistentRead: aws.Bool(s.consistent),
	})
	if err != nil {
		return st.Item{}, false, err
	}
	if len(out.Item) == 0 {
		return st.Item{}, false, nil // miss
	}
	return fromAttrs(key, out.Item), true, nil
}

func (s *Store) Put(ctx context.Context, item st.Item) error {
	_, err := s.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      toAttrs(item),
	})
	return err
}

// Close is a no-op: the SDK client needs no explicit teardown, and pooled
// clients live for the process.
func (s *Store) Close(context.Context) error { return nil }

// toAttrs/fromAttrs translate between Item and the table's attribute map.
// The mapping is total and dumb on purpose: invariant checks (value kind
// vs compressed flag) belong to the reader, which owns the corruption
// policy.
func toAttrs(it st.Item) map[string]types.AttributeValue {
	av := map[string]types.AttributeValue{
		attrKey:         &types.AttributeValueMemberS{Value: it.Key},
		attrCreatedAt:   &types.AttributeValueMemberN{Value: it.CreatedAt},
		attrInvalidated: &types.AttributeValueMemberBOOL{Value: it.Invalidated},
		attrCompressed:  &types.AttributeValueMemberBOOL{Value: it.Compressed},
	}
	if it.ValueBytes != nil {
		av[attrValue] = &types.AttributeValueMemberB{Value: it.ValueBytes}
	} else if it.ValueString != nil {
		av[attrValue] = &types.AttributeValueMemberS{Value: *it.ValueString}
	}
	if it.ExpiresAt != nil {
		av[attrExpiresAt] = &types.AttributeValueMemberN{Value: *it.ExpiresAt}
	}
	return av
}

func fromAttrs(key string, av map[string]types.AttributeValue) st.Item {
	it := st.Item{Key: key}
	switch v := av[attrValue].(type) {
	case *types.AttributeValueMemberS:
		s := v.Value
		it.ValueString = &s
	case *types.AttributeValueMemberB:
		it.ValueBytes = v.Value
	}
	if n, ok := av[attrCreatedAt].(*types.AttributeValueMemberN); ok {
		it.CreatedAt = n.Value
	}
	if b, ok := av[attrInvalidated].(*types.AttributeValueMemberBOOL); ok {
		it.Invalidated = b.Value
	}
	if b, ok := av[attrCompressed].(*types.AttributeValueMemberBOOL); ok {
		it.Compressed = b.Value
	}
	if n, ok := av[attrExpiresAt].(*types.AttributeValueMemberN); ok {
		s := n.Value
		it.ExpiresAt = &s
	}
	return it
}
