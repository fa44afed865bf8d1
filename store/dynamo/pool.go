package dynamo

import (
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// ClientPool shares one DynamoDB client per configuration identity.
// Clients are built lazily on first use and live until the pool does; the
// mutex guarantees at most one client is ever constructed per key.
type ClientPool struct {
	mu      sync.Mutex
	clients map[string]*dynamodb.Client
}

func NewClientPool() *ClientPool {
	return &ClientPool{clients: make(map[string]*dynamodb.Client)}
}

// defaultPool backs stores constructed without an explicit pool. Torn down
// implicitly at process exit.
var defaultPool = NewClientPool()

// Get returns the client for key, constructing it with build on first use.
func (p *ClientPool) Get(key string, build func() *dynamodb.Client) *dynamodb.Client {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.clients[key]; ok {
		return c
	}
	c := build()
	p.clients[key] = c
	return c
}
