package db

import (
	"context"
	"time"
)

// Engine executes structured queries against the search index.
type Engine interface {
	Pinger
	Query(ctx context.Context, p *Payload, start, rows int) (*QueryResult, error)
}

// Store holds serialized engine responses for the response cache.
type Store interface {
	Pinger
	KVStore
	Close()
}

// Pinger checks backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore reads and writes expiring values.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
