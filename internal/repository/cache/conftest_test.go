package cache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bizsearch/internal/db"
)

type mockEngine struct {
	result  *db.QueryResult
	err     error
	calls   int
	pingErr error
}

func (m *mockEngine) Ping(_ context.Context) error { return m.pingErr }

func (m *mockEngine) Query(_ context.Context, _ *db.Payload, _, _ int) (*db.QueryResult, error) {
	m.calls++
	return m.result, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestEngine(t *testing.T, inner *mockEngine) (*Engine, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	return New(inner, ms, 5*time.Minute, nil, zap.NewNop()), ms
}

func testPayload() *db.Payload {
	return &db.Payload{
		Query:  "(name_q:acme)",
		Filter: []string{"bn_q:(123)"},
	}
}
