package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bizsearch/internal/db"
)

func TestQuery_CacheMiss(t *testing.T) {
	inner := &mockEngine{result: &db.QueryResult{NumFound: 2, Docs: []map[string]any{{"name": "ACME"}}}}
	e, ms := newTestEngine(t, inner)

	var (
		setKey string
		setTTL time.Duration
		setVal []byte
	)
	ms.setFn = func(_ context.Context, key string, value []byte, ttl time.Duration) error {
		setKey, setVal, setTTL = key, value, ttl
		return nil
	}

	res, err := e.Query(context.Background(), testPayload(), 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != inner.result {
		t.Fatal("expected inner result on miss")
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 inner call, got %d", inner.calls)
	}
	if !strings.HasPrefix(setKey, "bizsearch:solr_cache:") {
		t.Errorf("unexpected key %q", setKey)
	}
	if setTTL != 5*time.Minute {
		t.Errorf("expected ttl 5m, got %v", setTTL)
	}
	var stored db.QueryResult
	if err := json.Unmarshal(setVal, &stored); err != nil || stored.NumFound != 2 {
		t.Errorf("unexpected stored value %s (%v)", setVal, err)
	}
}

func TestQuery_CacheHit(t *testing.T) {
	inner := &mockEngine{}
	e, ms := newTestEngine(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte(`{"numFound":4,"start":0,"docs":[{"identifier":"BC1"}],"facets":{"count":4}}`), nil
	}
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		t.Fatal("SET must not be called on hit")
		return nil
	}

	res, err := e.Query(context.Background(), testPayload(), 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 0 {
		t.Fatalf("expected no inner calls, got %d", inner.calls)
	}
	if res.NumFound != 4 || res.Docs[0]["identifier"] != "BC1" {
		t.Fatalf("unexpected result %+v", res)
	}
	if string(res.Facets["count"]) != "4" {
		t.Errorf("facets not restored: %v", res.Facets)
	}
}

func TestQuery_InnerErrorUnchanged(t *testing.T) {
	qe := &db.QueryError{Code: 400, Msg: "Query contains too many nested clauses"}
	inner := &mockEngine{err: qe}
	e, ms := newTestEngine(t, inner)
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		t.Fatal("errors must not be cached")
		return nil
	}

	_, err := e.Query(context.Background(), testPayload(), 0, 10)
	if err != qe { //nolint:errorlint // identity is the contract
		t.Fatalf("expected the inner error value, got %v", err)
	}
}

func TestQuery_StoreErrorsIgnored(t *testing.T) {
	inner := &mockEngine{result: &db.QueryResult{NumFound: 1}}
	e, ms := newTestEngine(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, &db.Error{Op: db.OpGet, Err: errors.New("connection refused")}
	}
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		return &db.Error{Op: db.OpSet, Err: errors.New("connection refused")}
	}

	res, err := e.Query(context.Background(), testPayload(), 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.NumFound != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestQuery_CorruptEntryIsMiss(t *testing.T) {
	inner := &mockEngine{result: &db.QueryResult{NumFound: 1}}
	e, ms := newTestEngine(t, inner)
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte("not json"), nil
	}

	if _, err := e.Query(context.Background(), testPayload(), 0, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected fallback to inner, got %d calls", inner.calls)
	}
}

func TestCacheKey_VariesWithPage(t *testing.T) {
	p := testPayload()
	k1, _ := cacheKey(p, 0, 10)
	k2, _ := cacheKey(p, 10, 10)
	k3, _ := cacheKey(p, 0, 20)
	k4, _ := cacheKey(testPayload(), 0, 10)

	if k1 == k2 || k1 == k3 {
		t.Error("keys must differ by start and rows")
	}
	if k1 != k4 {
		t.Error("equal payloads must share a key")
	}
}

func TestQuery_CountsHitsAndMisses(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
	inner := &mockEngine{result: &db.QueryResult{NumFound: 1}}

	var stored []byte
	ms := &mockKVStore{
		getFn: func(_ context.Context, _ string) ([]byte, error) {
			if stored == nil {
				return nil, db.ErrKeyNotFound
			}
			return stored, nil
		},
		setFn: func(_ context.Context, _ string, v []byte, _ time.Duration) error {
			stored = v
			return nil
		},
	}
	e := New(inner, ms, time.Minute, counter, zap.NewNop())

	for range 3 {
		if _, err := e.Query(context.Background(), testPayload(), 0, 10); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := testutil.ToFloat64(counter.WithLabelValues("miss")); got != 1 {
		t.Errorf("expected 1 miss, got %v", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("hit")); got != 2 {
		t.Errorf("expected 2 hits, got %v", got)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.calls)
	}
}

func TestPing_DelegatesToInner(t *testing.T) {
	inner := &mockEngine{pingErr: errors.New("solr down")}
	e, _ := newTestEngine(t, inner)

	if err := e.Ping(context.Background()); err == nil {
		t.Fatal("expected inner ping error")
	}
}
