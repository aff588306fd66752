package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bizsearch/internal/db"
	"github.com/kailas-cloud/bizsearch/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "solr_cache:"

// Compile-time check: Engine implements db.Engine.
var _ db.Engine = (*Engine)(nil)

// store is the consumer interface for the response cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Engine caches search engine responses in a key-value store.
type Engine struct {
	inner      db.Engine
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner db.Engine,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Ping checks the search engine. Cache store health is reported separately.
func (e *Engine) Ping(ctx context.Context) error {
	return e.inner.Ping(ctx)
}

// Query returns a cached page or queries the inner engine.
// Inner engine errors are returned unchanged and never cached.
func (e *Engine) Query(ctx context.Context, p *db.Payload, start, rows int) (*db.QueryResult, error) {
	key, err := cacheKey(p, start, rows)
	if err != nil {
		e.logger.Warn("Failed to build cache key", zap.Error(err))
		return e.inner.Query(ctx, p, start, rows)
	}

	if res, ok := e.getFromCache(ctx, key); ok {
		e.incCache("hit")
		return res, nil
	}

	e.incCache("miss")

	res, err := e.inner.Query(ctx, p, start, rows)
	if err != nil {
		return nil, err
	}

	e.putToCache(ctx, key, res)
	return res, nil
}

func (e *Engine) incCache(result string) {
	if e.cacheTotal != nil {
		e.cacheTotal.WithLabelValues(result).Inc()
	}
}

func cacheKey(p *db.Payload, start, rows int) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write(data)
	h.Write([]byte("|" + strconv.Itoa(start) + "|" + strconv.Itoa(rows)))
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil)), nil
}

func (e *Engine) getFromCache(ctx context.Context, key string) (*db.QueryResult, bool) {
	data, err := e.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			e.logger.Warn("Failed to get cached response", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var res db.QueryResult
	if err := json.Unmarshal(data, &res); err != nil {
		e.logger.Warn("Failed to parse cached response", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &res, true
}

func (e *Engine) putToCache(ctx context.Context, key string, res *db.QueryResult) {
	data, err := json.Marshal(res)
	if err != nil {
		e.logger.Warn("Failed to encode response for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := e.store.SetWithTTL(ctx, key, data, e.ttl); err != nil {
		e.logger.Warn("Failed to cache response", zap.String("key", key), zap.Error(err))
	}
}
