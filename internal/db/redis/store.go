// Package redis stores cached engine responses in Redis or Valkey.
package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/bizsearch/internal/db"
)

var _ db.Store = (*Store)(nil)

// minTTL is the smallest expiry SET EX accepts.
const minTTL = time.Second

// Config holds connection parameters for the response cache.
type Config struct {
	Addrs       []string
	Password    string
	DialTimeout time.Duration
}

// Store keeps serialized responses as plain string keys with an expiry.
type Store struct {
	client rueidis.Client
}

// NewStore dials the cache. Client-side caching is off: entries are
// written once and expire on their own.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("cache addrs are required")
	}
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Password:     cfg.Password,
		ClientName:   "bizsearch",
		DisableCache: true,
		Dialer:       net.Dialer{Timeout: cfg.DialTimeout},
	})
	if err != nil {
		return nil, fmt.Errorf("create cache client: %w", err)
	}
	return &Store{client: client}, nil
}

// Get returns the cached bytes for key, or db.ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Do(ctx, s.client.B().Get().Key(key).Build()).AsBytes()
	switch {
	case rueidis.IsRedisNil(err):
		return nil, db.ErrKeyNotFound
	case err != nil:
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return data, nil
}

// SetWithTTL writes value under key. TTLs below one second are raised to one second.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ttl = max(ttl, minTTL)
	cmd := s.client.B().Set().Key(key).Value(rueidis.BinaryString(value)).Ex(ttl).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// Ping reports whether the cache answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpCachePing, Err: err}
	}
	return nil
}

// Close drops the connection pool.
func (s *Store) Close() { s.client.Close() }
