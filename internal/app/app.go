// Package app assembles the search stack from configuration.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bizsearch/internal/config"
	"github.com/kailas-cloud/bizsearch/internal/db"
	dbRedis "github.com/kailas-cloud/bizsearch/internal/db/redis"
	"github.com/kailas-cloud/bizsearch/internal/db/solr"
	"github.com/kailas-cloud/bizsearch/internal/domain/search/request"
	"github.com/kailas-cloud/bizsearch/internal/metrics"
	"github.com/kailas-cloud/bizsearch/internal/repository/cache"
	businessuc "github.com/kailas-cloud/bizsearch/internal/usecase/business"
	healthuc "github.com/kailas-cloud/bizsearch/internal/usecase/health"
)

// App holds the wired services.
type App struct {
	Search  *businessuc.Service
	Health  *healthuc.Service
	Profile request.Profile

	solr  *solr.Client
	store db.Store
}

// New builds the Solr client, optional response cache, and services.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	modes, err := cfg.Search.DashModes()
	if err != nil {
		return nil, err
	}

	client, err := solr.New(solr.Config{
		BaseURL:  cfg.Solr.BaseURL,
		Core:     cfg.Solr.Core,
		Timeout:  time.Duration(cfg.Solr.TimeoutSec) * time.Second,
		MaxQPS:   cfg.Solr.MaxQPS,
		Username: cfg.Solr.Username,
		Password: cfg.Solr.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create solr client: %w", err)
	}

	a := &App{
		solr:    client,
		Profile: request.BusinessProfile().WithQueryFieldModes(modes),
	}

	var engine db.Engine = client
	// Pass nil interface (not typed nil pointer) to health when cache is off.
	var cachePinger healthuc.Pinger
	if cfg.Cache.Enabled {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:       cfg.Cache.Addrs,
			Password:    cfg.Cache.Password,
			DialTimeout: time.Duration(cfg.Cache.DialTimeoutSec) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("create cache store: %w", err)
		}
		a.store = store
		cachePinger = store
		engine = cache.New(client, store, time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.SolrCacheTotal, logger)
		logger.Info("Response cache enabled",
			zap.Strings("addrs", cfg.Cache.Addrs),
			zap.Int("ttl_sec", cfg.Cache.TTLSec),
		)
	}

	qb := solr.NewQueryBuilder(cfg.Solr.FacetLimit)
	a.Search = businessuc.New(qb, qb, engine)
	a.Health = healthuc.New(client, cachePinger)
	return a, nil
}

// WaitForReady blocks until Solr answers pings or timeout expires.
func (a *App) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return a.solr.WaitForReady(ctx, timeout)
}

// Close releases the cache connection.
func (a *App) Close() {
	if a.store != nil {
		a.store.Close()
	}
}
