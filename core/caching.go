package core

import (
	"time"

	"go.uber.org/zap"

	"github.com/civiclens/civiclens/internal/contract"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// ResponseCache stores backend GET responses in the configured cache store.
type ResponseCache struct {
	store  contract.CacheStore
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

var _ contract.ResponseCache = &ResponseCache{} // Compile-time check

// NewResponseCache wraps the response store of mgr. It returns nil when caching is disabled.
func NewResponseCache(mgr contract.CacheManager, ttl time.Duration, logger *zap.Logger) *ResponseCache {
	if mgr == nil {
		return nil
	}
	store := mgr.GetResponseStore()
	if store == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResponseCache{store: store, ttl: ttl, logger: logger, now: time.Now}
}

// Lookup returns a cached body that matches the current version and is still fresh.
func (c *ResponseCache) Lookup(key string) ([]byte, bool) {
	data, version, ts, err := c.store.Get(key)
	if err != nil {
		return nil, false // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion {
		c.logger.Debug("cache entry version mismatch", zap.String("key", key), zap.Int("version", version))
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(time.Unix(ts, 0)) > c.ttl {
		c.logger.Debug("cache entry expired", zap.String("key", key), zap.Time("stored", time.Unix(ts, 0)))
		return nil, false
	}
	return data, true
}

// Store saves a body under key. Failures only cost a future refetch.
func (c *ResponseCache) Store(key string, body []byte) {
	if err := c.store.Set(key, body, currentCacheVersion, c.now().Unix()); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// NewAPIClient builds the backend client for cfg, caching GET responses when mgr has a response store.
func NewAPIClient(cfg *contract.Config, mgr contract.CacheManager, logger *zap.Logger) *contract.HTTPAPIClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []contract.ClientOption{
		contract.WithSession(cfg.Session),
		contract.WithLogger(logger),
	}
	if cache := NewResponseCache(mgr, cfg.CacheTTL, logger); cache != nil {
		opts = append(opts, contract.WithResponseCache(cache))
	}
	return contract.NewHTTPAPIClient(cfg.APIURL, cfg.APITimeout, opts...)
}
