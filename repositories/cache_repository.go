package repositories

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/karlseguin/ccache/v3"

	"rentals-api/domain"
)

// CacheRepository keeps computed home statistics in two levels: an in-process
// ccache and, when configured, a shared memcached.
type CacheRepository interface {
	GetHome(key string) (*domain.HomeStats, bool)
	SetHome(key string, stats *domain.HomeStats, ttl time.Duration)
	Delete(key string)
	Stop()
}

type cacheRepository struct {
	local     *ccache.Cache[*domain.HomeStats]
	memcached *memcache.Client
	localTTL  time.Duration
	logger    log.Logger
}

// NewCacheRepository builds the cache. An empty memcachedHost disables the
// shared level.
func NewCacheRepository(memcachedHost string, localTTL time.Duration, logger log.Logger) CacheRepository {
	r := &cacheRepository{
		local:    ccache.New(ccache.Configure[*domain.HomeStats]().MaxSize(100)),
		localTTL: localTTL,
		logger:   log.With(logger, "component", "cache"),
	}
	if memcachedHost != "" {
		r.memcached = memcache.New(memcachedHost)
		level.Info(r.logger).Log("msg", "memcached enabled", "host", memcachedHost)
	}
	return r
}

func (r *cacheRepository) GetHome(key string) (*domain.HomeStats, bool) {
	if item := r.local.Get(key); item != nil && !item.Expired() {
		level.Debug(r.logger).Log("msg", "cache hit", "level_name", "local", "key", key)
		return item.Value(), true
	}

	if r.memcached == nil {
		return nil, false
	}

	item, err := r.memcached.Get(key)
	if err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			level.Warn(r.logger).Log("msg", "memcached get failed", "key", key, "err", err)
		}
		return nil, false
	}

	var stats domain.HomeStats
	if err := json.Unmarshal(item.Value, &stats); err != nil {
		level.Warn(r.logger).Log("msg", "memcached value unreadable", "key", key, "err", err)
		return nil, false
	}

	r.local.Set(key, &stats, r.localTTL)
	level.Debug(r.logger).Log("msg", "cache hit", "level_name", "memcached", "key", key)
	return &stats, true
}

func (r *cacheRepository) SetHome(key string, stats *domain.HomeStats, ttl time.Duration) {
	r.local.Set(key, stats, minDuration(ttl, r.localTTL))

	if r.memcached == nil {
		return
	}

	data, err := json.Marshal(stats)
	if err != nil {
		level.Warn(r.logger).Log("msg", "cache marshal failed", "key", key, "err", err)
		return
	}
	if err := r.memcached.Set(&memcache.Item{
		Key:        key,
		Value:      data,
		Expiration: int32(ttl / time.Second),
	}); err != nil {
		level.Warn(r.logger).Log("msg", "memcached set failed", "key", key, "err", err)
	}
}

func (r *cacheRepository) Delete(key string) {
	r.local.Delete(key)

	if r.memcached == nil {
		return
	}
	if err := r.memcached.Delete(key); err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		level.Warn(r.logger).Log("msg", "memcached delete failed", "key", key, "err", err)
	}
}

// Stop ends ccache's background worker.
func (r *cacheRepository) Stop() {
	r.local.Stop()
}

func minDuration(a, b time.Duration) time.Duration {
	if b > 0 && b < a {
		return b
	}
	return a
}
