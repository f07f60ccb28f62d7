package providers

import (
	"beelandr/internal/structures"
	"github.com/coocood/freecache"
	"math"
	"time"
)

// CacheProviderInterface is a byte cache for fetched documents. Entries
// expire after the ttl given to Set; a non-positive ttl keeps the entry
// until it is evicted.
type CacheProviderInterface interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Del(key string)
}

type CacheProvider struct {
	cache *freecache.Cache
}

func NewCacheProvider(conf *structures.Config, logger Logger) CacheProviderInterface {
	if !conf.Cache.Enabled || conf.Cache.Size <= 0 {
		logger.Infof(TypeApp, "Document cache disabled")
		return &noopCache{}
	}

	logger.Infof(TypeApp, "Document cache: %dMB", conf.Cache.Size)
	return &CacheProvider{cache: freecache.NewCache(conf.Cache.Size << 20)}
}

// expireSeconds converts ttl to freecache's whole seconds, rounding up so a
// sub-second ttl still caches.
func expireSeconds(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	return int(math.Ceil(ttl.Seconds()))
}

func (c *CacheProvider) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set stores value under key. A value larger than the cache segment is
// silently not cached.
func (c *CacheProvider) Set(key string, value []byte, ttl time.Duration) {
	_ = c.cache.Set([]byte(key), value, expireSeconds(ttl))
}

func (c *CacheProvider) Del(key string) {
	c.cache.Del([]byte(key))
}

type noopCache struct{}

func (n *noopCache) Get(string) ([]byte, bool)         { return nil, false }
func (n *noopCache) Set(string, []byte, time.Duration) {}
func (n *noopCache) Del(string)                        {}
