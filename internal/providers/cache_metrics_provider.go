package providers

import "beelandr/internal/structures"

// countingCache reports every lookup to the hit/miss counters.
type countingCache struct {
	CacheProviderInterface
	metrics MetricsProviderInterface
}

func (c *countingCache) Get(key string) ([]byte, bool) {
	val, ok := c.CacheProviderInterface.Get(key)
	if ok {
		c.metrics.IncCacheHits()
	} else {
		c.metrics.IncCacheMisses()
	}
	return val, ok
}

// NewInstrumentedCacheProvider builds the document cache with lookup
// counters. A disabled cache is returned bare so it reports no misses.
func NewInstrumentedCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) CacheProviderInterface {
	cache := NewCacheProvider(conf, logger)
	if _, disabled := cache.(*noopCache); disabled {
		return cache
	}
	return &countingCache{CacheProviderInterface: cache, metrics: metrics}
}
