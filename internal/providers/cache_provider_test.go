package providers

import (
	"beelandr/internal/structures"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// providers cannot import testutil, which depends on this package
type cacheTestLogger struct{}

func (m *cacheTestLogger) Errorf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *cacheTestLogger) Warnf(_ TypeEnum, _ string, _ ...interface{})  {}
func (m *cacheTestLogger) Debugf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *cacheTestLogger) Infof(_ TypeEnum, _ string, _ ...interface{})  {}
func (m *cacheTestLogger) Fatalf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *cacheTestLogger) Close()                                        {}

func cacheConfig(enabled bool, sizeMB int) *structures.Config {
	return &structures.Config{
		Cache: structures.CacheConfig{Enabled: enabled, Size: sizeMB},
	}
}

const seedKey = "seed:https://example.org/plots.json"

func TestNewCacheProvider_Disabled(t *testing.T) {
	for name, conf := range map[string]*structures.Config{
		"switched off": cacheConfig(false, 1),
		"zero size":    cacheConfig(true, 0),
	} {
		t.Run(name, func(t *testing.T) {
			c := NewCacheProvider(conf, &cacheTestLogger{})
			require.IsType(t, &noopCache{}, c)

			c.Set(seedKey, []byte("[]"), time.Minute)
			_, ok := c.Get(seedKey)
			assert.False(t, ok)
		})
	}
}

func TestCacheProvider_SetGetDel(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 1), &cacheTestLogger{})
	require.IsType(t, &CacheProvider{}, c)

	_, ok := c.Get(seedKey)
	assert.False(t, ok)

	c.Set(seedKey, []byte(`[{"id":1}]`), time.Minute)
	c.Set(seedKey, []byte(`[{"id":2}]`), time.Minute)
	val, ok := c.Get(seedKey)
	assert.True(t, ok)
	assert.Equal(t, []byte(`[{"id":2}]`), val)

	c.Del(seedKey)
	_, ok = c.Get(seedKey)
	assert.False(t, ok)
}

func TestCacheProvider_Expiry(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true, 1), &cacheTestLogger{})

	c.Set("short", []byte("v"), time.Second)
	c.Set("forever", []byte("v"), 0)

	time.Sleep(2100 * time.Millisecond)

	_, ok := c.Get("short")
	assert.False(t, ok)
	_, ok = c.Get("forever")
	assert.True(t, ok)
}

func TestExpireSeconds(t *testing.T) {
	assert.Equal(t, 0, expireSeconds(0))
	assert.Equal(t, 0, expireSeconds(-time.Second))
	assert.Equal(t, 1, expireSeconds(100*time.Millisecond))
	assert.Equal(t, 2, expireSeconds(1500*time.Millisecond))
	assert.Equal(t, 3600, expireSeconds(time.Hour))
}
