package services

import (
	"beelandr/internal/clients/openmeteo"
	"beelandr/internal/models"
	"beelandr/internal/persistence/interfaces"
	"beelandr/internal/providers"
	"beelandr/internal/storage"
	"beelandr/internal/structures"
	"beelandr/internal/weather"
	"context"
	json "github.com/goccy/go-json"
	"sync"
	"time"
)

type WeatherServiceInterface interface {
	GetWeatherForPlot(ctx context.Context, lat, lng float64) models.WeatherResult
	PruneExpired() int
}

// WeatherService scores foraging conditions at a coordinate. Results are
// cached in the store's weather cache object, keyed by the coordinate
// rounded to four decimals.
type WeatherService struct {
	mu      sync.Mutex
	store   storage.StoreInterface
	client  openmeteo.ClientInterface
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	ttl     time.Duration
	now     func() time.Time
}

func NewWeatherService(conf *structures.Config, store storage.StoreInterface, client openmeteo.ClientInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) WeatherServiceInterface {
	return &WeatherService{
		store:   store,
		client:  client,
		logger:  logger,
		metrics: metrics,
		ttl:     conf.Weather.CacheTTL,
		now:     time.Now,
	}
}

// GetWeatherForPlot never fails: when the forecast cannot be obtained it
// returns the default snapshot with Source set to default.
func (ws *WeatherService) GetWeatherForPlot(ctx context.Context, lat, lng float64) models.WeatherResult {
	key := weather.CacheKey(lat, lng)

	if snap, ok := ws.lookup(key); ok {
		ws.logger.Debugf(providers.TypeWeather, "Cache hit for %s", key)
		return ws.result(snap, models.SourceCache)
	}

	daily, err := ws.client.Forecast(ctx, lat, lng)
	if err != nil {
		ws.logger.Errorf(providers.TypeWeather, "Forecast for %s failed: %s", key, err)
		return ws.result(weather.DefaultSnapshot(), models.SourceDefault)
	}
	summary, err := weather.Summarize(daily)
	if err != nil {
		ws.logger.Errorf(providers.TypeWeather, "Forecast for %s unusable: %s", key, err)
		return ws.result(weather.DefaultSnapshot(), models.SourceDefault)
	}

	var pollen *models.PollenBlock
	hourly, err := ws.client.Pollen(ctx, lat, lng)
	if err != nil {
		ws.logger.Warnf(providers.TypeWeather, "Pollen for %s unavailable: %s", key, err)
		ws.metrics.IncPollenFailures()
	} else {
		pollen = weather.AnalyzePollen(hourly)
	}

	snap := weather.BuildSnapshot(summary, pollen)
	ws.remember(key, snap)
	return ws.result(snap, models.SourceLive)
}

func (ws *WeatherService) result(snap models.WeatherSnapshot, source models.WeatherSource) models.WeatherResult {
	ws.metrics.IncWeatherResults(string(source))
	return models.WeatherResult{Weather: snap, Source: source}
}

// entries returns the raw cache object. A cache object that is not a JSON
// object reads as empty and is replaced on the next write.
func (ws *WeatherService) entries() map[string]json.RawMessage {
	var raw map[string]json.RawMessage
	if !ws.store.Load(storage.KeyWeatherCache, &raw) || raw == nil {
		return make(map[string]json.RawMessage)
	}
	return raw
}

func decodeEntry(raw json.RawMessage) (models.CacheEntry, bool) {
	var entry models.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return entry, false
	}
	return entry, entry.Data != nil && entry.Timestamp > 0
}

func (ws *WeatherService) expired(entry models.CacheEntry) bool {
	age := ws.now().UnixMilli() - entry.Timestamp
	return age >= ws.ttl.Milliseconds()
}

func (ws *WeatherService) lookup(key string) (models.WeatherSnapshot, bool) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	all := ws.entries()
	raw, ok := all[key]
	if !ok {
		return models.WeatherSnapshot{}, false
	}

	entry, valid := decodeEntry(raw)
	if !valid {
		ws.logger.Warnf(providers.TypeWeather, "Dropping malformed cache entry %s", key)
		delete(all, key)
		if err := ws.store.Save(storage.KeyWeatherCache, all); err != nil {
			ws.logger.Errorf(providers.TypeWeather, "Unable to rewrite weather cache: %s", err)
		}
		return models.WeatherSnapshot{}, false
	}
	if ws.expired(entry) {
		return models.WeatherSnapshot{}, false
	}
	return *entry.Data, true
}

func (ws *WeatherService) remember(key string, snap models.WeatherSnapshot) {
	encoded, err := json.Marshal(models.CacheEntry{Data: &snap, Timestamp: ws.now().UnixMilli()})
	if err != nil {
		ws.logger.Errorf(providers.TypeWeather, "Unable to encode cache entry %s: %s", key, err)
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	all := ws.entries()
	all[key] = encoded
	if err := ws.store.Save(storage.KeyWeatherCache, all); err != nil {
		ws.logger.Warnf(providers.TypeWeather, "Weather for %s not cached: %s", key, err)
	}
}

// PruneExpired drops expired and malformed entries from the cache object
// and returns how many were removed.
func (ws *WeatherService) PruneExpired() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if !ws.store.Has(storage.KeyWeatherCache) {
		return 0
	}
	all := ws.entries()
	removed := 0
	for key, raw := range all {
		entry, valid := decodeEntry(raw)
		if !valid || ws.expired(entry) {
			delete(all, key)
			removed++
		}
	}
	if removed == 0 {
		return 0
	}
	if err := ws.store.Save(storage.KeyWeatherCache, all); err != nil {
		ws.logger.Errorf(providers.TypeWeather, "Unable to prune weather cache: %s", err)
		return 0
	}
	ws.logger.Infof(providers.TypeWeather, "Pruned %d weather cache entries", removed)
	return removed
}

// NewWeatherPruner exposes the weather cache maintenance to the scheduler.
func NewWeatherPruner(ws WeatherServiceInterface) interfaces.PrunerInterface {
	return ws
}
