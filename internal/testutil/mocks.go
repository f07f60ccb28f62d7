package testutil

import (
	"beelandr/internal/models"
	"beelandr/internal/providers"
	"beelandr/internal/weather"
	"context"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.Logs {
		if l.Level == level {
			n++
		}
	}
	return n
}

// MockMetrics implements providers.MetricsProviderInterface.
type MockMetrics struct {
	mu             sync.Mutex
	CacheHits      int
	CacheMisses    int
	Persisted      int
	WeatherResults map[string]int
	PollenFailures int
	PlotsTotal     map[string]int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		WeatherResults: make(map[string]int),
		PlotsTotal:     make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Persisted++
}

func (m *MockMetrics) IncWeatherResults(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WeatherResults[source]++
}

func (m *MockMetrics) IncPollenFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PollenFailures++
}

func (m *MockMetrics) SetPlotsTotal(source string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlotsTotal[source] = count
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
	TTLs map[string]time.Duration
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte), TTLs: make(map[string]time.Duration)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
	m.TTLs[key] = ttl
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

// MockSeedSource returns a fixed listing or error.
type MockSeedSource struct {
	mu    sync.Mutex
	Plots []models.Plot
	Err   error
	Calls int
}

func (m *MockSeedSource) Fetch(_ context.Context) ([]models.Plot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]models.Plot, len(m.Plots))
	copy(out, m.Plots)
	return out, nil
}

// MockWeatherClient implements openmeteo.ClientInterface.
type MockWeatherClient struct {
	mu            sync.Mutex
	Daily         weather.DailySeries
	Hourly        weather.HourlyPollen
	ForecastErr   error
	PollenErr     error
	ForecastCalls int
	PollenCalls   int
}

func (m *MockWeatherClient) Forecast(_ context.Context, _, _ float64) (weather.DailySeries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ForecastCalls++
	return m.Daily, m.ForecastErr
}

func (m *MockWeatherClient) Pollen(_ context.Context, _, _ float64) (weather.HourlyPollen, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PollenCalls++
	return m.Hourly, m.PollenErr
}

// MockWeatherService implements services.WeatherServiceInterface. Hook runs
// before the result is returned, letting tests interleave other calls.
type MockWeatherService struct {
	mu     sync.Mutex
	Result models.WeatherResult
	Hook   func()
	Calls  []models.LatLng
}

func (m *MockWeatherService) GetWeatherForPlot(_ context.Context, lat, lng float64) models.WeatherResult {
	m.mu.Lock()
	m.Calls = append(m.Calls, models.LatLng{Lat: lat, Lng: lng})
	hook := m.Hook
	m.mu.Unlock()
	if hook != nil {
		hook()
	}
	return m.Result
}

func (m *MockWeatherService) PruneExpired() int { return 0 }

// Ptr returns a pointer to v; handy for optional float samples.
func Ptr[T any](v T) *T {
	return &v
}
