package providers

import (
	"beelandr/internal/storage"
	"beelandr/internal/structures"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"strconv"
	"time"
)

const metricsNamespace = "beelandr"

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	IncWeatherResults(source string)
	IncPollenFailures()
	SetPlotsTotal(source string, count int)
}

type MetricsProvider struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	seedCache       *prometheus.CounterVec
	persistDuration prometheus.Histogram
	weatherResults  *prometheus.CounterVec
	pollenFailures  prometheus.Counter
	plots           *prometheus.GaugeVec
}

// NewMetricsProvider registers the collectors on the default registry,
// which /metrics serves.
func NewMetricsProvider(conf *structures.Config, store storage.StoreInterface) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}
	return newMetricsProvider(prometheus.DefaultRegisterer, store)
}

func newMetricsProvider(reg prometheus.Registerer, store storage.StoreInterface) *MetricsProvider {
	f := promauto.With(reg)

	m := &MetricsProvider{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by endpoint and status class.",
		}, []string{"endpoint", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by endpoint.",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 20},
		}, []string{"endpoint"}),
		seedCache: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "seed_cache",
			Name:      "lookups_total",
			Help:      "Seed listing cache lookups by result (hit, miss).",
		}, []string{"result"}),
		persistDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "store",
			Name:      "persist_duration_seconds",
			Help:      "Time spent writing the store snapshot to disk.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 7),
		}),
		weatherResults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "weather",
			Name:      "results_total",
			Help:      "Weather lookups by source (live, cache, default).",
		}, []string{"source"}),
		pollenFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "weather",
			Name:      "pollen_failures_total",
			Help:      "Pollen requests that failed; the forecast was served without a pollen block.",
		}),
		plots: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "plots",
			Help:      "Plots known at the last load, by source (seed, user).",
		}, []string{"source"}),
	}

	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: "store",
		Name:      "bytes",
		Help:      "Size of keys and values in the local store.",
	}, func() float64 { return float64(store.Size()) })
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: "store",
		Name:      "keys",
		Help:      "Keys set in the local store.",
	}, func() float64 { return float64(len(store.Keys())) })

	return m
}

// statusClass collapses a status code to its class ("2xx", "4xx", ...).
func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requests.WithLabelValues(endpoint, statusClass(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.seedCache.WithLabelValues("hit").Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.seedCache.WithLabelValues("miss").Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncWeatherResults(source string) {
	m.weatherResults.WithLabelValues(source).Inc()
}

func (m *MetricsProvider) IncPollenFailures() {
	m.pollenFailures.Inc()
}

func (m *MetricsProvider) SetPlotsTotal(source string, count int) {
	m.plots.WithLabelValues(source).Set(float64(count))
}

type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(string, int)                 {}
func (n *noopMetrics) ObserveRequestDuration(string, time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                {}
func (n *noopMetrics) IncCacheMisses()                              {}
func (n *noopMetrics) ObservePersistenceDuration(time.Duration)     {}
func (n *noopMetrics) IncWeatherResults(string)                     {}
func (n *noopMetrics) IncPollenFailures()                           {}
func (n *noopMetrics) SetPlotsTotal(string, int)                    {}
