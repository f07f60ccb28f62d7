package structures

import (
	"net/http"
	"time"
)

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Route struct {
	Url     string
	Handler http.Handler
}

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type StorageConfig struct {
	FilePath     string        `yaml:"filePath" validate:"required|unixPath"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
	QuotaBytes   int           `yaml:"quotaBytes" validate:"min:0"`
	Compression  string        `yaml:"compression" validate:"in:fastest,default,better,best"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type WeatherConfig struct {
	ForecastURL   string        `yaml:"forecastURL" validate:"required|fullUrl"`
	AirQualityURL string        `yaml:"airQualityURL" validate:"required|fullUrl"`
	Timeout       time.Duration `yaml:"timeout" validate:"required|min:1"`
	CacheTTL      time.Duration `yaml:"cacheTTL" validate:"required|min:1"`
	PruneInterval time.Duration `yaml:"pruneInterval"`
}

// SeedConfig points at the community plot listing. Source may be an http(s) URL
// or a file path; empty means the listing bundled with the binary.
type SeedConfig struct {
	Source   string        `yaml:"source"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	WebServer Server        `yaml:"webServer"`
	Storage   StorageConfig `yaml:"storage"`
	Logger    LoggerConfig  `yaml:"logger"`
	Weather   WeatherConfig `yaml:"weather"`
	Seed      SeedConfig    `yaml:"seed"`
	Cache     CacheConfig   `yaml:"cache"`
	Metrics   MetricsConfig `yaml:"metrics"`
}
