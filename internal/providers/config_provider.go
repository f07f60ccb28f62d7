package providers

import (
	"beelandr/internal/structures"
	"fmt"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"path/filepath"
	"strings"
	"time"
)

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("storage.quotaBytes", 5*1024*1024)
	v.SetDefault("storage.compression", "default")
	v.SetDefault("weather.forecastURL", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("weather.airQualityURL", "https://air-quality-api.open-meteo.com/v1/air-quality")
	v.SetDefault("weather.timeout", 10*time.Second)
	v.SetDefault("weather.cacheTTL", 24*time.Hour)
	v.SetDefault("weather.pruneInterval", time.Hour)
	v.SetDefault("seed.cacheTTL", time.Minute)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	// .env is optional; real environment variables take precedence over it.
	_ = godotenv.Load()

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")
	setConfigDefaults(v)

	v.BindEnv("logger.level", "BEELANDR_LOG_LEVEL")
	v.BindEnv("webServer.port", "BEELANDR_PORT")
	v.BindEnv("storage.filePath", "BEELANDR_STORE_PATH")
	v.BindEnv("storage.saveInterval", "BEELANDR_SAVE_INTERVAL")
	v.BindEnv("seed.source", "BEELANDR_SEED_SOURCE")
	v.BindEnv("cache.enabled", "BEELANDR_CACHE_ENABLED")
	v.BindEnv("cache.size", "BEELANDR_CACHE_SIZE")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "BeeLandr"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
