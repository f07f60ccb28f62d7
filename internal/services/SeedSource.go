package services

import (
	"beelandr/internal/models"
	"beelandr/internal/providers"
	"beelandr/internal/structures"
	"context"
	"fmt"
	json "github.com/goccy/go-json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const maxSeedSize = 8 << 20

type SeedSourceInterface interface {
	Fetch(ctx context.Context) ([]models.Plot, error)
}

// SeedSource reads the community listing from a URL, a file or the copy
// embedded in the binary, in that order of preference.
type SeedSource struct {
	source     string
	ttl        time.Duration
	httpClient *http.Client
	cache      providers.CacheProviderInterface
	logger     providers.Logger
}

func NewSeedSource(conf *structures.Config, cache providers.CacheProviderInterface, logger providers.Logger) SeedSourceInterface {
	return &SeedSource{
		source:     strings.TrimSpace(conf.Seed.Source),
		ttl:        conf.Seed.CacheTTL,
		httpClient: &http.Client{Timeout: conf.Weather.Timeout},
		cache:      cache,
		logger:     logger,
	}
}

func (s *SeedSource) cacheKey() string {
	return "seed:" + s.source
}

func (s *SeedSource) Fetch(ctx context.Context) ([]models.Plot, error) {
	if s.source == "" {
		return s.decode(models.DefaultSeed)
	}

	if data, ok := s.cache.Get(s.cacheKey()); ok {
		return s.decode(data)
	}

	data, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	plots, err := s.decode(data)
	if err != nil {
		return nil, err
	}
	s.cache.Set(s.cacheKey(), data, s.ttl)
	return plots, nil
}

func (s *SeedSource) read(ctx context.Context) ([]byte, error) {
	if !strings.HasPrefix(s.source, "http://") && !strings.HasPrefix(s.source, "https://") {
		data, err := os.ReadFile(s.source)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch seed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch seed: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxSeedSize))
}

// decode parses the listing array. A record that does not describe a valid
// plot is logged and skipped; a document that is not an array is an error.
func (s *SeedSource) decode(data []byte) ([]models.Plot, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	plots := make([]models.Plot, 0, len(raw))
	for i, r := range raw {
		var p models.Plot
		if err := json.Unmarshal(r, &p); err != nil {
			s.logger.Warnf(providers.TypeApp, "Skipping seed record %d: %s", i, err)
			continue
		}
		plots = append(plots, p)
	}
	return plots, nil
}
