// Package openmeteo fetches daily forecasts and hourly pollen series from
// the Open-Meteo forecast and air-quality APIs.
package openmeteo

import (
	"beelandr/internal/structures"
	"beelandr/internal/weather"
	"context"
	"errors"
	"fmt"
	json "github.com/goccy/go-json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const maxResponseSize = 4 << 20

var dailyMetrics = []string{
	"temperature_2m_max",
	"temperature_2m_min",
	"precipitation_sum",
	"wind_speed_10m_max",
	"relative_humidity_2m_max",
}

type ClientInterface interface {
	Forecast(ctx context.Context, lat, lng float64) (weather.DailySeries, error)
	Pollen(ctx context.Context, lat, lng float64) (weather.HourlyPollen, error)
}

type Client struct {
	httpClient    *http.Client
	forecastURL   string
	airQualityURL string
}

func NewClient(conf *structures.Config) ClientInterface {
	return &Client{
		httpClient:    &http.Client{Timeout: conf.Weather.Timeout},
		forecastURL:   conf.Weather.ForecastURL,
		airQualityURL: conf.Weather.AirQualityURL,
	}
}

type apiError struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

func pollenMetric(species string) string {
	return species + "_pollen"
}

func (c *Client) Forecast(ctx context.Context, lat, lng float64) (weather.DailySeries, error) {
	var body struct {
		Daily *weather.DailySeries `json:"daily"`
	}
	err := c.get(ctx, c.forecastURL, lat, lng, "daily", dailyMetrics, &body)
	if err != nil {
		return weather.DailySeries{}, fmt.Errorf("forecast: %w", err)
	}
	if body.Daily == nil {
		return weather.DailySeries{}, errors.New("forecast: response has no daily block")
	}
	return *body.Daily, nil
}

func (c *Client) Pollen(ctx context.Context, lat, lng float64) (weather.HourlyPollen, error) {
	metrics := make([]string, len(weather.Species))
	for i, sp := range weather.Species {
		metrics[i] = pollenMetric(sp)
	}

	var body struct {
		Hourly map[string]json.RawMessage `json:"hourly"`
	}
	if err := c.get(ctx, c.airQualityURL, lat, lng, "hourly", metrics, &body); err != nil {
		return nil, fmt.Errorf("pollen: %w", err)
	}
	if body.Hourly == nil {
		return nil, errors.New("pollen: response has no hourly block")
	}

	out := make(weather.HourlyPollen, len(weather.Species))
	for _, sp := range weather.Species {
		raw, ok := body.Hourly[pollenMetric(sp)]
		if !ok {
			continue
		}
		var series []*float64
		if err := json.Unmarshal(raw, &series); err != nil {
			return nil, fmt.Errorf("pollen: decode %s: %w", sp, err)
		}
		out[sp] = series
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, base string, lat, lng float64, block string, metrics []string, dest any) error {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set(block, strings.Join(metrics, ","))
	q.Set("timezone", "auto")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Reason != "" {
			return fmt.Errorf("status %d: %s", resp.StatusCode, apiErr.Reason)
		}
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	return json.Unmarshal(data, dest)
}
