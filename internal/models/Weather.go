package models

type WeatherSource string

const (
	SourceLive    WeatherSource = "live"
	SourceCache   WeatherSource = "cache"
	SourceDefault WeatherSource = "default"
)

type PollenBlock struct {
	// Averages holds the mean hourly concentration of each species that had
	// samples; species without samples are absent.
	Averages         map[string]float64 `json:"averages"`
	Dominant         string             `json:"dominant"`
	TotalPollenScore float64            `json:"totalPollenScore"`
	ForageIndex      int                `json:"forageIndex"`
}

type WeatherSnapshot struct {
	Temperature float64      `json:"temperature"`
	TempMin     float64      `json:"tempMin"`
	TempMax     float64      `json:"tempMax"`
	Humidity    int          `json:"humidity"`
	Rainfall    float64      `json:"rainfall"`
	WindSpeed   float64      `json:"windSpeed"`
	Condition   string       `json:"condition"`
	BeeScore    int          `json:"beeScore"`
	Pollen      *PollenBlock `json:"pollen,omitempty"`
}

// CacheEntry is one value of the weather cache object; Timestamp is the
// capture time in unix milliseconds.
type CacheEntry struct {
	Data      *WeatherSnapshot `json:"data"`
	Timestamp int64            `json:"timestamp"`
}

type WeatherResult struct {
	Weather WeatherSnapshot `json:"weather"`
	Source  WeatherSource   `json:"source"`
}

func (r WeatherResult) IsDefault() bool {
	return r.Source == SourceDefault
}
