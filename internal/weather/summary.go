package weather

import (
	"beelandr/internal/models"
	"errors"
)

var ErrNoForecast = errors.New("forecast has no temperature samples")

// DailySeries mirrors the "daily" block of a forecast response. Samples are
// pointers because the API reports missing days as null.
type DailySeries struct {
	Time             []string   `json:"time"`
	TemperatureMax   []*float64 `json:"temperature_2m_max"`
	TemperatureMin   []*float64 `json:"temperature_2m_min"`
	PrecipitationSum []*float64 `json:"precipitation_sum"`
	WindSpeedMax     []*float64 `json:"wind_speed_10m_max"`
	HumidityMax      []*float64 `json:"relative_humidity_2m_max"`
}

// HourlyPollen maps a species name to its hourly concentrations.
type HourlyPollen map[string][]*float64

type Summary struct {
	TempMax     float64
	TempMin     float64
	Temperature float64
	Rainfall    float64
	WindSpeed   float64
	Humidity    int
}

func mean(samples []*float64) (float64, bool) {
	var sum float64
	n := 0
	for _, s := range samples {
		if s == nil {
			continue
		}
		sum += *s
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func sum(samples []*float64) (float64, bool) {
	var total float64
	seen := false
	for _, s := range samples {
		if s == nil {
			continue
		}
		total += *s
		seen = true
	}
	return total, seen
}

// Summarize reduces a forecast to the displayed statistics. Temperatures are
// required; a metric without any sample falls back to the default snapshot's
// value for it.
func Summarize(d DailySeries) (Summary, error) {
	maxT, okMax := mean(d.TemperatureMax)
	minT, okMin := mean(d.TemperatureMin)
	if !okMax || !okMin {
		return Summary{}, ErrNoForecast
	}

	def := DefaultSnapshot()
	rain, ok := sum(d.PrecipitationSum)
	if !ok {
		rain = def.Rainfall
	}
	wind, ok := mean(d.WindSpeedMax)
	if !ok {
		wind = def.WindSpeed
	}
	humidity, ok := mean(d.HumidityMax)
	if !ok {
		humidity = float64(def.Humidity)
	}

	return Summary{
		TempMax:     round1(maxT),
		TempMin:     round1(minT),
		Temperature: round1((maxT + minT) / 2),
		Rainfall:    round1(rain),
		WindSpeed:   round1(wind),
		Humidity:    roundHalfUp(humidity),
	}, nil
}

// AnalyzePollen builds the pollen block. Species without samples have no
// average and take no part in the dominant species comparison.
func AnalyzePollen(h HourlyPollen) *models.PollenBlock {
	averages := make(map[string]float64, len(Species))
	block := &models.PollenBlock{
		Averages: make(map[string]float64, len(Species)),
		Dominant: DominantNone,
	}

	best := 0.0
	for _, sp := range Species {
		avg, ok := mean(h[sp])
		if !ok {
			continue
		}
		averages[sp] = avg
		block.Averages[sp] = round1(avg)
		block.TotalPollenScore += avg
		if avg > best {
			best = avg
			block.Dominant = sp
		}
	}

	block.TotalPollenScore = round1(block.TotalPollenScore)
	block.ForageIndex = CalculateForageIndex(averages)
	return block
}

// BuildSnapshot scores a summary, using the pollen block's forage index
// when there is one.
func BuildSnapshot(s Summary, pollen *models.PollenBlock) models.WeatherSnapshot {
	forage := NeutralForageIndex
	if pollen != nil {
		forage = pollen.ForageIndex
	}
	return models.WeatherSnapshot{
		Temperature: s.Temperature,
		TempMin:     s.TempMin,
		TempMax:     s.TempMax,
		Humidity:    s.Humidity,
		Rainfall:    s.Rainfall,
		WindSpeed:   s.WindSpeed,
		Condition:   Condition(s.Temperature),
		BeeScore:    CalculateBeeScore(s.Temperature, float64(s.Humidity), s.Rainfall, s.WindSpeed, forage),
		Pollen:      pollen,
	}
}
