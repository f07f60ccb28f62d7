// Package weather turns Open-Meteo forecast and pollen series into the
// bee-friendliness and forage scores shown for a plot.
package weather

import (
	"beelandr/internal/models"
	"math"
	"strconv"
)

// NeutralForageIndex stands in for the forage term when no pollen data exists.
const NeutralForageIndex = 50

// Species in tie-break order for the dominant species.
var Species = []string{"birch", "grass", "ragweed", "alder", "mugwort", "olive"}

const DominantNone = "none"

func DefaultSnapshot() models.WeatherSnapshot {
	return models.WeatherSnapshot{
		Temperature: 15,
		TempMin:     10,
		TempMax:     20,
		Humidity:    60,
		Rainfall:    800,
		WindSpeed:   15,
		Condition:   "Data Unavailable",
		BeeScore:    50,
	}
}

// CacheKey is the weather cache key for a coordinate, both parts rounded
// to four decimals.
func CacheKey(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', 4, 64) + "_" + strconv.FormatFloat(lng, 'f', 4, 64)
}

func Condition(temp float64) string {
	switch {
	case temp < 0:
		return "Cold"
	case temp < 10:
		return "Cool"
	case temp < 20:
		return "Mild"
	case temp < 25:
		return "Warm"
	default:
		return "Hot"
	}
}

// SpeciesContribution maps an average pollen concentration to a 0-100
// forage contribution, piecewise linear between 50, 500, 2000 and 5000.
func SpeciesContribution(avg float64) float64 {
	switch {
	case avg < 50:
		return 0
	case avg < 500:
		return (avg - 50) / 450 * 50
	case avg < 2000:
		return 50 + (avg-500)/1500*30
	case avg < 5000:
		return 80 + (avg-2000)/3000*15
	default:
		return 100
	}
}

// CalculateForageIndex averages the contributions of every species with a
// positive average together with one baseline member worth
// NeutralForageIndex, so no contributing species yields the baseline.
func CalculateForageIndex(averages map[string]float64) int {
	total := float64(NeutralForageIndex)
	contributing := 0
	for _, sp := range Species {
		avg, ok := averages[sp]
		if !ok || avg <= 0 {
			continue
		}
		total += SpeciesContribution(avg)
		contributing++
	}
	return clampScore(roundHalfUp(total / float64(contributing+1)))
}

func temperaturePenalty(temp float64) float64 {
	switch {
	case temp < 10 || temp > 30:
		return 25
	case temp < 15 || temp > 25:
		return 15
	case temp < 18 || temp > 23:
		return 5
	}
	return 0
}

func humidityPenalty(humidity float64) float64 {
	switch {
	case humidity < 30 || humidity > 80:
		return 15
	case humidity < 40 || humidity > 75:
		return 5
	}
	return 0
}

func windPenalty(wind float64) float64 {
	switch {
	case wind > 40:
		return 20
	case wind > 30:
		return 10
	case wind > 20:
		return 5
	}
	return 0
}

func rainfallPenalty(rainfall float64) float64 {
	if rainfall < 300 || rainfall > 2000 {
		return 10
	}
	return 0
}

// CalculateBeeScore applies the climate penalties to 100 and blends the
// result 90/10 with the forage index.
func CalculateBeeScore(temp, humidity, rainfall, windSpeed float64, forageIndex int) int {
	score := 100.0
	score -= temperaturePenalty(temp)
	score -= humidityPenalty(humidity)
	score -= windPenalty(windSpeed)
	score -= rainfallPenalty(rainfall)

	blended := score*0.9 + float64(forageIndex)*0.1
	return clampScore(roundHalfUp(blended))
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func round1(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}

func clampScore(v int) int {
	return min(max(v, 0), 100)
}
