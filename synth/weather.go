// Package synth holds the game's synthetic data producers. Every metric
// here is pseudo-random with no external data dependency: the generators
// promise values in realistic ranges, nothing more. Seeded construction
// makes runs reproducible.
package synth

import (
	"math"
	"math/rand"
	"time"

	"github.com/agrodata-labs/farmgame-simulator/model"
)

// climateBand is a coarse latitude-banded climate baseline.
type climateBand struct {
	baseTemp     float64 // °C
	baseHumidity float64 // %
	rainfallProb float64 // daily chance of rain
}

// bandForLatitude picks a baseline from the absolute latitude.
func bandForLatitude(lat float64) climateBand {
	switch abs := math.Abs(lat); {
	case abs < 23.5: // tropical
		return climateBand{28, 75, 0.4}
	case abs < 40: // subtropical
		return climateBand{22, 65, 0.3}
	case abs < 60: // temperate
		return climateBand{15, 60, 0.25}
	default: // cold
		return climateBand{5, 70, 0.2}
	}
}

// WeatherGenerator produces daily weather series with latitude-banded
// baselines, a seasonal sinusoid, and bounded noise.
type WeatherGenerator struct {
	rng *rand.Rand
}

// NewWeatherGenerator constructs a generator with a fixed seed.
func NewWeatherGenerator(seed int64) *WeatherGenerator {
	return &WeatherGenerator{rng: rand.New(rand.NewSource(seed))}
}

// DailySeries generates days of weather ending at end (inclusive) for the
// given location. Humidity stays in [20, 95], rainfall and wind are
// non-negative, and the seasonal phase flips across the equator.
func (g *WeatherGenerator) DailySeries(lat, lon float64, days int, end time.Time) []model.WeatherDay {
	if days <= 0 {
		return nil
	}
	band := bandForLatitude(lat)

	out := make([]model.WeatherDay, 0, days)
	for i := 0; i < days; i++ {
		date := end.AddDate(0, 0, -(days - i - 1))
		doy := float64(date.YearDay())
		seasonal := math.Sin(2 * math.Pi * doy / 365)
		if lat < 0 {
			seasonal = -seasonal
		}

		temp := band.baseTemp + seasonal*10 + g.rng.NormFloat64()*4

		humidity := band.baseHumidity + g.rng.NormFloat64()*15
		humidity = math.Max(20, math.Min(95, humidity))

		rainfall := 0.0
		if g.rng.Float64() < band.rainfallProb {
			// Exponential tail gives realistic rain patterns: many light
			// days, occasional downpours.
			rainfall = g.rng.ExpFloat64() * 8
		}

		wind := math.Max(0, 8+g.rng.NormFloat64()*4)

		cloudFactor := 1 - rainfall/20
		solar := math.Max(0, (20+seasonal*10)*cloudFactor+g.rng.NormFloat64()*3)

		out = append(out, model.WeatherDay{
			Date:           date.Format("2006-01-02"),
			Temperature:    round1(temp),
			Humidity:       round1(humidity),
			Rainfall:       round1(rainfall),
			WindSpeed:      round1(wind),
			SolarRadiation: round1(solar),
		})
	}
	return out
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

func clamp(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }
