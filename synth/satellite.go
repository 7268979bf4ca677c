package synth

import (
	"math"
	"math/rand"
	"time"

	"github.com/agrodata-labs/farmgame-simulator/model"
)

// SatelliteGenerator produces synthetic NDVI/EVI observation series.
// Roughly 70% of days yield a clear-sky sample; the rest are dropped as
// clouded out, unless an overpass predictor further gates the dates.
type SatelliteGenerator struct {
	rng *rand.Rand

	// Overpasses optionally restricts observation dates to days on which
	// the (simulated) imaging satellite actually rises above the site.
	Overpasses *OverpassPredictor
}

// NewSatelliteGenerator constructs a generator with a fixed seed.
func NewSatelliteGenerator(seed int64) *SatelliteGenerator {
	return &SatelliteGenerator{rng: rand.New(rand.NewSource(seed))}
}

// Series generates daily vegetation-index samples between start and end
// (inclusive) centred on the given point. NDVI stays in [0, 0.9], EVI in
// [0, 0.8] and tracks NDVI at roughly 0.7×. The seasonal pattern follows
// day of year scaled by a normalized-latitude factor, matching the
// behavior of the game's demo data source.
func (g *SatelliteGenerator) Series(center model.GeoPoint, start, end time.Time) []model.SatelliteSample {
	var out []model.SatelliteSample
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		if g.Overpasses != nil && !g.Overpasses.VisibleOnDay(date, center) {
			continue
		}
		// ~70% chance of clear imagery.
		if g.rng.Float64() <= 0.3 {
			continue
		}

		doy := float64(date.YearDay())
		seasonal := 0.3*math.Sin(2*math.Pi*doy/365) + 0.5
		latFactor := (center.Latitude + 90) / 180

		ndvi := 0.2 + seasonal*0.6*latFactor + g.rng.NormFloat64()*0.1
		ndvi = clamp(ndvi, 0, 0.9)

		evi := ndvi*0.7 + g.rng.NormFloat64()*0.05
		evi = clamp(evi, 0, 0.8)

		out = append(out, model.SatelliteSample{
			Date:       date.Format("2006-01-02"),
			NDVI:       round3(ndvi),
			EVI:        round3(evi),
			CloudCover: round1(g.rng.Float64() * 30),
			Source:     "Sentinel-2 (simulated)",
		})
	}
	return out
}

// VegetationHealth classifies a series of NDVI values the way the game
// reports crop health.
func VegetationHealth(ndvi []float64) (status string, score float64) {
	if len(ndvi) == 0 {
		return "no_data", 0
	}
	var sum float64
	for _, v := range ndvi {
		sum += v
	}
	mean := sum / float64(len(ndvi))

	switch {
	case mean > 0.6:
		return "excellent", math.Min(100, 90+(mean-0.6)*25)
	case mean > 0.4:
		return "good", 70 + (mean-0.4)*100
	case mean > 0.2:
		return "moderate", 40 + (mean-0.2)*150
	default:
		return "poor", math.Max(10, mean*200)
	}
}
