package synth

import (
	"math"
	"math/rand"

	"github.com/agrodata-labs/farmgame-simulator/model"
)

// SoilEstimator synthesizes a soil condition snapshot from vegetation
// indices and recent weather. There is no real soil sensor: moisture is
// inferred from rainfall and temperature, nutrients from canopy vigor
// (lower NDVI reads as deficiency), plus bounded noise.
type SoilEstimator struct {
	rng *rand.Rand
}

// NewSoilEstimator constructs an estimator with a fixed seed.
func NewSoilEstimator(seed int64) *SoilEstimator {
	return &SoilEstimator{rng: rand.New(rand.NewSource(seed))}
}

// Estimate builds a snapshot from the trailing week of weather and the
// mean NDVI over the observation window.
func (e *SoilEstimator) Estimate(weather []model.WeatherDay, satellite []model.SatelliteSample) model.SoilEstimate {
	recent := weather
	if len(recent) > 7 {
		recent = recent[len(recent)-7:]
	}
	var rainfall, tempSum float64
	for _, d := range recent {
		rainfall += d.Rainfall
		tempSum += d.Temperature
	}
	avgTemp := 20.0
	if len(recent) > 0 {
		avgTemp = tempSum / float64(len(recent))
	}

	baseMoisture := math.Min(80, rainfall*3)
	tempAdjustment := math.Max(0, (25-avgTemp)*2)
	moisture := math.Max(10, baseMoisture+tempAdjustment+e.rng.NormFloat64()*5)

	ndvi := 0.5
	if len(satellite) > 0 {
		var sum float64
		for _, s := range satellite {
			sum += s.NDVI
		}
		ndvi = sum / float64(len(satellite))
	}

	return model.SoilEstimate{
		Moisture:      round1(clamp(moisture, 0, 100)),
		Nitrogen:      round1(math.Max(0, 40+ndvi*60+e.rng.NormFloat64()*10)),
		Phosphorus:    round1(math.Max(0, 25+ndvi*45+e.rng.NormFloat64()*8)),
		Potassium:     round1(math.Max(0, 35+ndvi*50+e.rng.NormFloat64()*12)),
		PH:            round1(6.0 + e.rng.NormFloat64()*0.5),
		OrganicMatter: round1(2.0 + e.rng.NormFloat64()*0.8),
	}
}
