package synth

import (
	"math"

	"github.com/agrodata-labs/farmgame-simulator/model"
)

// LAIMethod selects how leaf area index is derived from vegetation indices.
type LAIMethod string

const (
	LAIExponential LAIMethod = "ndvi_exponential"
	LAILinear      LAIMethod = "ndvi_linear"
	LAIFromEVI     LAIMethod = "evi_based"
	LAICombined    LAIMethod = "combined"
)

// extinctionCoefficient is the canopy light extinction coefficient used by
// the exponential NDVI relationship (general crop value).
const extinctionCoefficient = 0.5

// maxLAI clamps estimates to a reasonable crop canopy range.
const maxLAI = 8.0

// LAICalculator derives LAI estimates from satellite samples. It is a pure
// computation with no randomness of its own.
type LAICalculator struct {
	// Method is the derivation used by Timeseries; defaults to combined.
	Method LAIMethod
}

// NewLAICalculator returns a calculator using the combined method.
func NewLAICalculator() *LAICalculator {
	return &LAICalculator{Method: LAICombined}
}

// Timeseries derives one LAI sample per satellite sample.
func (c *LAICalculator) Timeseries(samples []model.SatelliteSample) []model.LAISample {
	method := c.Method
	if method == "" {
		method = LAICombined
	}
	out := make([]model.LAISample, 0, len(samples))
	for _, s := range samples {
		lai, conf := c.estimate(method, s.NDVI, s.EVI)
		out = append(out, model.LAISample{
			Date:       s.Date,
			LAI:        round3(lai),
			Confidence: math.Round(conf*100) / 100,
			Method:     string(method),
			NDVI:       s.NDVI,
			EVI:        s.EVI,
		})
	}
	return out
}

// estimate computes one LAI value plus confidence for the chosen method.
func (c *LAICalculator) estimate(method LAIMethod, ndvi, evi float64) (lai, confidence float64) {
	switch method {
	case LAIExponential:
		return laiExponential(ndvi)
	case LAILinear:
		return laiLinear(ndvi)
	case LAIFromEVI:
		return laiFromEVI(ndvi, evi)
	default:
		return laiCombined(ndvi, evi)
	}
}

// laiExponential uses LAI = -ln(1-NDVI)/k, the Beer-Lambert inversion.
func laiExponential(ndvi float64) (float64, float64) {
	if ndvi <= 0 {
		return 0, 0
	}
	lai := -math.Log(1-math.Min(ndvi, 0.95)) / extinctionCoefficient
	return math.Max(0, lai), confidenceFor(ndvi) * 0.9
}

// laiLinear uses an empirical linear fit LAI = 6·NDVI − 1.2.
func laiLinear(ndvi float64) (float64, float64) {
	lai := clamp(6.0*ndvi-1.2, 0, maxLAI)
	return lai, confidenceFor(ndvi)
}

// laiFromEVI uses LAI = 3.618·EVI², less sensitive to soil background.
func laiFromEVI(ndvi, evi float64) (float64, float64) {
	if evi == 0 {
		evi = ndvi * 0.7
	}
	lai := clamp(3.618*evi*evi, 0, maxLAI)
	conf := math.Min(100, confidenceFor(evi)*1.1)
	return lai, conf
}

// laiCombined is a confidence-weighted average of the other methods.
func laiCombined(ndvi, evi float64) (float64, float64) {
	expLAI, expConf := laiExponential(ndvi)
	linLAI, linConf := laiLinear(ndvi)
	eviLAI, eviConf := laiFromEVI(ndvi, evi)

	totalWeight := expConf + linConf + eviConf
	if totalWeight <= 0 {
		return (expLAI + linLAI + eviLAI) / 3, 50
	}
	lai := (expConf*expLAI + linConf*linLAI + eviConf*eviLAI) / totalWeight
	return lai, (expConf + linConf + eviConf) / 3
}

// confidenceFor scores how trustworthy an index value is: confidence drops
// at the extremes where the index saturates.
func confidenceFor(index float64) float64 {
	var conf float64
	switch {
	case index < 0.1:
		conf = 30
	case index < 0.2:
		conf = 50
	case index < 0.8:
		conf = 70 + (index-0.2)*30
	default:
		conf = 70 - (index-0.8)*50
	}
	return clamp(conf, 20, 95)
}
