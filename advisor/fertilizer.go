// Package advisor produces the canned recommendations the player's
// fertilizer and irrigation decisions are scored against. The heuristics
// mirror the game's rule set: threshold tables over LAI, soil nutrients,
// and recent weather, with an additive confidence score clamped to 50–95.
package advisor

import (
	"fmt"
	"math"
	"strings"

	"github.com/agrodata-labs/farmgame-simulator/model"
)

// laiThresholds classify canopy health.
var laiThresholds = struct {
	critical, low, optimal, high float64
}{critical: 1.5, low: 2.5, optimal: 4.0, high: 6.0}

// nutrientThresholds hold low/optimal bounds in ppm.
type nutrientThresholds struct{ low, optimal float64 }

var (
	nitrogenThresholds   = nutrientThresholds{low: 50, optimal: 80}
	phosphorusThresholds = nutrientThresholds{low: 30, optimal: 50}
	potassiumThresholds  = nutrientThresholds{low: 40, optimal: 70}
)

// FertilizerAdvisor generates fertilizer recommendations from the
// analysis bundle. Pure computation; all randomness lives in the synth
// generators upstream.
type FertilizerAdvisor struct{}

// NewFertilizerAdvisor returns an advisor.
func NewFertilizerAdvisor() *FertilizerAdvisor { return &FertilizerAdvisor{} }

// Recommend scores vegetation, soil, and weather conditions into a
// recommendation. With no LAI data it returns the cautious fallback
// (no fertilizer, confidence 50).
func (a *FertilizerAdvisor) Recommend(lai []model.LAISample, weather []model.WeatherDay, soil model.SoilEstimate) model.FertilizerAdvice {
	if len(lai) == 0 {
		return model.FertilizerAdvice{
			NeedsFertilizer: false,
			Confidence:      50,
			Reasoning:       "Unable to complete full analysis. Manual inspection recommended.",
			ExpectedBenefit: "Analysis incomplete",
		}
	}

	currentLAI := lai[len(lai)-1].LAI
	trend := laiTrend(lai)
	recentRain := recentRainfall(weather, 7)

	var factors []string
	confidence := 70.0
	needs := false

	switch {
	case currentLAI < laiThresholds.low:
		needs = true
		factors = append(factors, fmt.Sprintf("Low LAI (%.2f) indicates poor vegetation health", currentLAI))
		confidence += 15
	case currentLAI < laiThresholds.optimal:
		needs = true
		factors = append(factors, fmt.Sprintf("Moderate LAI (%.2f) suggests room for improvement", currentLAI))
		confidence += 10
	default:
		factors = append(factors, fmt.Sprintf("Good LAI (%.2f) indicates healthy vegetation", currentLAI))
		confidence += 5
	}

	var soilFactors []string
	if soil.Nitrogen < nitrogenThresholds.low {
		needs = true
		soilFactors = append(soilFactors, "low nitrogen")
		confidence += 12
	}
	if soil.Phosphorus < phosphorusThresholds.low {
		needs = true
		soilFactors = append(soilFactors, "low phosphorus")
		confidence += 8
	}
	if len(soilFactors) > 0 {
		factors = append(factors, "Soil analysis shows "+strings.Join(soilFactors, ", "))
	}

	switch {
	case recentRain > 20:
		factors = append(factors, "Recent rainfall provides good conditions for nutrient uptake")
		confidence += 8
	case recentRain < 5:
		factors = append(factors, "Low recent rainfall may reduce fertilizer effectiveness")
		confidence -= 5
	}

	if trend == "decreasing" {
		needs = true
		factors = append(factors, "Declining vegetation trend suggests intervention needed")
		confidence += 10
	}

	// Excellent canopies override everything: more fertilizer won't help.
	if currentLAI > laiThresholds.high {
		needs = false
		factors = append(factors, "Excellent vegetation health - fertilizer may not be necessary")
		confidence = math.Max(confidence, 80)
	}

	advice := model.FertilizerAdvice{
		NeedsFertilizer: needs,
		Confidence:      clampConfidence(confidence),
		Reasoning:       strings.Join(factors, ". ") + ".",
		ExpectedBenefit: expectedBenefit(currentLAI, needs),
	}
	if needs {
		advice.FertilizerType, advice.ApplicationRate = fertilizerType(soil)
		advice.Timing = applicationTiming(weather)
	}
	return advice
}

// fertilizerType picks the product by the largest nutrient deficit.
func fertilizerType(soil model.SoilEstimate) (string, float64) {
	nDeficit := math.Max(0, nitrogenThresholds.optimal-soil.Nitrogen)
	pDeficit := math.Max(0, phosphorusThresholds.optimal-soil.Phosphorus)
	kDeficit := math.Max(0, potassiumThresholds.optimal-soil.Potassium)

	switch {
	case nDeficit > pDeficit && nDeficit > kDeficit:
		return "Nitrogen-rich (e.g., Urea 46-0-0)", math.Round(math.Min(150, 50+nDeficit*2))
	case pDeficit > kDeficit:
		return "Phosphorus-rich (e.g., DAP 18-46-0)", math.Round(math.Min(100, 30+pDeficit*1.5))
	case kDeficit > 10:
		return "Potassium-rich (e.g., MOP 0-0-60)", math.Round(math.Min(120, 40+kDeficit*1.8))
	default:
		return "Balanced NPK (e.g., 15-15-15)", 75
	}
}

// applicationTiming assesses the weather window for spreading.
func applicationTiming(weather []model.WeatherDay) string {
	recent := trailing(weather, 7)
	if len(recent) == 0 {
		return "Wait for better weather conditions (less wind, moderate rainfall expected)"
	}
	var rain, temp, humidity float64
	for _, d := range recent {
		rain += d.Rainfall
		temp += d.Temperature
		humidity += d.Humidity
	}
	temp /= float64(len(recent))
	humidity /= float64(len(recent))

	suitable := 0
	if temp >= 10 && temp <= 30 {
		suitable++
	}
	if rain >= 5 && rain <= 25 {
		suitable++
	}
	if humidity >= 40 {
		suitable++
	}
	switch {
	case suitable >= 3:
		return "Apply immediately - conditions are optimal"
	case suitable >= 2:
		return "Apply in 1-2 days when conditions improve"
	default:
		return "Wait for better weather conditions (less wind, moderate rainfall expected)"
	}
}

func expectedBenefit(currentLAI float64, needs bool) string {
	if !needs {
		return "No significant benefit expected - vegetation is already healthy"
	}
	switch {
	case currentLAI < 1.5:
		return "Significant improvement expected - LAI could increase by 1.0-2.0 points"
	case currentLAI < 2.5:
		return "Moderate improvement expected - LAI could increase by 0.5-1.0 points"
	default:
		return "Minor improvement expected - LAI could increase by 0.2-0.5 points"
	}
}

// laiTrend fits a slope over the last three samples.
func laiTrend(lai []model.LAISample) string {
	if len(lai) < 3 {
		return "unknown"
	}
	last := trailingLAI(lai, 3)
	slope := (last[2] - last[0]) / 2
	switch {
	case slope > 0.1:
		return "increasing"
	case slope < -0.1:
		return "decreasing"
	default:
		return "stable"
	}
}

func recentRainfall(weather []model.WeatherDay, days int) float64 {
	var sum float64
	for _, d := range trailing(weather, days) {
		sum += d.Rainfall
	}
	return sum
}

func trailing(weather []model.WeatherDay, n int) []model.WeatherDay {
	if len(weather) > n {
		return weather[len(weather)-n:]
	}
	return weather
}

func trailingLAI(lai []model.LAISample, n int) []float64 {
	start := 0
	if len(lai) > n {
		start = len(lai) - n
	}
	out := make([]float64, 0, n)
	for _, s := range lai[start:] {
		out = append(out, s.LAI)
	}
	return out
}

func clampConfidence(c float64) float64 {
	return math.Min(95, math.Max(50, c))
}
