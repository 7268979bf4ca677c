package advisor

import (
	"fmt"
	"math"
	"strings"

	"github.com/agrodata-labs/farmgame-simulator/model"
)

// FAO-56 style parameters for a loamy soil and a general field crop.
// The game models a single crop/soil combination; extending the tables is
// a data change, not a code change.
const (
	fieldCapacity     = 0.35 // volumetric fraction
	wiltingPoint      = 0.15
	depletionFraction = 0.65 // p, corrected for climate per FAO-56
	rootingDepthM     = 1.2
	cropCoefficient   = 1.15 // mid-season Kc
	infiltrationRate  = 15.0 // mm/hour, loamy
	forecastHours     = 72
)

// WaterStressAdvisor runs a simplified hourly soil-water bucket model over
// a 72-hour synthetic forecast and recommends irrigation when forecast
// moisture drops below the FAO-56 critical threshold
// θcrit = FC − p·(FC − WP).
type WaterStressAdvisor struct{}

// NewWaterStressAdvisor returns an advisor.
func NewWaterStressAdvisor() *WaterStressAdvisor { return &WaterStressAdvisor{} }

// Recommend analyzes water stress from the weather series and soil
// snapshot. The forecast persists the trailing-week daily means forward;
// it deliberately ignores trends beyond that.
func (a *WaterStressAdvisor) Recommend(weather []model.WeatherDay, soil model.SoilEstimate) model.IrrigationAdvice {
	thetaCrit := fieldCapacity - depletionFraction*(fieldCapacity-wiltingPoint)

	// Soil snapshot moisture is a percentage of saturation; map it into
	// the volumetric range.
	moisture := wiltingPoint + (fieldCapacity-wiltingPoint)*clamp01(soil.Moisture/100)
	startMoisture := moisture

	forecast := persistenceForecast(weather)

	stressHours := 0
	maxDeficit := 0.0
	for hour := 0; hour < forecastHours; hour++ {
		day := forecast[min(hour/24, len(forecast)-1)]

		precip := day.Rainfall / 24 // mm/hour
		et0 := referenceET(day.Temperature, day.Humidity)
		cropET := et0 * cropCoefficient

		infiltration := math.Min(precip, infiltrationRate)
		moisture += (infiltration - cropET) / 1000
		moisture = clamp(moisture, wiltingPoint, fieldCapacity)

		if moisture < thetaCrit {
			stressHours++
			maxDeficit = math.Max(maxDeficit, thetaCrit-moisture)
		}
	}

	needs := stressHours > 0
	confidence := 70.0
	var factors []string
	advice := model.IrrigationAdvice{
		NeedsIrrigation: needs,
		StressDays:      (stressHours + 23) / 24,
	}

	if needs {
		stressPct := 100 * float64(stressHours) / forecastHours
		advice.Urgency = urgencyLevel(stressPct, maxDeficit)
		factors = append(factors,
			fmt.Sprintf("Water stress detected for %d hours in 72h forecast", stressHours),
			fmt.Sprintf("Maximum soil moisture deficit: %.3f", maxDeficit),
			fmt.Sprintf("Urgency level: %s", advice.Urgency),
		)
		confidence += 20

		// Water needed to refill the root zone to field capacity, with a
		// 20% application-efficiency margin.
		amount := (fieldCapacity - startMoisture) * rootingDepthM * 1000 * 1.2
		advice.WaterAmountMM = math.Round(amount*10) / 10
		advice.Timing = irrigationTiming(advice.Urgency)
	} else {
		advice.Urgency = "none"
		factors = append(factors,
			"No water stress detected in 72-hour forecast",
			fmt.Sprintf("Current soil moisture (%.3f) above critical threshold", startMoisture),
		)
		confidence += 10
	}

	if rain := recentRainfall(weather, 3); rain > 10 {
		factors = append(factors, fmt.Sprintf("Recent rainfall (%.1fmm) provides natural irrigation", rain))
		confidence += 5
	}

	advice.Reasoning = strings.Join(factors, ". ") + "."
	advice.Confidence = clampConfidence(confidence)
	return advice
}

// persistenceForecast carries the trailing-week daily means forward.
func persistenceForecast(weather []model.WeatherDay) []model.WeatherDay {
	recent := trailing(weather, 7)
	if len(recent) == 0 {
		return []model.WeatherDay{{Temperature: 20, Humidity: 50, SolarRadiation: 15}}
	}
	var mean model.WeatherDay
	for _, d := range recent {
		mean.Temperature += d.Temperature
		mean.Humidity += d.Humidity
		mean.Rainfall += d.Rainfall
		mean.SolarRadiation += d.SolarRadiation
	}
	n := float64(len(recent))
	mean.Temperature /= n
	mean.Humidity /= n
	mean.Rainfall /= n
	mean.SolarRadiation /= n
	return []model.WeatherDay{mean, mean, mean}
}

// referenceET is a simplified hourly Penman-Monteith reference
// evapotranspiration estimate (mm/hour).
func referenceET(temperature, humidity float64) float64 {
	et := 0.0023 * (temperature + 17.8) * math.Sqrt(math.Max(0, 100-humidity))
	return math.Max(0, et) / 24
}

func urgencyLevel(stressPct, maxDeficit float64) string {
	switch {
	case stressPct > 50 || maxDeficit > 0.08:
		return "critical"
	case stressPct > 25 || maxDeficit > 0.05:
		return "high"
	case stressPct > 10:
		return "moderate"
	default:
		return "low"
	}
}

func irrigationTiming(urgency string) string {
	switch urgency {
	case "critical":
		return "Irrigate immediately"
	case "high":
		return "Irrigate within 24 hours"
	default:
		return "Irrigate within 2-3 days"
	}
}

func clamp(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }

func clamp01(v float64) float64 { return clamp(v, 0, 1) }
