package model

import "time"

// MissionType identifies which decision the player was asked to make for an
// analyzed area.
type MissionType string

const (
	MissionFertilizer MissionType = "fertilizer"
	MissionIrrigation MissionType = "irrigation"
)

// AnalyzedArea is a scored farm boundary kept by the completed-area
// registry. Identity is the dedup key derived from the rounded centroid:
// one visual marker per distinct location, newer outcomes overwrite older
// ones in place.
type AnalyzedArea struct {
	Key               string      `json:"key"`
	Polygon           Polygon     `json:"polygon"`
	Centroid          GeoPoint    `json:"centroid"`
	AreaHectares      float64     `json:"area_hectares"`
	IsCorrectDecision bool        `json:"is_correct_decision"`
	IsSpecialZone     bool        `json:"is_special_zone"`
	Mission           MissionType `json:"mission,omitempty"`
	RecordedAt        time.Time   `json:"recorded_at"`
}

// WeatherDay is one day of (synthetic) weather for a location.
type WeatherDay struct {
	Date           string  `json:"date"` // YYYY-MM-DD
	Temperature    float64 `json:"temperature"`     // °C
	Humidity       float64 `json:"humidity"`        // %
	Rainfall       float64 `json:"rainfall"`        // mm
	WindSpeed      float64 `json:"wind_speed"`      // m/s
	SolarRadiation float64 `json:"solar_radiation"` // MJ/m²/day
}

// SatelliteSample is one clear-sky observation of vegetation indices.
type SatelliteSample struct {
	Date       string  `json:"date"`
	NDVI       float64 `json:"ndvi"`
	EVI        float64 `json:"evi"`
	CloudCover float64 `json:"cloud_cover,omitempty"`
	Source     string  `json:"source,omitempty"`
}

// LAISample is a leaf-area-index estimate derived from one satellite sample.
type LAISample struct {
	Date       string  `json:"date"`
	LAI        float64 `json:"lai"`
	Confidence float64 `json:"confidence"` // 0–100
	Method     string  `json:"method"`
	NDVI       float64 `json:"ndvi"`
	EVI        float64 `json:"evi"`
}

// SoilEstimate is a synthetic soil condition snapshot derived from
// vegetation indices and recent weather.
type SoilEstimate struct {
	Moisture      float64 `json:"moisture"` // %
	Nitrogen      float64 `json:"nitrogen"` // ppm
	Phosphorus    float64 `json:"phosphorus"`
	Potassium     float64 `json:"potassium"`
	PH            float64 `json:"ph"`
	OrganicMatter float64 `json:"organic_matter"` // %
}

// FertilizerAdvice is the canned recommendation the player's fertilizer
// decision is scored against.
type FertilizerAdvice struct {
	NeedsFertilizer bool    `json:"needs_fertilizer"`
	Confidence      float64 `json:"confidence"` // 50–95
	Reasoning       string  `json:"reasoning"`
	FertilizerType  string  `json:"fertilizer_type,omitempty"`
	ApplicationRate float64 `json:"application_rate,omitempty"` // kg/ha
	Timing          string  `json:"timing,omitempty"`
	ExpectedBenefit string  `json:"expected_benefit,omitempty"`
}

// IrrigationAdvice is the water-stress advisor's output.
type IrrigationAdvice struct {
	NeedsIrrigation bool    `json:"needs_irrigation"`
	Urgency         string  `json:"urgency"` // none | low | moderate | high | critical
	WaterAmountMM   float64 `json:"water_amount_mm"`
	Timing          string  `json:"timing"`
	Reasoning       string  `json:"reasoning"`
	Confidence      float64 `json:"confidence"`
	StressDays      int     `json:"stress_days"`
}

// FarmAnalysis bundles everything produced for one analyzed boundary. It is
// what the analyze endpoint returns and what the decision flow scores
// against.
type FarmAnalysis struct {
	ID           string            `json:"analysis_id"`
	Polygon      Polygon           `json:"polygon"`
	Centroid     GeoPoint          `json:"centroid"`
	AreaHectares float64           `json:"area_hectares"`
	AnalyzedAt   time.Time         `json:"timestamp"`
	Weather      []WeatherDay      `json:"weather_data"`
	Satellite    []SatelliteSample `json:"satellite_data"`
	LAI          []LAISample       `json:"lai_data"`
	Soil         SoilEstimate      `json:"soil_data"`
	Fertilizer   FertilizerAdvice  `json:"recommendation"`
	Irrigation   IrrigationAdvice  `json:"irrigation"`
}
