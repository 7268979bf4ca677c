package model

import "time"

// IrrigationEvent is one planned water application.
type IrrigationEvent struct {
	At            time.Time `json:"datetime"`
	WaterAmountMM float64   `json:"water_amount_mm"`
	System        string    `json:"irrigation_type"`
	DurationHours float64   `json:"duration_hours"`
	Efficiency    float64   `json:"efficiency"`
	CostUSD       float64   `json:"cost_usd"`
}

// MoisturePoint is one sampled hour of the forecast soil-moisture track.
type MoisturePoint struct {
	Hour        int     `json:"hour"`
	Moisture    float64 `json:"soil_moisture"` // volumetric fraction
	StressLevel string  `json:"stress_level,omitempty"`
}

// SmartIrrigationReport is the hydrological planner's output for one
// crop/soil/system combination: the 72-hour stress forecast, the watering
// schedule, and the cost and efficiency figures for the chosen system.
type SmartIrrigationReport struct {
	Crop   string `json:"crop_type"`
	Soil   string `json:"soil_type"`
	System string `json:"irrigation_system"`

	NeedsIrrigation bool    `json:"needs_irrigation"`
	Urgency         string  `json:"urgency"`         // none | low | medium | high | critical
	Severity        string  `json:"stress_severity"` // none | low | moderate | high | critical
	StressHours     float64 `json:"stress_hours"`
	StressPercent   float64 `json:"stress_percentage"`
	CriticalHours   int     `json:"critical_hours"`

	WaterAmountMM float64 `json:"water_amount_mm"`
	Timing        string  `json:"timing"`
	Confidence    float64 `json:"confidence"`
	Reasoning     string  `json:"reasoning"`

	Schedule            []IrrigationEvent `json:"schedule"`
	MonitoringFrequency string            `json:"monitoring_frequency"`
	Forecast            []MoisturePoint   `json:"soil_moisture_forecast"`

	TotalCostUSD        float64 `json:"total_cost_usd"`
	CostPerMM           float64 `json:"cost_per_mm"`
	WaterSavingsPercent float64 `json:"water_savings_percent"`
	EnvironmentalImpact string  `json:"environmental_impact"`
}
