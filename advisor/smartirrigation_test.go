package advisor

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/agrodata-labs/farmgame-simulator/model"
)

func solarWeather(days int, temp, humidity, rain, solar float64) []model.WeatherDay {
	out := make([]model.WeatherDay, days)
	for i := range out {
		out[i] = model.WeatherDay{
			Temperature:    temp,
			Humidity:       humidity,
			Rainfall:       rain,
			SolarRadiation: solar,
		}
	}
	return out
}

func TestSmartIrrigationRejectsUnknownParameters(t *testing.T) {
	a := NewSmartIrrigationAdvisor()
	weather := solarWeather(7, 20, 60, 2, 15)

	cases := []struct {
		name string
		in   SmartIrrigationInput
	}{
		{"crop", SmartIrrigationInput{Crop: "banana", Soil: "loamy", System: "drip", Weather: weather}},
		{"soil", SmartIrrigationInput{Crop: "tomato", Soil: "peat", System: "drip", Weather: weather}},
		{"system", SmartIrrigationInput{Crop: "tomato", Soil: "loamy", System: "bucket", Weather: weather}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := a.Analyze(tc.in); err == nil {
				t.Fatalf("Analyze accepted unknown %s", tc.name)
			}
		})
	}
}

func TestSmartIrrigationParchedTomatoField(t *testing.T) {
	a := NewSmartIrrigationAdvisor()
	rep, err := a.Analyze(SmartIrrigationInput{
		Crop:     "tomato",
		Soil:     "loamy",
		System:   "drip",
		Weather:  solarWeather(7, 32, 20, 0, 22),
		LAI:      []model.LAISample{{LAI: 3.2}},
		Snapshot: model.SoilEstimate{Moisture: 5},
	})
	if err != nil {
		t.Fatal(err)
	}

	if !rep.NeedsIrrigation {
		t.Fatal("a parched field in a hot dry forecast must need irrigation")
	}
	if rep.Urgency != "critical" || rep.Severity != "critical" {
		t.Fatalf("urgency/severity = %s/%s, want critical/critical", rep.Urgency, rep.Severity)
	}
	if rep.StressPercent != 100 {
		t.Fatalf("stress percentage = %v, want 100 for whole-window stress", rep.StressPercent)
	}
	// Refill from the wilting point: 0.20 volumetric over a 1 m root zone
	// at 85% application efficiency, plus the critical-severity surcharge.
	if rep.WaterAmountMM < 270 || rep.WaterAmountMM > 290 {
		t.Fatalf("water amount = %vmm, want near 282mm", rep.WaterAmountMM)
	}
	if rep.Confidence != 90 {
		t.Fatalf("confidence = %v, want 90 for critical severity", rep.Confidence)
	}
	if rep.MonitoringFrequency != "hourly" {
		t.Fatalf("monitoring = %s, want hourly under critical urgency", rep.MonitoringFrequency)
	}
	if !strings.Contains(rep.Timing, "Immediate") {
		t.Fatalf("timing = %q, want immediate irrigation", rep.Timing)
	}

	if len(rep.Schedule) != 1 {
		t.Fatalf("schedule has %d events, want one immediate application", len(rep.Schedule))
	}
	evt := rep.Schedule[0]
	if evt.WaterAmountMM != rep.WaterAmountMM {
		t.Fatalf("event delivers %vmm, want the full %vmm", evt.WaterAmountMM, rep.WaterAmountMM)
	}
	wantDuration := math.Round(100*rep.WaterAmountMM/5) / 100
	if evt.DurationHours != wantDuration {
		t.Fatalf("duration = %vh, want %vh at the drip application rate", evt.DurationHours, wantDuration)
	}
	wantCost := math.Round(100*rep.WaterAmountMM*0.15) / 100
	if evt.CostUSD != wantCost {
		t.Fatalf("event cost = %v, want %v", evt.CostUSD, wantCost)
	}
	if rep.TotalCostUSD != wantCost {
		t.Fatalf("total cost = %v, want %v", rep.TotalCostUSD, wantCost)
	}
}

func TestSmartIrrigationWellWateredField(t *testing.T) {
	a := NewSmartIrrigationAdvisor()
	rep, err := a.Analyze(SmartIrrigationInput{
		Crop:     "asparagus",
		Soil:     "loamy",
		System:   "sprinkler",
		Weather:  solarWeather(7, 15, 80, 10, 12),
		LAI:      []model.LAISample{{LAI: 2.0}},
		Snapshot: model.SoilEstimate{Moisture: 90},
	})
	if err != nil {
		t.Fatal(err)
	}

	if rep.NeedsIrrigation {
		t.Fatal("a wet field under steady rain must not need irrigation")
	}
	if rep.Urgency != "none" || rep.Severity != "none" {
		t.Fatalf("urgency/severity = %s/%s, want none/none", rep.Urgency, rep.Severity)
	}
	if rep.Confidence != 90 {
		t.Fatalf("confidence = %v, want 90 without stress", rep.Confidence)
	}
	if len(rep.Schedule) != 0 {
		t.Fatalf("schedule has %d events, want none", len(rep.Schedule))
	}
	if rep.Timing != "Monitor conditions" {
		t.Fatalf("timing = %q, want monitoring advice", rep.Timing)
	}
	if rep.WaterSavingsPercent != 25 {
		t.Fatalf("savings = %v%%, want 25%% for sprinkler over flood baseline", rep.WaterSavingsPercent)
	}
	if len(rep.Forecast) == 0 {
		t.Fatal("report must carry the sampled soil-moisture track")
	}
}

func TestSmartIrrigationHighUrgencySplitsApplications(t *testing.T) {
	fixed := time.Date(2026, 7, 10, 14, 0, 0, 0, time.UTC)
	a := &SmartIrrigationAdvisor{Now: func() time.Time { return fixed }}

	events := a.planEvents("high", 100, "sprinkler", systemTable["sprinkler"])
	if len(events) != 2 {
		t.Fatalf("high urgency produced %d events, want a 60/40 split", len(events))
	}
	if events[0].WaterAmountMM != 60 || events[1].WaterAmountMM != 40 {
		t.Fatalf("split = %v/%v mm, want 60/40", events[0].WaterAmountMM, events[1].WaterAmountMM)
	}
	if !events[0].At.Equal(fixed.Add(2 * time.Hour)) {
		t.Fatalf("first application at %v, want two hours out", events[0].At)
	}
	if !events[1].At.Equal(fixed.Add(24 * time.Hour)) {
		t.Fatalf("second application at %v, want a day out", events[1].At)
	}
}

func TestSmartIrrigationMediumUrgencyWaitsForMorning(t *testing.T) {
	fixed := time.Date(2026, 7, 10, 14, 0, 0, 0, time.UTC)
	a := &SmartIrrigationAdvisor{Now: func() time.Time { return fixed }}

	events := a.planEvents("medium", 50, "drip", systemTable["drip"])
	if len(events) != 1 {
		t.Fatalf("medium urgency produced %d events, want one", len(events))
	}
	want := time.Date(2026, 7, 11, 6, 0, 0, 0, time.UTC)
	if !events[0].At.Equal(want) {
		t.Fatalf("application at %v, want tomorrow 06:00", events[0].At)
	}
}

func TestCropCoefficientFollowsCanopy(t *testing.T) {
	crop := cropTable["tomato"]
	cases := []struct {
		lai  float64
		want float64
	}{
		{0.5, 0.6},
		{2.0, 1.15},
		{3.0, 1.15},
		{4.5, 0.8},
	}
	for _, tc := range cases {
		if got := crop.coefficient(tc.lai); got != tc.want {
			t.Fatalf("coefficient(%v) = %v, want %v", tc.lai, got, tc.want)
		}
	}
}
