package advisor

import (
	"strings"
	"testing"

	"github.com/agrodata-labs/farmgame-simulator/model"
)

func flatWeather(days int, temp, humidity, rain float64) []model.WeatherDay {
	out := make([]model.WeatherDay, days)
	for i := range out {
		out[i] = model.WeatherDay{Temperature: temp, Humidity: humidity, Rainfall: rain}
	}
	return out
}

func TestWaterStressDryHotField(t *testing.T) {
	a := NewWaterStressAdvisor()
	weather := flatWeather(7, 35, 20, 0)
	soil := model.SoilEstimate{Moisture: 10}

	advice := a.Recommend(weather, soil)
	if !advice.NeedsIrrigation {
		t.Fatal("a parched field in a hot dry forecast must need irrigation")
	}
	if advice.Urgency != "critical" {
		t.Fatalf("urgency = %s, want critical for whole-window stress", advice.Urgency)
	}
	if advice.StressDays != 3 {
		t.Fatalf("stress days = %d, want all 3 forecast days", advice.StressDays)
	}
	if advice.WaterAmountMM <= 0 {
		t.Fatalf("water amount = %v, want positive refill", advice.WaterAmountMM)
	}
	if !strings.Contains(advice.Timing, "immediately") {
		t.Fatalf("timing = %q, want immediate irrigation", advice.Timing)
	}
	if advice.Confidence < 50 || advice.Confidence > 95 {
		t.Fatalf("confidence %v outside [50, 95]", advice.Confidence)
	}
}

func TestWaterStressWetCoolField(t *testing.T) {
	a := NewWaterStressAdvisor()
	weather := flatWeather(7, 15, 85, 10)
	soil := model.SoilEstimate{Moisture: 90}

	advice := a.Recommend(weather, soil)
	if advice.NeedsIrrigation {
		t.Fatal("a wet field under steady rain must not need irrigation")
	}
	if advice.Urgency != "none" {
		t.Fatalf("urgency = %s, want none", advice.Urgency)
	}
	if advice.WaterAmountMM != 0 {
		t.Fatalf("water amount = %v, want zero without stress", advice.WaterAmountMM)
	}
	if !strings.Contains(advice.Reasoning, "natural irrigation") {
		t.Fatalf("reasoning = %q, want recent rainfall acknowledged", advice.Reasoning)
	}
}

func TestWaterStressRefillAmountScalesWithDeficit(t *testing.T) {
	a := NewWaterStressAdvisor()
	weather := flatWeather(7, 35, 20, 0)

	drier := a.Recommend(weather, model.SoilEstimate{Moisture: 5})
	damper := a.Recommend(weather, model.SoilEstimate{Moisture: 20})
	if !drier.NeedsIrrigation || !damper.NeedsIrrigation {
		t.Fatal("both fields should be stressed in this forecast")
	}
	if drier.WaterAmountMM <= damper.WaterAmountMM {
		t.Fatalf("drier field got %vmm, damper got %vmm; refill must scale with deficit",
			drier.WaterAmountMM, damper.WaterAmountMM)
	}
}

func TestWaterStressEmptyWeatherUsesDefaultForecast(t *testing.T) {
	a := NewWaterStressAdvisor()
	advice := a.Recommend(nil, model.SoilEstimate{Moisture: 50})
	if advice.Urgency == "" {
		t.Fatal("advice must always carry an urgency level")
	}
	if advice.Confidence < 50 {
		t.Fatalf("confidence = %v, want clamped to at least 50", advice.Confidence)
	}
}

func TestUrgencyLevels(t *testing.T) {
	cases := []struct {
		stressPct, maxDeficit float64
		want                  string
	}{
		{90, 0.02, "critical"},
		{30, 0.02, "high"},
		{15, 0.02, "moderate"},
		{5, 0.01, "low"},
		{5, 0.09, "critical"},
	}
	for _, tc := range cases {
		if got := urgencyLevel(tc.stressPct, tc.maxDeficit); got != tc.want {
			t.Fatalf("urgencyLevel(%v, %v) = %s, want %s", tc.stressPct, tc.maxDeficit, got, tc.want)
		}
	}
}
