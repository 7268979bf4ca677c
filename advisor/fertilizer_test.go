package advisor

import (
	"strings"
	"testing"

	"github.com/agrodata-labs/farmgame-simulator/model"
)

func laiSeries(values ...float64) []model.LAISample {
	out := make([]model.LAISample, len(values))
	for i, v := range values {
		out[i] = model.LAISample{LAI: v}
	}
	return out
}

func weatherWithRain(days int, dailyRain float64) []model.WeatherDay {
	out := make([]model.WeatherDay, days)
	for i := range out {
		out[i] = model.WeatherDay{Temperature: 20, Humidity: 60, Rainfall: dailyRain}
	}
	return out
}

func TestFertilizerFallbackWithoutLAI(t *testing.T) {
	a := NewFertilizerAdvisor()
	advice := a.Recommend(nil, weatherWithRain(7, 2), model.SoilEstimate{})

	if advice.NeedsFertilizer {
		t.Fatal("no data must produce the cautious no-fertilizer fallback")
	}
	if advice.Confidence != 50 {
		t.Fatalf("fallback confidence = %v, want 50", advice.Confidence)
	}
}

func TestFertilizerLowLAIAndPoorSoil(t *testing.T) {
	a := NewFertilizerAdvisor()
	soil := model.SoilEstimate{Nitrogen: 30, Phosphorus: 20, Potassium: 60}
	advice := a.Recommend(laiSeries(1.2, 1.1, 1.0), weatherWithRain(7, 3), soil)

	if !advice.NeedsFertilizer {
		t.Fatal("low LAI with nutrient deficits must need fertilizer")
	}
	if advice.Confidence < 50 || advice.Confidence > 95 {
		t.Fatalf("confidence %v outside [50, 95]", advice.Confidence)
	}
	// Nitrogen deficit (50) beats phosphorus deficit (30): urea.
	if !strings.Contains(advice.FertilizerType, "Urea") {
		t.Fatalf("fertilizer type = %q, want nitrogen-rich", advice.FertilizerType)
	}
	if advice.ApplicationRate <= 0 || advice.ApplicationRate > 150 {
		t.Fatalf("application rate %v outside (0, 150]", advice.ApplicationRate)
	}
	if advice.Timing == "" {
		t.Fatal("needed application must include timing guidance")
	}
}

func TestFertilizerExcellentCanopyOverride(t *testing.T) {
	a := NewFertilizerAdvisor()
	// Deficient soil would normally trigger a recommendation, but an
	// excellent canopy overrides it.
	soil := model.SoilEstimate{Nitrogen: 30, Phosphorus: 20, Potassium: 30}
	advice := a.Recommend(laiSeries(6.5, 6.6, 6.7), weatherWithRain(7, 3), soil)

	if advice.NeedsFertilizer {
		t.Fatal("LAI above the high threshold must override to no-fertilizer")
	}
	if advice.Confidence < 80 {
		t.Fatalf("override confidence = %v, want at least 80", advice.Confidence)
	}
}

func TestFertilizerDecliningTrendTriggers(t *testing.T) {
	a := NewFertilizerAdvisor()
	healthy := model.SoilEstimate{Nitrogen: 90, Phosphorus: 60, Potassium: 80}

	stable := a.Recommend(laiSeries(4.5, 4.5, 4.5), weatherWithRain(7, 2), healthy)
	if stable.NeedsFertilizer {
		t.Fatal("healthy stable canopy must not need fertilizer")
	}

	declining := a.Recommend(laiSeries(4.5, 4.2, 3.8), weatherWithRain(7, 2), healthy)
	if !declining.NeedsFertilizer {
		t.Fatal("declining trend must trigger intervention")
	}
}

func TestFertilizerTypeByLargestDeficit(t *testing.T) {
	cases := []struct {
		name string
		soil model.SoilEstimate
		want string
	}{
		{"nitrogen", model.SoilEstimate{Nitrogen: 10, Phosphorus: 45, Potassium: 65}, "Urea"},
		{"phosphorus", model.SoilEstimate{Nitrogen: 75, Phosphorus: 10, Potassium: 65}, "DAP"},
		{"potassium", model.SoilEstimate{Nitrogen: 78, Phosphorus: 48, Potassium: 20}, "MOP"},
		{"balanced", model.SoilEstimate{Nitrogen: 78, Phosphorus: 48, Potassium: 65}, "NPK"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			typ, rate := fertilizerType(tc.soil)
			if !strings.Contains(typ, tc.want) {
				t.Fatalf("fertilizerType = %q, want %s product", typ, tc.want)
			}
			if rate <= 0 {
				t.Fatalf("rate = %v, want positive", rate)
			}
		})
	}
}

func TestApplicationTimingWindows(t *testing.T) {
	optimal := weatherWithRain(7, 2) // 14mm weekly rain, 20°C, 60% humidity
	if got := applicationTiming(optimal); !strings.Contains(got, "immediately") {
		t.Fatalf("timing = %q, want immediate application in optimal conditions", got)
	}

	harsh := make([]model.WeatherDay, 7)
	for i := range harsh {
		harsh[i] = model.WeatherDay{Temperature: 38, Humidity: 20, Rainfall: 0}
	}
	if got := applicationTiming(harsh); !strings.Contains(got, "Wait") {
		t.Fatalf("timing = %q, want wait in harsh conditions", got)
	}
}
