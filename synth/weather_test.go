package synth

import (
	"testing"
	"time"

	"github.com/agrodata-labs/farmgame-simulator/model"
)

var seriesEnd = time.Date(2026, time.July, 15, 0, 0, 0, 0, time.UTC)

func TestDailySeriesLengthAndDates(t *testing.T) {
	g := NewWeatherGenerator(42)
	series := g.DailySeries(36.5, -120.0, 30, seriesEnd)

	if len(series) != 30 {
		t.Fatalf("len = %d, want 30", len(series))
	}
	if got, want := series[29].Date, "2026-07-15"; got != want {
		t.Fatalf("last date = %s, want %s", got, want)
	}
	if got, want := series[0].Date, "2026-06-16"; got != want {
		t.Fatalf("first date = %s, want %s", got, want)
	}
}

func TestDailySeriesRanges(t *testing.T) {
	g := NewWeatherGenerator(7)
	for _, day := range g.DailySeries(-5.0, 35.0, 120, seriesEnd) {
		if day.Humidity < 20 || day.Humidity > 95 {
			t.Fatalf("humidity %v outside [20, 95] on %s", day.Humidity, day.Date)
		}
		if day.Rainfall < 0 {
			t.Fatalf("negative rainfall %v on %s", day.Rainfall, day.Date)
		}
		if day.WindSpeed < 0 {
			t.Fatalf("negative wind %v on %s", day.WindSpeed, day.Date)
		}
		if day.SolarRadiation < 0 {
			t.Fatalf("negative solar radiation %v on %s", day.SolarRadiation, day.Date)
		}
	}
}

func TestDailySeriesClimateBands(t *testing.T) {
	// Averages over a long window should reflect the latitude bands:
	// tropical sites run much warmer than polar ones.
	mean := func(lat float64) float64 {
		g := NewWeatherGenerator(99)
		var sum float64
		series := g.DailySeries(lat, 0, 365, seriesEnd)
		for _, d := range series {
			sum += d.Temperature
		}
		return sum / float64(len(series))
	}

	tropical := mean(5)
	cold := mean(70)
	if tropical-cold < 10 {
		t.Fatalf("tropical mean %.1f vs cold mean %.1f, want a clear gap", tropical, cold)
	}
}

func TestDailySeriesDeterministic(t *testing.T) {
	a := NewWeatherGenerator(1234).DailySeries(36.5, -120.0, 30, seriesEnd)
	b := NewWeatherGenerator(1234).DailySeries(36.5, -120.0, 30, seriesEnd)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("day %d differs across identically seeded runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestDailySeriesEmptyForNonPositiveDays(t *testing.T) {
	g := NewWeatherGenerator(1)
	if got := g.DailySeries(0, 0, 0, seriesEnd); got != nil {
		t.Fatalf("DailySeries(days=0) = %v, want nil", got)
	}
}

func TestSoilEstimateRanges(t *testing.T) {
	weather := NewWeatherGenerator(5).DailySeries(36.5, -120.0, 30, seriesEnd)
	satellite := NewSatelliteGenerator(5).Series(model.GeoPoint{Latitude: 36.5, Longitude: -120}, seriesEnd.AddDate(0, 0, -29), seriesEnd)

	soil := NewSoilEstimator(5).Estimate(weather, satellite)
	if soil.Moisture < 0 || soil.Moisture > 100 {
		t.Fatalf("moisture %v outside [0, 100]", soil.Moisture)
	}
	if soil.Nitrogen < 0 || soil.Phosphorus < 0 || soil.Potassium < 0 {
		t.Fatalf("negative nutrient in %+v", soil)
	}
	if soil.PH < 3 || soil.PH > 10 {
		t.Fatalf("pH %v implausible", soil.PH)
	}
}

func TestSoilEstimateDeterministic(t *testing.T) {
	weather := NewWeatherGenerator(5).DailySeries(10, 10, 14, seriesEnd)
	a := NewSoilEstimator(77).Estimate(weather, nil)
	b := NewSoilEstimator(77).Estimate(weather, nil)
	if a != b {
		t.Fatalf("identically seeded estimates differ: %+v vs %+v", a, b)
	}
}
