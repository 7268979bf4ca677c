package synth

import (
	"testing"
	"time"

	"github.com/agrodata-labs/farmgame-simulator/model"
)

var (
	obsStart = time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	obsEnd   = time.Date(2026, time.July, 30, 0, 0, 0, 0, time.UTC)
	site     = model.GeoPoint{Latitude: 36.5, Longitude: -120.0}
)

func TestSatelliteSeriesRanges(t *testing.T) {
	g := NewSatelliteGenerator(42)
	samples := g.Series(site, obsStart, obsEnd)
	if len(samples) == 0 {
		t.Fatal("expected some clear-sky samples over 60 days")
	}
	for _, s := range samples {
		if s.NDVI < 0 || s.NDVI > 0.9 {
			t.Fatalf("NDVI %v outside [0, 0.9] on %s", s.NDVI, s.Date)
		}
		if s.EVI < 0 || s.EVI > 0.8 {
			t.Fatalf("EVI %v outside [0, 0.8] on %s", s.EVI, s.Date)
		}
		if s.CloudCover < 0 || s.CloudCover > 30 {
			t.Fatalf("cloud cover %v outside [0, 30] on %s", s.CloudCover, s.Date)
		}
	}
}

func TestSatelliteSeriesSkipsCloudyDays(t *testing.T) {
	g := NewSatelliteGenerator(42)
	samples := g.Series(site, obsStart, obsEnd)

	// 60 days at ~70% clear should drop a noticeable share of days.
	if len(samples) >= 60 {
		t.Fatalf("got %d samples for 60 days, expected cloudy days to be dropped", len(samples))
	}
}

func TestSatelliteSeriesDeterministic(t *testing.T) {
	a := NewSatelliteGenerator(7).Series(site, obsStart, obsEnd)
	b := NewSatelliteGenerator(7).Series(site, obsStart, obsEnd)
	if len(a) != len(b) {
		t.Fatalf("sample counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestVegetationHealthCategories(t *testing.T) {
	cases := []struct {
		name string
		ndvi []float64
		want string
	}{
		{"no data", nil, "no_data"},
		{"poor", []float64{0.1, 0.1}, "poor"},
		{"moderate", []float64{0.3, 0.3}, "moderate"},
		{"good", []float64{0.5, 0.5}, "good"},
		{"excellent", []float64{0.7, 0.8}, "excellent"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, score := VegetationHealth(tc.ndvi)
			if status != tc.want {
				t.Fatalf("status = %s, want %s", status, tc.want)
			}
			if score < 0 || score > 100 {
				t.Fatalf("score %v outside [0, 100]", score)
			}
		})
	}
}
