package core

import (
	"math"
	"testing"

	"github.com/agrodata-labs/farmgame-simulator/model"
)

func TestZoneClassifierInclusiveBounds(t *testing.T) {
	z := NewZoneClassifier(model.ZoneRegion{North: 37, South: 36, East: -119, West: -121})

	cases := []struct {
		name string
		pt   model.GeoPoint
		want bool
	}{
		{"inside", model.GeoPoint{Latitude: 36.5, Longitude: -120}, true},
		{"on north boundary", model.GeoPoint{Latitude: 37, Longitude: -120}, true},
		{"on west boundary", model.GeoPoint{Latitude: 36.5, Longitude: -121}, true},
		{"outside north", model.GeoPoint{Latitude: 37.0001, Longitude: -120}, false},
		{"outside east", model.GeoPoint{Latitude: 36.5, Longitude: -118.9999}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := z.Classify(tc.pt); got != tc.want {
				t.Fatalf("Classify(%+v) = %v, want %v", tc.pt, got, tc.want)
			}
		})
	}
}

func TestZoneClassifierFailsClosedOnNaN(t *testing.T) {
	z := NewZoneClassifier(model.ZoneRegion{North: 37, South: 36, East: -119, West: -121})
	if z.Classify(model.GeoPoint{Latitude: math.NaN(), Longitude: -120}) {
		t.Fatal("NaN centroid classified as inside the zone; must fail closed")
	}
	if z.Classify(model.GeoPoint{Latitude: 36.5, Longitude: math.NaN()}) {
		t.Fatal("NaN longitude classified as inside the zone; must fail closed")
	}
}
