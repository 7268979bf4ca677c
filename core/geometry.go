package core

import (
	"math"

	"github.com/agrodata-labs/farmgame-simulator/model"
)

// EarthRadiusM is the WGS84 equatorial radius in metres, used by the
// small-area spherical approximation below.
const EarthRadiusM = 6378137.0

// sqMetersPerHectare converts m² to hectares.
const sqMetersPerHectare = 10000.0

// PolygonAreaHectares computes the enclosed area of a geographic ring via
// the spherical-excess approximation of the planar shoelace formula:
//
//	A = |Σ (λ[i+1]-λ[i]) · (2 + sin φ[i] + sin φ[i+1])| · R² / 2
//
// with angles in radians and the ring closed modulo length. The absolute
// value makes the two traversal directions equivalent.
//
// This approximation is adequate only for small-extent polygons (city-block
// to multi-hectare scale). It is NOT valid for country-scale areas; callers
// must not extend its use beyond farm-boundary sizes.
//
// Degenerate input (fewer than 3 vertices, or any non-finite coordinate)
// yields 0 rather than NaN propagation.
func PolygonAreaHectares(points model.Polygon) float64 {
	if len(points) < 3 {
		return 0
	}
	for _, p := range points {
		if !p.IsFinite() {
			return 0
		}
	}

	sum := 0.0
	for i := range points {
		p1 := points[i]
		p2 := points[(i+1)%len(points)]
		lon1 := p1.Longitude * math.Pi / 180
		lon2 := p2.Longitude * math.Pi / 180
		lat1 := p1.Latitude * math.Pi / 180
		lat2 := p2.Latitude * math.Pi / 180
		sum += (lon2 - lon1) * (2 + math.Sin(lat1) + math.Sin(lat2))
	}

	areaM2 := math.Abs(sum * EarthRadiusM * EarthRadiusM / 2)
	return areaM2 / sqMetersPerHectare
}

// PolygonCentroid returns the coordinate-wise arithmetic mean of the
// vertices. This is deliberately the simple averaging centroid, not the
// area-weighted one: zone classification and the registry's dedup-key
// rounding are designed around the simple mean, so "fixing" this would
// change area identity.
//
// An empty polygon or one containing non-finite coordinates yields the
// zero GeoPoint.
func PolygonCentroid(points model.Polygon) model.GeoPoint {
	if len(points) == 0 {
		return model.GeoPoint{}
	}
	var sumLat, sumLon float64
	for _, p := range points {
		if !p.IsFinite() {
			return model.GeoPoint{}
		}
		sumLat += p.Latitude
		sumLon += p.Longitude
	}
	n := float64(len(points))
	return model.GeoPoint{Latitude: sumLat / n, Longitude: sumLon / n}
}

// RectContains reports whether the point lies inside the region, with
// inclusive bounds on all four edges. Non-finite coordinates are never
// contained.
func RectContains(p model.GeoPoint, rect model.ZoneRegion) bool {
	if !p.IsFinite() {
		return false
	}
	return p.Latitude >= rect.South && p.Latitude <= rect.North &&
		p.Longitude >= rect.West && p.Longitude <= rect.East
}
