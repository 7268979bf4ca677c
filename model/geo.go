package model

import "math"

// GeoPoint is a geographic coordinate in decimal degrees (WGS84).
// Latitude is in [-90, 90], longitude in [-180, 180]. Value type; never
// mutated after construction.
type GeoPoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// IsFinite reports whether both coordinates are finite numbers.
func (p GeoPoint) IsFinite() bool {
	return !math.IsNaN(p.Latitude) && !math.IsInf(p.Latitude, 0) &&
		!math.IsNaN(p.Longitude) && !math.IsInf(p.Longitude, 0)
}

// InRange reports whether the point lies within valid geographic bounds.
func (p GeoPoint) InRange() bool {
	return p.IsFinite() &&
		p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}

// Polygon is an ordered ring of vertices. Insertion order is significant:
// it defines the boundary traversal used by the area formula and by
// re-rendering of the exact drawn shape. A completed farm boundary has
// exactly FarmBoundaryVertices points; shorter sequences are drafts.
type Polygon []GeoPoint

// FarmBoundaryVertices is the number of corners in a completed farm
// boundary. The game only supports quadrilateral selections.
const FarmBoundaryVertices = 4

// IsComplete reports whether the polygon is a valid completed farm boundary.
func (pg Polygon) IsComplete() bool {
	if len(pg) != FarmBoundaryVertices {
		return false
	}
	for _, p := range pg {
		if !p.IsFinite() {
			return false
		}
	}
	return true
}

// Clone returns an owned copy, so callers can hand a polygon off without
// aliasing draft state.
func (pg Polygon) Clone() Polygon {
	if pg == nil {
		return nil
	}
	out := make(Polygon, len(pg))
	copy(out, pg)
	return out
}

// ZoneRegion is an axis-aligned geographic rectangle, used to flag
// special-mission areas. Static configuration; not mutated at runtime.
type ZoneRegion struct {
	North float64 `json:"north" yaml:"north"`
	South float64 `json:"south" yaml:"south"`
	East  float64 `json:"east" yaml:"east"`
	West  float64 `json:"west" yaml:"west"`
}

// IsValid reports whether the rectangle is well-formed (south ≤ north,
// west ≤ east, all coordinates finite and in range).
func (z ZoneRegion) IsValid() bool {
	n := GeoPoint{Latitude: z.North, Longitude: z.East}
	s := GeoPoint{Latitude: z.South, Longitude: z.West}
	return n.InRange() && s.InRange() && z.South <= z.North && z.West <= z.East
}

// BoundingRect returns the axis-aligned bounding rectangle of the polygon.
// Used as the overlay fallback when original vertices are unavailable.
func (pg Polygon) BoundingRect() ZoneRegion {
	if len(pg) == 0 {
		return ZoneRegion{}
	}
	r := ZoneRegion{
		North: pg[0].Latitude, South: pg[0].Latitude,
		East: pg[0].Longitude, West: pg[0].Longitude,
	}
	for _, p := range pg[1:] {
		r.North = math.Max(r.North, p.Latitude)
		r.South = math.Min(r.South, p.Latitude)
		r.East = math.Max(r.East, p.Longitude)
		r.West = math.Min(r.West, p.Longitude)
	}
	return r
}
