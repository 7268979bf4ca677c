package synth

import (
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/agrodata-labs/farmgame-simulator/model"
)

// earthRadiusKm is the mean Earth radius used for the spherical site
// position and elevation geometry (kilometres).
const earthRadiusKm = 6371.0

// Sentinel-2A-class sun-synchronous TLE used as the default imaging
// platform for the simulated acquisition schedule.
const (
	DefaultImagingTLE1 = "1 40697U 15028A   24001.50000000  .00000100  00000-0  10000-3 0  9990"
	DefaultImagingTLE2 = "2 40697  98.5693 347.3604 0001083  95.2061 264.9254 14.30817084328905"
)

// OverpassPredictor decides whether the imaging satellite sees a ground
// site, by propagating a TLE with SGP4 and testing the elevation angle of
// the spacecraft above the site's horizon. It makes the synthetic imagery
// dates follow a real acquisition geometry instead of being arbitrary.
type OverpassPredictor struct {
	sat satellite.Satellite

	// MinElevationDeg is the elevation above which a pass counts as an
	// imaging opportunity. Near-nadir imagers have narrow swaths, so the
	// default is high.
	MinElevationDeg float64

	// SampleStep is the propagation step used when scanning a day.
	SampleStep time.Duration
}

// NewOverpassPredictor constructs a predictor from TLE lines.
func NewOverpassPredictor(line1, line2 string) *OverpassPredictor {
	return &OverpassPredictor{
		sat:             satellite.TLEToSat(line1, line2, satellite.GravityWGS72),
		MinElevationDeg: 75,
		SampleStep:      time.Minute,
	}
}

// positionECEFKm propagates the spacecraft to t and returns its ECEF
// position in kilometres.
func (o *OverpassPredictor) positionECEFKm(t time.Time) satellite.Vector3 {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	posECI, _ := satellite.Propagate(o.sat, year, int(month), day, hour, min, sec)
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	return satellite.ECIToECEF(posECI, gmst)
}

// siteECEFKm converts a geographic site to spherical-Earth ECEF km.
func siteECEFKm(p model.GeoPoint) satellite.Vector3 {
	lat := p.Latitude * math.Pi / 180
	lon := p.Longitude * math.Pi / 180
	return satellite.Vector3{
		X: earthRadiusKm * math.Cos(lat) * math.Cos(lon),
		Y: earthRadiusKm * math.Cos(lat) * math.Sin(lon),
		Z: earthRadiusKm * math.Sin(lat),
	}
}

// elevationDeg returns the elevation of the spacecraft above the site's
// geometric horizon, in degrees.
func elevationDeg(site, sat satellite.Vector3) float64 {
	v := satellite.Vector3{X: sat.X - site.X, Y: sat.Y - site.Y, Z: sat.Z - site.Z}
	vNorm := math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
	if vNorm == 0 {
		return 90
	}
	siteNorm := math.Sqrt(site.X*site.X + site.Y*site.Y + site.Z*site.Z)
	if siteNorm == 0 {
		return 0
	}
	cosZenith := (v.X*site.X + v.Y*site.Y + v.Z*site.Z) / (vNorm * siteNorm)
	cosZenith = clamp(cosZenith, -1, 1)
	return 90 - math.Acos(cosZenith)*180/math.Pi
}

// VisibleAt reports whether the spacecraft is above the minimum elevation
// at the given instant.
func (o *OverpassPredictor) VisibleAt(t time.Time, site model.GeoPoint) bool {
	return elevationDeg(siteECEFKm(site), o.positionECEFKm(t)) >= o.MinElevationDeg
}

// VisibleOnDay scans the UTC day containing t and reports whether any
// sampled instant qualifies as an imaging opportunity.
func (o *OverpassPredictor) VisibleOnDay(t time.Time, site model.GeoPoint) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	_, found := o.nextAfter(day, site, 24*time.Hour)
	return found
}

// NextOverpass returns the first imaging opportunity at or after from,
// scanning up to within. The second return is false when none is found.
func (o *OverpassPredictor) NextOverpass(from time.Time, site model.GeoPoint, within time.Duration) (time.Time, bool) {
	return o.nextAfter(from, site, within)
}

func (o *OverpassPredictor) nextAfter(from time.Time, site model.GeoPoint, within time.Duration) (time.Time, bool) {
	step := o.SampleStep
	if step <= 0 {
		step = time.Minute
	}
	siteECEF := siteECEFKm(site)
	for t := from; t.Before(from.Add(within)); t = t.Add(step) {
		if elevationDeg(siteECEF, o.positionECEFKm(t)) >= o.MinElevationDeg {
			return t, true
		}
	}
	return time.Time{}, false
}
