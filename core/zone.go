package core

import "github.com/agrodata-labs/farmgame-simulator/model"

// ZoneClassifier tests whether an area's centroid falls inside the
// statically configured special-mission region. Stateless and
// deterministic; classification feeds a UI decoration, so malformed
// input fails closed (outside) rather than erroring.
type ZoneClassifier struct {
	region model.ZoneRegion
}

// NewZoneClassifier constructs a classifier for the given region.
func NewZoneClassifier(region model.ZoneRegion) *ZoneClassifier {
	return &ZoneClassifier{region: region}
}

// Region returns the configured special-mission rectangle.
func (z *ZoneClassifier) Region() model.ZoneRegion { return z.region }

// Classify reports whether the centroid lies inside the special zone,
// inclusive on all four edges. NaN or infinite coordinates are outside.
func (z *ZoneClassifier) Classify(centroid model.GeoPoint) bool {
	return RectContains(centroid, z.region)
}
