// Package geomatch matches photo positions against the mast layer.
// All positions are WGS84; distances are haversine meters on the orb
// sphere, which is accurate to well under a meter at the radii this
// tool works with.
package geomatch

import (
	"github.com/moerenett/toppbefaring-services/models/gis"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// FindNearest returns the mast closest to point, as long as it lies
// within radiusMeters. The boundary is inclusive, so a mast at exactly
// radiusMeters still matches. When two masts are equally close, the
// first one in fetch order wins. Returns nil when no mast qualifies.
func FindNearest(point orb.Point, masts []*gis.MastRecord, radiusMeters float64) *gis.MatchResult {
	var nearest *gis.MastRecord
	minDistance := 0.0
	for _, mast := range masts {
		distance := geo.DistanceHaversine(point, mast.Point)
		if nearest == nil || distance < minDistance {
			nearest = mast
			minDistance = distance
		}
	}
	if nearest == nil || minDistance > radiusMeters {
		return nil
	}
	return &gis.MatchResult{
		Mast:     nearest,
		Distance: minDistance,
	}
}
