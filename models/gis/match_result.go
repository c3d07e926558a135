package gis

// MatchResult pairs a mast with its haversine distance in meters from
// a photo's position. Callers get a nil *MatchResult when no mast was
// within the search radius.
type MatchResult struct {
	Mast     *MastRecord
	Distance float64
}
