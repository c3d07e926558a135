package geomatch_test

import (
	"testing"

	"github.com/moerenett/toppbefaring-services/constants"
	"github.com/moerenett/toppbefaring-services/geomatch"
	"github.com/moerenett/toppbefaring-services/models/gis"
	"github.com/moerenett/toppbefaring-services/util/testutil"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindNearest(t *testing.T) {
	masts := []*gis.MastRecord{
		testutil.GetMastRecord(1, 10.0, 59.0),
		testutil.GetMastRecord(2, 10.001, 59.0),
		testutil.GetMastRecord(3, 10.002, 59.0),
	}
	photo := orb.Point{10.00101, 59.0}
	match := geomatch.FindNearest(photo, masts, constants.DefaultMatchRadiusMeters)
	require.NotNil(t, match)
	assert.Equal(t, int64(2), match.Mast.ID)
	assert.Equal(t, "LL040_2", match.Mast.Driftsmerking())
	assert.True(t, match.Distance < 2.0)
}

func TestFindNearestEmptyLayer(t *testing.T) {
	match := geomatch.FindNearest(orb.Point{10.0, 59.0}, nil, constants.DefaultMatchRadiusMeters)
	assert.Nil(t, match)

	match = geomatch.FindNearest(orb.Point{10.0, 59.0}, []*gis.MastRecord{}, constants.DefaultMatchRadiusMeters)
	assert.Nil(t, match)
}

func TestFindNearestOutOfRange(t *testing.T) {
	// About fifty meters and nine centimeters of latitude between
	// photo and mast. The default radius is just short of it, a
	// tenth of a meter more takes it.
	masts := []*gis.MastRecord{
		testutil.GetMastRecord(1, 10.0, 59.00045),
	}
	photo := orb.Point{10.0, 59.0}

	match := geomatch.FindNearest(photo, masts, constants.DefaultMatchRadiusMeters)
	assert.Nil(t, match)

	match = geomatch.FindNearest(photo, masts, 50.1)
	require.NotNil(t, match)
	assert.Equal(t, int64(1), match.Mast.ID)
	assert.InDelta(t, 50.09, match.Distance, 0.05)
}

func TestFindNearestBoundaryIsInclusive(t *testing.T) {
	mast := testutil.GetMastRecord(1, 10.0, 59.00045)
	photo := orb.Point{10.0, 59.0}
	distance := geo.DistanceHaversine(photo, mast.Point)

	match := geomatch.FindNearest(photo, []*gis.MastRecord{mast}, distance)
	require.NotNil(t, match)
	assert.Equal(t, distance, match.Distance)
}

func TestFindNearestTieKeepsFetchOrder(t *testing.T) {
	// Two masts on the exact same spot. Whichever the layer served
	// first is the one that matches.
	first := testutil.GetMastRecord(7, 5.747185, 62.172794)
	second := testutil.GetMastRecord(8, 5.747185, 62.172794)
	photo := orb.Point{5.7472, 62.17280}

	match := geomatch.FindNearest(photo, []*gis.MastRecord{first, second}, constants.DefaultMatchRadiusMeters)
	require.NotNil(t, match)
	assert.Equal(t, int64(7), match.Mast.ID)

	match = geomatch.FindNearest(photo, []*gis.MastRecord{second, first}, constants.DefaultMatchRadiusMeters)
	require.NotNil(t, match)
	assert.Equal(t, int64(8), match.Mast.ID)
}
