package gis_test

import (
	"testing"

	"github.com/moerenett/toppbefaring-services/models/gis"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMastRecord(t *testing.T) {
	mast := gis.NewMastRecord(131, orb.Point{5.747185, 62.172794}, nil)
	assert.Equal(t, int64(131), mast.ID)
	assert.Equal(t, orb.Point{5.747185, 62.172794}, mast.Point)
	require.NotNil(t, mast.Fields)
}

func TestMastRecordAttributes(t *testing.T) {
	fields := map[string]interface{}{
		"ID":            float64(131),
		"OID":           float64(4021),
		"DRIFTSMERKING": "LL040_131",
		"LINJENUMMER":   "LL040",
		"MASTENUMMER":   float64(131),
		"BYGGEAAR":      float64(1987),
		"MATERIAL":      "Tre",
		"ANMERKNING":    nil,
		"SHAPE_LENGTH":  float64(12.5),
	}
	mast := gis.NewMastRecord(131, orb.Point{5.747185, 62.172794}, fields)

	attributes := mast.Attributes()
	assert.Equal(t, float64(131), attributes["id"])
	assert.Equal(t, float64(4021), attributes["objectid"])
	assert.Equal(t, "LL040_131", attributes["driftsmerking"])
	assert.Equal(t, "LL040", attributes["linje_nummer"])
	assert.Equal(t, float64(1987), attributes["byggeaar"])
	assert.Equal(t, "Tre", attributes["material"])

	// Null attributes are dropped, not sent as nil.
	_, present := attributes["anmerkning"]
	assert.False(t, present)

	// Attributes outside the translation table stay behind.
	_, present = attributes["SHAPE_LENGTH"]
	assert.False(t, present)
	_, present = attributes["shape_length"]
	assert.False(t, present)

	// Source names never leak through untranslated.
	_, present = attributes["DRIFTSMERKING"]
	assert.False(t, present)
}

func TestMastRecordStringField(t *testing.T) {
	fields := map[string]interface{}{
		"DRIFTSMERKING": "LL040_131",
		"MASTENUMMER":   float64(131),
		"ANMERKNING":    nil,
	}
	mast := gis.NewMastRecord(131, orb.Point{5.747185, 62.172794}, fields)
	assert.Equal(t, "LL040_131", mast.StringField("DRIFTSMERKING"))
	assert.Equal(t, "131", mast.StringField("MASTENUMMER"))
	assert.Equal(t, "", mast.StringField("ANMERKNING"))
	assert.Equal(t, "", mast.StringField("NO_SUCH_FIELD"))
	assert.Equal(t, "LL040_131", mast.Driftsmerking())
}
