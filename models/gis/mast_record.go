// Package gis holds the models for features fetched from the mast
// layer. Coordinates are WGS84 throughout; the layer is queried with
// outSR=4326, so no reprojection happens on our side.
package gis

import (
	"fmt"

	"github.com/moerenett/toppbefaring-services/constants"
	"github.com/paulmach/orb"
)

// MastRecord is one mast from the feature layer. Fields holds the raw
// layer attributes under their layer names; numbers arrive as float64
// and missing values as nil, the way the JSON decoder produced them.
type MastRecord struct {
	ID     int64
	Point  orb.Point
	Fields map[string]interface{}
}

func NewMastRecord(id int64, point orb.Point, fields map[string]interface{}) *MastRecord {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	return &MastRecord{
		ID:     id,
		Point:  point,
		Fields: fields,
	}
}

// Attributes returns the mast's attributes under the names the
// document service expects, per constants.MastFieldTranslations.
// Attributes the layer did not set are left out entirely rather than
// sent as nulls.
func (mast *MastRecord) Attributes() map[string]interface{} {
	attributes := make(map[string]interface{}, len(constants.MastFieldTranslations))
	for _, translation := range constants.MastFieldTranslations {
		value, ok := mast.Fields[translation.Source]
		if !ok || value == nil {
			continue
		}
		attributes[translation.Target] = value
	}
	return attributes
}

// StringField returns the named raw attribute as a string, or the
// empty string when the attribute is missing or null. Whole-number
// floats render without a decimal point, matching how the layer's
// integer fields come through JSON.
func (mast *MastRecord) StringField(name string) string {
	value, ok := mast.Fields[name]
	if !ok || value == nil {
		return ""
	}
	return fmt.Sprintf("%v", value)
}

// Driftsmerking returns the mast's operational label, like LL040_131.
func (mast *MastRecord) Driftsmerking() string {
	return mast.StringField("DRIFTSMERKING")
}
