package service

import (
	"encoding/json"
	"path/filepath"

	"github.com/moerenett/toppbefaring-services/constants"
	"github.com/paulmach/orb"
)

// ImageRecord tracks one photo through the upload pipeline, from scan
// to its terminal stage. It exists for the duration of a run; the
// durable record is the UploadLogEntry written at the end.
type ImageRecord struct {
	// ContentHash is the hash of the original file's bytes, using
	// HashAlgorithm. It is always computed from the original, even
	// when a resized copy is what gets uploaded, so a later run with
	// different resize settings still recognizes the photo.
	ContentHash string `json:"content_hash"`

	// DistanceMeters is the distance to the matched mast. Meaningful
	// only when MastID is set.
	DistanceMeters float64 `json:"distance_meters,omitempty"`

	// DocumentID is the id the document service assigned on upload.
	DocumentID string `json:"document_id,omitempty"`

	// Driftsmerking is the operational label of the matched mast.
	Driftsmerking string `json:"driftsmerking,omitempty"`

	// ErrorMessage says why the photo failed, when Stage is Failed.
	ErrorMessage string `json:"error_message,omitempty"`

	// FileName is the base name of FilePath.
	FileName string `json:"file_name"`

	// FilePath is the absolute path of the photo in the scan folder.
	FilePath string `json:"file_path"`

	// HashAlgorithm names the algorithm behind ContentHash.
	HashAlgorithm string `json:"hash_algorithm"`

	// HasPosition is true when the photo's Exif block carried a GPS
	// position.
	HasPosition bool `json:"has_position"`

	// Latitude and Longitude are the photo's position in WGS84
	// decimal degrees. Meaningful only when HasPosition is true.
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`

	// MastID is the layer id of the matched mast, zero when unmatched.
	MastID int64 `json:"mast_id,omitempty"`

	// Resized is true when a downscaled copy was produced for upload.
	Resized bool `json:"resized"`

	// Stage is the photo's current pipeline stage. See
	// constants.UploadStages.
	Stage string `json:"stage"`

	// UploadPath is the file whose bytes go to the document service.
	// Same as FilePath unless resizing produced a copy.
	UploadPath string `json:"upload_path"`
}

func NewImageRecord(pathToFile string) *ImageRecord {
	return &ImageRecord{
		FileName:   filepath.Base(pathToFile),
		FilePath:   pathToFile,
		Stage:      constants.StageScanned,
		UploadPath: pathToFile,
	}
}

func ImageRecordFromJSON(jsonData string) (*ImageRecord, error) {
	record := &ImageRecord{}
	err := json.Unmarshal([]byte(jsonData), record)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (record *ImageRecord) ToJSON() (string, error) {
	bytes, err := json.Marshal(record)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// SetPosition records the GPS position read from the photo's Exif
// block.
func (record *ImageRecord) SetPosition(latitude, longitude float64) {
	record.HasPosition = true
	record.Latitude = latitude
	record.Longitude = longitude
}

// Point returns the photo's position in the x, y (longitude, latitude)
// order the geometry library uses.
func (record *ImageRecord) Point() orb.Point {
	return orb.Point{record.Longitude, record.Latitude}
}

// SetMatch records which mast the photo was linked to and how far
// away it was.
func (record *ImageRecord) SetMatch(mastID int64, driftsmerking string, distanceMeters float64) {
	record.MastID = mastID
	record.Driftsmerking = driftsmerking
	record.DistanceMeters = distanceMeters
	record.Stage = constants.StageMatched
}

// Matched returns true if the photo was linked to a mast.
func (record *ImageRecord) Matched() bool {
	return record.MastID != 0
}

// MarkFailed puts the record in its failed terminal stage and keeps
// the reason.
func (record *ImageRecord) MarkFailed(err error) {
	record.Stage = constants.StageFailed
	if err != nil {
		record.ErrorMessage = err.Error()
	}
}

// Finished returns true if the record has reached a terminal stage.
func (record *ImageRecord) Finished() bool {
	return constants.IsTerminalStage(record.Stage)
}
