package service_test

import (
	"fmt"
	"testing"

	"github.com/moerenett/toppbefaring-services/constants"
	"github.com/moerenett/toppbefaring-services/models/service"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImageRecord(t *testing.T) {
	record := service.NewImageRecord("/photos/2025-05/IMG_0001.jpg")
	assert.Equal(t, "IMG_0001.jpg", record.FileName)
	assert.Equal(t, "/photos/2025-05/IMG_0001.jpg", record.FilePath)
	assert.Equal(t, "/photos/2025-05/IMG_0001.jpg", record.UploadPath)
	assert.Equal(t, constants.StageScanned, record.Stage)
	assert.False(t, record.HasPosition)
	assert.False(t, record.Matched())
	assert.False(t, record.Finished())
}

func TestImageRecordPosition(t *testing.T) {
	record := service.NewImageRecord("/photos/IMG_0001.jpg")
	record.SetPosition(62.172794, 5.747185)
	assert.True(t, record.HasPosition)
	assert.Equal(t, 62.172794, record.Latitude)
	assert.Equal(t, 5.747185, record.Longitude)

	// Point is x, y: longitude first.
	assert.Equal(t, orb.Point{5.747185, 62.172794}, record.Point())
}

func TestImageRecordMatch(t *testing.T) {
	record := service.NewImageRecord("/photos/IMG_0001.jpg")
	record.SetMatch(131, "LL040_131", 42.37)
	assert.True(t, record.Matched())
	assert.Equal(t, int64(131), record.MastID)
	assert.Equal(t, "LL040_131", record.Driftsmerking)
	assert.Equal(t, 42.37, record.DistanceMeters)
	assert.Equal(t, constants.StageMatched, record.Stage)
}

func TestImageRecordMarkFailed(t *testing.T) {
	record := service.NewImageRecord("/photos/IMG_0001.jpg")
	record.MarkFailed(fmt.Errorf("connection reset"))
	assert.Equal(t, constants.StageFailed, record.Stage)
	assert.Equal(t, "connection reset", record.ErrorMessage)
	assert.True(t, record.Finished())
}

func TestImageRecordJSON(t *testing.T) {
	record := service.NewImageRecord("/photos/IMG_0001.jpg")
	record.SetPosition(62.172794, 5.747185)
	record.SetMatch(131, "LL040_131", 42.37)
	record.ContentHash = "9a0364b9e99bb480dd25e1f0284c8555"
	record.HashAlgorithm = constants.AlgMd5
	record.Stage = constants.StageUploaded
	record.DocumentID = "abc-123"

	jsonData, err := record.ToJSON()
	require.Nil(t, err)

	restored, err := service.ImageRecordFromJSON(jsonData)
	require.Nil(t, err)
	assert.Equal(t, record, restored)
}
