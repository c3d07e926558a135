package imaging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/moerenett/toppbefaring-services/imaging"
	"github.com/moerenett/toppbefaring-services/models/service"
	"github.com/moerenett/toppbefaring-services/util/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempImage(t *testing.T, name string, data []byte) string {
	pathToFile := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(pathToFile, data, 0644))
	return pathToFile
}

func TestExtractGPS(t *testing.T) {
	pathToFile := writeTempImage(t, "IMG_0131.jpg",
		testutil.NewJPEGWithGPS(64, 48, 62.172794, 5.747185))
	point, err := imaging.ExtractGPS(pathToFile)
	require.NoError(t, err)
	assert.InDelta(t, 5.747185, point.Lon(), 0.000001)
	assert.InDelta(t, 62.172794, point.Lat(), 0.000001)
}

func TestExtractGPSSouthernWesternHemispheres(t *testing.T) {
	pathToFile := writeTempImage(t, "IMG_0200.jpg",
		testutil.NewJPEGWithGPS(64, 48, -33.856784, -70.648861))
	point, err := imaging.ExtractGPS(pathToFile)
	require.NoError(t, err)
	assert.InDelta(t, -70.648861, point.Lon(), 0.000001)
	assert.InDelta(t, -33.856784, point.Lat(), 0.000001)
}

func TestExtractGPSNoExif(t *testing.T) {
	pathToFile := writeTempImage(t, "IMG_0044.jpg", testutil.NewJPEG(64, 48))
	_, err := imaging.ExtractGPS(pathToFile)
	require.Error(t, err)
	geoErr := &service.GeoExtractionError{}
	require.ErrorAs(t, err, &geoErr)
	assert.Equal(t, pathToFile, geoErr.PathToFile)
}

func TestExtractGPSMissingFile(t *testing.T) {
	pathToFile := filepath.Join(t.TempDir(), "not_there.jpg")
	_, err := imaging.ExtractGPS(pathToFile)
	require.Error(t, err)
	ioErr := &service.FileIOError{}
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "open", ioErr.Operation)
}
