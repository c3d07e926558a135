package tracker_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/moerenett/toppbefaring-services/constants"
	"github.com/moerenett/toppbefaring-services/tracker"
	"github.com/moerenett/toppbefaring-services/util/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	hashUploaded = "900150983cd24fb0d6963f7d28e17f72"
	hashFailed   = "0123456789abcdef0123456789abcdef"
)

func TestCSVTrackerAppendAndLookup(t *testing.T) {
	pathToFile := filepath.Join(t.TempDir(), "opplastinger.csv")
	csvTracker, err := tracker.NewCSVTracker(pathToFile)
	require.NoError(t, err)
	defer csvTracker.Close()

	uploaded, err := csvTracker.HasBeenUploaded(hashUploaded)
	require.NoError(t, err)
	assert.False(t, uploaded)

	entry, err := csvTracker.Entry(hashUploaded)
	require.NoError(t, err)
	assert.Nil(t, entry)

	err = csvTracker.Append(testutil.GetUploadLogEntry(hashUploaded, constants.StatusOk))
	require.NoError(t, err)
	err = csvTracker.Append(testutil.GetUploadLogEntry(hashFailed, constants.StatusFailed))
	require.NoError(t, err)

	uploaded, err = csvTracker.HasBeenUploaded(hashUploaded)
	require.NoError(t, err)
	assert.True(t, uploaded)

	uploaded, err = csvTracker.HasBeenUploaded(hashFailed)
	require.NoError(t, err)
	assert.False(t, uploaded)

	entry, err = csvTracker.Entry(hashUploaded)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "IMG_0001.jpg", entry.Filename)
	assert.Equal(t, "LL040_131", entry.Driftsmerking)

	okCount, failedCount, err := csvTracker.Counts()
	require.NoError(t, err)
	assert.Equal(t, 1, okCount)
	assert.Equal(t, 1, failedCount)
}

func TestCSVTrackerOkRowStays(t *testing.T) {
	pathToFile := filepath.Join(t.TempDir(), "opplastinger.csv")
	csvTracker, err := tracker.NewCSVTracker(pathToFile)
	require.NoError(t, err)
	defer csvTracker.Close()

	require.NoError(t, csvTracker.Append(
		testutil.GetUploadLogEntry(hashUploaded, constants.StatusOk)))
	// The next run sees the same photo again and logs the skip. The
	// hash must still count as uploaded.
	require.NoError(t, csvTracker.Append(
		testutil.GetUploadLogEntry(hashUploaded, constants.StatusSkipped)))

	uploaded, err := csvTracker.HasBeenUploaded(hashUploaded)
	require.NoError(t, err)
	assert.True(t, uploaded)

	entry, err := csvTracker.Entry(hashUploaded)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, constants.StatusOk, entry.Status)

	okCount, failedCount, err := csvTracker.Counts()
	require.NoError(t, err)
	assert.Equal(t, 1, okCount)
	assert.Equal(t, 0, failedCount)
}

func TestCSVTrackerRetryAfterFailure(t *testing.T) {
	pathToFile := filepath.Join(t.TempDir(), "opplastinger.csv")
	csvTracker, err := tracker.NewCSVTracker(pathToFile)
	require.NoError(t, err)
	defer csvTracker.Close()

	require.NoError(t, csvTracker.Append(
		testutil.GetUploadLogEntry(hashFailed, constants.StatusFailed)))
	require.NoError(t, csvTracker.Append(
		testutil.GetUploadLogEntry(hashFailed, constants.StatusOk)))

	uploaded, err := csvTracker.HasBeenUploaded(hashFailed)
	require.NoError(t, err)
	assert.True(t, uploaded)

	okCount, failedCount, err := csvTracker.Counts()
	require.NoError(t, err)
	assert.Equal(t, 1, okCount)
	assert.Equal(t, 0, failedCount)
}

func TestCSVTrackerPersistsAcrossReopen(t *testing.T) {
	pathToFile := filepath.Join(t.TempDir(), "opplastinger.csv")

	csvTracker, err := tracker.NewCSVTracker(pathToFile)
	require.NoError(t, err)
	require.NoError(t, csvTracker.Append(
		testutil.GetUploadLogEntry(hashUploaded, constants.StatusOk)))
	require.NoError(t, csvTracker.Append(
		testutil.GetUploadLogEntry(hashFailed, constants.StatusFailed)))
	require.NoError(t, csvTracker.Close())

	reopened, err := tracker.NewCSVTracker(pathToFile)
	require.NoError(t, err)
	defer reopened.Close()

	uploaded, err := reopened.HasBeenUploaded(hashUploaded)
	require.NoError(t, err)
	assert.True(t, uploaded)

	entry, err := reopened.Entry(hashUploaded)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "IMG_0001.jpg", entry.Filename)
	assert.Equal(t, testutil.RunStarted.Unix(), entry.UploadTime.Unix())

	okCount, failedCount, err := reopened.Counts()
	require.NoError(t, err)
	assert.Equal(t, 1, okCount)
	assert.Equal(t, 1, failedCount)

	// Reopening must not add a second header row.
	data, err := os.ReadFile(pathToFile)
	require.NoError(t, err)
	content := string(data)
	assert.Equal(t, 1, strings.Count(content, "filename;location;"))
	assert.True(t, strings.HasPrefix(content, "filename;location;"))
}
