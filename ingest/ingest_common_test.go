package ingest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/moerenett/toppbefaring-services/constants"
	"github.com/moerenett/toppbefaring-services/models/common"
	"github.com/moerenett/toppbefaring-services/models/gis"
	"github.com/moerenett/toppbefaring-services/network"
	"github.com/moerenett/toppbefaring-services/tracker"
	"github.com/moerenett/toppbefaring-services/util/testutil"
	"github.com/stretchr/testify/require"
)

// Positions for the upload tests. Photos taken at mastLat/mastLon
// should match LL040_7; the far position is kilometers from both
// masts, well outside any sane search radius.
const (
	mastLat = 62.172794
	mastLon = 5.747185
	farLat  = 62.3
	farLon  = 5.9
)

// layerMasts returns the two-mast layer the tests run against. The
// second mast sits about half a kilometer east of the first, so only
// LL040_7 can ever match at the default radius.
func layerMasts() []*gis.MastRecord {
	return []*gis.MastRecord{
		testutil.GetMastRecord(7, mastLon, mastLat),
		testutil.GetMastRecord(8, mastLon+0.01, mastLat),
	}
}

// testEnv wires a Context to in-process fakes of both services and a
// CSV upload log in a temp dir. Everything is torn down when the test
// finishes.
type testEnv struct {
	Context      *common.Context
	ArcGIS       *testutil.ArcGISServer
	Grid         *testutil.ImageGridServer
	Folder       string
	TrackingFile string
}

func newTestEnv(t *testing.T, masts []*gis.MastRecord) *testEnv {
	arcgisServer := testutil.NewArcGISServer(masts)
	gridServer := testutil.NewImageGridServer()
	logger := testutil.DiscardLogger()

	trackingFile := filepath.Join(t.TempDir(), "uploads.csv")
	csvTracker, err := tracker.NewCSVTracker(trackingFile)
	require.NoError(t, err)

	config := &common.Config{
		HashAlgorithm:     constants.AlgMd5,
		Kilde:             testutil.TestKilde,
		MatchRadiusMeters: constants.DefaultMatchRadiusMeters,
	}
	context := &common.Context{
		Config: config,
		Logger: logger,
		ArcGISClient: network.NewArcGISClient(arcgisServer.TokenURL(),
			arcgisServer.LayerURL(), "befaring", "hemmelig", "10.0.0.7", logger),
		ImageGridClient: network.NewImageGridClient(gridServer.URL(),
			gridServer.TokenURL(), "toppbefaring-client", "hemmelig",
			testutil.TestTenant, testutil.TestSchema, logger),
		Tracker: csvTracker,
	}
	env := &testEnv{
		Context:      context,
		ArcGIS:       arcgisServer,
		Grid:         gridServer,
		Folder:       t.TempDir(),
		TrackingFile: trackingFile,
	}
	t.Cleanup(func() {
		env.Context.Close()
		arcgisServer.Close()
		gridServer.Close()
	})
	return env
}

func writeImage(t *testing.T, folder, fileName string, data []byte) string {
	pathToFile := filepath.Join(folder, fileName)
	require.NoError(t, os.WriteFile(pathToFile, data, 0644))
	return pathToFile
}
