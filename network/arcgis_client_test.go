package network_test

import (
	"testing"

	"github.com/moerenett/toppbefaring-services/models/gis"
	"github.com/moerenett/toppbefaring-services/models/service"
	"github.com/moerenett/toppbefaring-services/network"
	"github.com/moerenett/toppbefaring-services/util/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArcGISClient(server *testutil.ArcGISServer) *network.ArcGISClient {
	return network.NewArcGISClient(server.TokenURL(), server.LayerURL(),
		"befaring", "hemmelig", "10.0.0.7", testutil.DiscardLogger())
}

func layerMasts(count int) []*gis.MastRecord {
	masts := make([]*gis.MastRecord, 0, count)
	for i := 1; i <= count; i++ {
		masts = append(masts,
			testutil.GetMastRecord(int64(i), 5.74+float64(i)*0.001, 62.17))
	}
	return masts
}

func TestGetToken(t *testing.T) {
	server := testutil.NewArcGISServer(nil)
	defer server.Close()
	client := newArcGISClient(server)

	token, err := client.GetToken()
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)

	// A second call inside the refresh window reuses the cached token.
	token, err = client.GetToken()
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)
	assert.Equal(t, 1, server.TokenRequests())
}

func TestGetTokenAuthFailure(t *testing.T) {
	server := testutil.NewArcGISServer(nil)
	defer server.Close()
	server.FailAuth = true
	client := newArcGISClient(server)

	_, err := client.GetToken()
	require.Error(t, err)
	authErr := &service.AuthError{}
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "ArcGIS", authErr.Service)
	assert.Contains(t, authErr.Message, "Invalid username or password")
}

func TestFetchMasts(t *testing.T) {
	server := testutil.NewArcGISServer(layerMasts(5))
	defer server.Close()
	server.PageSize = 2
	client := newArcGISClient(server)

	masts, err := client.FetchMasts()
	require.NoError(t, err)
	require.Len(t, masts, 5)

	// Three pages, and the layer's order survives the paging.
	for i, mast := range masts {
		assert.Equal(t, int64(i+1), mast.ID)
	}
	assert.Equal(t, "LL040_3", masts[2].Driftsmerking())
	assert.InDelta(t, 5.741, masts[0].Point.Lon(), 0.000001)
	assert.InDelta(t, 62.17, masts[0].Point.Lat(), 0.000001)

	// One token covers all three pages.
	assert.Equal(t, 1, server.TokenRequests())
}

func TestFetchMastsRefreshesStaleToken(t *testing.T) {
	server := testutil.NewArcGISServer(layerMasts(3))
	defer server.Close()
	client := newArcGISClient(server)

	_, err := client.GetToken()
	require.NoError(t, err)
	server.ExpireToken()

	masts, err := client.FetchMasts()
	require.NoError(t, err)
	assert.Len(t, masts, 3)
	assert.Equal(t, 2, server.TokenRequests())
}

func TestFetchMastsEmptyLayer(t *testing.T) {
	server := testutil.NewArcGISServer(nil)
	defer server.Close()
	client := newArcGISClient(server)

	masts, err := client.FetchMasts()
	require.NoError(t, err)
	assert.Empty(t, masts)
}
