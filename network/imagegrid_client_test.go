package network_test

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/moerenett/toppbefaring-services/models/service"
	"github.com/moerenett/toppbefaring-services/network"
	"github.com/moerenett/toppbefaring-services/util/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDigest = "900150983cd24fb0d6963f7d28e17f72"

func newGridClient(server *testutil.ImageGridServer) *network.ImageGridClient {
	return network.NewImageGridClient(server.URL(), server.TokenURL(),
		"toppbefaring-client", "hemmelig", testutil.TestTenant,
		testutil.TestSchema, testutil.DiscardLogger())
}

func writeUploadFile(t *testing.T, name, content string) string {
	pathToFile := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(pathToFile, []byte(content), 0644))
	return pathToFile
}

func TestUpload(t *testing.T) {
	server := testutil.NewImageGridServer()
	defer server.Close()
	client := newGridClient(server)

	pathToFile := writeUploadFile(t, "IMG_0001_resized.jpg", "jpeg bytes")
	documentID, err := client.Upload(pathToFile, "IMG_0001.jpg")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", documentID)

	doc := server.Document(documentID)
	require.NotNil(t, doc)
	// The grid sees the original name even when a resized copy is
	// what went over the wire.
	assert.Equal(t, "IMG_0001.jpg", doc.FileName)
	assert.Equal(t, []byte("jpeg bytes"), doc.Body)
}

func TestRunSchemaTasks(t *testing.T) {
	server := testutil.NewImageGridServer()
	defer server.Close()
	client := newGridClient(server)

	pathToFile := writeUploadFile(t, "IMG_0001.jpg", "jpeg bytes")
	documentID, err := client.Upload(pathToFile, "IMG_0001.jpg")
	require.NoError(t, err)

	attributes := map[string]interface{}{
		"Name":          "IMG_0001.jpg",
		"driftsmerking": "LL040_131",
		"filehash":      testDigest,
	}
	require.NoError(t, client.RunSchemaTasks(documentID, attributes))

	doc := server.Document(documentID)
	require.NotNil(t, doc)
	assert.Equal(t, testutil.TestSchema, doc.Schema)
	assert.Equal(t, "LL040_131", doc.Attributes["driftsmerking"])

	// Schema tasks index the hash, so a later search finds it.
	ids, err := client.SearchByHash(testDigest)
	require.NoError(t, err)
	assert.Equal(t, []string{documentID}, ids)
}

func TestRunSchemaTasksUnknownDocument(t *testing.T) {
	server := testutil.NewImageGridServer()
	defer server.Close()
	client := newGridClient(server)

	err := client.RunSchemaTasks("doc-999", map[string]interface{}{"Name": "x"})
	require.Error(t, err)
	svcErr := &service.ServiceError{}
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
}

func TestSearchByHash(t *testing.T) {
	server := testutil.NewImageGridServer()
	defer server.Close()
	server.KnownHashes[testDigest] = []string{"doc-42"}
	client := newGridClient(server)

	ids, err := client.SearchByHash(testDigest)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc-42"}, ids)

	// Unknown hash. The grid answers 200 with an empty result set.
	ids, err = client.SearchByHash("ffffffffffffffffffffffffffffffff")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSearchByHashNotFoundStatus(t *testing.T) {
	server := testutil.NewImageGridServer()
	defer server.Close()
	server.SearchMisses404 = true
	client := newGridClient(server)

	// Some grid versions answer a miss with 404 instead of an empty
	// result set. Neither is an error.
	ids, err := client.SearchByHash("ffffffffffffffffffffffffffffffff")
	require.NoError(t, err)
	assert.Nil(t, ids)
}

func TestExpiredTokenIsRefreshed(t *testing.T) {
	server := testutil.NewImageGridServer()
	defer server.Close()
	client := newGridClient(server)

	pathToFile := writeUploadFile(t, "IMG_0001.jpg", "jpeg bytes")
	_, err := client.Upload(pathToFile, "IMG_0001.jpg")
	require.NoError(t, err)
	assert.Equal(t, 1, server.TokenRequests())

	server.ExpireToken()

	documentID, err := client.Upload(pathToFile, "IMG_0002.jpg")
	require.NoError(t, err)
	assert.Equal(t, "doc-2", documentID)
	assert.Equal(t, 2, server.TokenRequests())
}

func TestTokenRequestFailure(t *testing.T) {
	server := testutil.NewImageGridServer()
	defer server.Close()
	client := network.NewImageGridClient(server.URL(),
		server.URL()+"/connect/broken", "toppbefaring-client", "hemmelig",
		testutil.TestTenant, testutil.TestSchema, testutil.DiscardLogger())

	_, err := client.SearchByHash(testDigest)
	require.Error(t, err)
	authErr := &service.AuthError{}
	assert.ErrorAs(t, err, &authErr)
}
