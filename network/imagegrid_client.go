package network

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/moerenett/toppbefaring-services/models/service"
	"github.com/op/go-logging"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ImageGridClient talks to the ImageGrid document API: file upload,
// schema task runs and hash search. Authentication is OAuth client
// credentials. When the API rejects a cached access token, the client
// throws its token source away and replays the call once with a fresh
// one.
type ImageGridClient struct {
	APIURL string
	Tenant string
	Schema string

	credentials clientcredentials.Config
	logger      *logging.Logger

	mutex      sync.Mutex
	httpClient *http.Client
}

// requestBody builds the body for one send. Replays after a 401 call
// it again, because a consumed multipart body cannot be rewound.
type requestBody func() (io.Reader, string, error)

func NewImageGridClient(apiURL, tokenURL, clientID, clientSecret, tenant, schema string, logger *logging.Logger) *ImageGridClient {
	client := &ImageGridClient{
		APIURL: strings.TrimSuffix(apiURL, "/"),
		Tenant: tenant,
		Schema: schema,
		credentials: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			Scopes:       []string{"imgr.grid.api", "admin.api", "file.api"},
		},
		logger: logger,
	}
	client.resetTokenSource()
	return client
}

// resetTokenSource discards the cached access token. The next request
// fetches a fresh one from the token endpoint.
func (client *ImageGridClient) resetTokenSource() {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	client.httpClient = client.credentials.Client(context.Background())
	client.httpClient.Timeout = 5 * time.Minute
}

// Upload pushes a file to the tenant's upload endpoint and returns the
// id of the document the grid created for it. Param fileName is the
// name the document gets in the grid; pathToFile is the local file to
// read, which may be a resized copy with a different name.
func (client *ImageGridClient) Upload(pathToFile, fileName string) (string, error) {
	absoluteURL := fmt.Sprintf("%s/api/v1.0/%s/upload", client.APIURL, client.Tenant)
	makeBody := func() (io.Reader, string, error) {
		data, err := os.ReadFile(pathToFile)
		if err != nil {
			return nil, "", service.NewFileIOError("read", pathToFile, err)
		}
		buf := &bytes.Buffer{}
		writer := multipart.NewWriter(buf)
		part, err := writer.CreateFormFile("file", fileName)
		if err != nil {
			return nil, "", err
		}
		if _, err = part.Write(data); err != nil {
			return nil, "", err
		}
		if err = writer.Close(); err != nil {
			return nil, "", err
		}
		return buf, writer.FormDataContentType(), nil
	}
	body, err := client.doRequest("POST", absoluteURL, makeBody)
	if err != nil {
		return "", err
	}
	documentID := gjson.GetBytes(body, "Id").String()
	if documentID == "" {
		return "", service.NewServiceError("POST", absoluteURL, http.StatusOK,
			"Upload response contained no document id", nil)
	}
	client.logger.Infof("Uploaded %s as document %s", fileName, documentID)
	return documentID, nil
}

// RunSchemaTasks attaches the attribute map to an uploaded document
// and runs the schema's tasks on it. This is what puts driftsmerking,
// the position and the rest of the mast data on the photo.
func (client *ImageGridClient) RunSchemaTasks(documentID string, attributes map[string]interface{}) error {
	absoluteURL := fmt.Sprintf("%s/api/v1.0/%s/%s/%s/runschematasks",
		client.APIURL, client.Tenant, url.PathEscape(client.Schema),
		url.PathEscape(documentID))
	payload, err := json.Marshal(map[string]interface{}{"Attributes": attributes})
	if err != nil {
		return err
	}
	makeBody := func() (io.Reader, string, error) {
		return bytes.NewReader(payload), "application/json", nil
	}
	_, err = client.doRequest("POST", absoluteURL, makeBody)
	return err
}

// SearchByHash returns the ids of documents whose filehash attribute
// matches the given digest. A miss is not an error: both an empty
// result set and the 404 some grid versions answer with come back as
// nil, nil.
func (client *ImageGridClient) SearchByHash(fileHash string) ([]string, error) {
	absoluteURL := fmt.Sprintf("%s/api/v1.0/%s/search?key=filehash&value=%s&skip=0&limit=50",
		client.APIURL, client.Tenant, url.QueryEscape(fileHash))
	body, err := client.doRequest("GET", absoluteURL, nil)
	if err != nil {
		svcErr := &service.ServiceError{}
		if errors.As(err, &svcErr) && svcErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	results := gjson.GetBytes(body, "results").Array()
	ids := make([]string, 0, len(results))
	for _, result := range results {
		if id := result.Get("id").String(); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// doRequest runs one API call, replaying it once with a fresh token
// when the API answers 401.
func (client *ImageGridClient) doRequest(method, absoluteURL string, makeBody requestBody) ([]byte, error) {
	body, statusCode, err := client.send(method, absoluteURL, makeBody)
	if err != nil {
		return nil, err
	}
	if statusCode == http.StatusUnauthorized {
		client.logger.Info("ImageGrid rejected the access token, requesting a new one")
		client.resetTokenSource()
		body, statusCode, err = client.send(method, absoluteURL, makeBody)
		if err != nil {
			return nil, err
		}
		if statusCode == http.StatusUnauthorized {
			return nil, service.NewAuthError("ImageGrid",
				"API rejected a freshly issued access token", nil)
		}
	}
	if statusCode >= 400 {
		return nil, service.NewServiceError(method, absoluteURL, statusCode,
			string(body), nil)
	}
	return body, nil
}

func (client *ImageGridClient) send(method, absoluteURL string, makeBody requestBody) ([]byte, int, error) {
	var reader io.Reader
	contentType := ""
	if makeBody != nil {
		var err error
		reader, contentType, err = makeBody()
		if err != nil {
			return nil, 0, err
		}
	}
	request, err := http.NewRequest(method, absoluteURL, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %s", method, absoluteURL, err.Error())
	}
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	client.mutex.Lock()
	httpClient := client.httpClient
	client.mutex.Unlock()

	reqTime := time.Now()
	response, err := httpClient.Do(request)
	client.logger.Infof("%s %s completed in %s", method, absoluteURL, time.Since(reqTime))
	if err != nil {
		retrieveErr := &oauth2.RetrieveError{}
		if errors.As(err, &retrieveErr) {
			return nil, 0, service.NewAuthError("ImageGrid",
				fmt.Sprintf("Token request returned status %d",
					retrieveErr.Response.StatusCode), err)
		}
		return nil, 0, fmt.Errorf("%s %s: %s", method, absoluteURL, err.Error())
	}
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %s", method, absoluteURL, err.Error())
	}
	return body, response.StatusCode, nil
}
