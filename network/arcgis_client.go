package network

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/moerenett/toppbefaring-services/constants"
	"github.com/moerenett/toppbefaring-services/models/gis"
	"github.com/moerenett/toppbefaring-services/models/service"
	"github.com/op/go-logging"
	"github.com/paulmach/orb"
	"github.com/tidwall/gjson"
)

// ArcGISClient fetches mast features from the grid's ArcGIS feature
// layer. It holds a Portal token and refreshes it when the layer says
// the token has gone stale.
type ArcGISClient struct {
	TokenURL string
	LayerURL string

	username   string
	password   string
	requestIP  string
	httpClient *http.Client
	logger     *logging.Logger

	mutex     sync.Mutex
	token     string
	tokenTime time.Time
}

// NewArcGISClient returns a client for the feature layer at layerURL.
// Param requestIP is the address Portal binds issued tokens to.
func NewArcGISClient(tokenURL, layerURL, username, password, requestIP string, logger *logging.Logger) *ArcGISClient {
	return &ArcGISClient{
		TokenURL:  tokenURL,
		LayerURL:  strings.TrimSuffix(layerURL, "/"),
		username:  username,
		password:  password,
		requestIP: requestIP,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// GetToken returns a Portal token, requesting a fresh one when the
// cached token is past its refresh age. Tokens live for
// constants.TokenLifetimeMinutes on the server; refreshing after
// constants.TokenRefreshAfterMinutes keeps a margin under that.
func (client *ArcGISClient) GetToken() (string, error) {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	maxAge := constants.TokenRefreshAfterMinutes * time.Minute
	if client.token != "" && time.Since(client.tokenTime) < maxAge {
		return client.token, nil
	}
	return client.requestToken()
}

// requestToken asks Portal for a new token. Caller must hold the
// mutex.
func (client *ArcGISClient) requestToken() (string, error) {
	form := url.Values{}
	form.Set("username", client.username)
	form.Set("password", client.password)
	form.Set("client", "requestip")
	form.Set("requestip", client.requestIP)
	form.Set("expiration", strconv.Itoa(constants.TokenLifetimeMinutes))
	form.Set("f", "json")

	reqTime := time.Now()
	resp, err := client.httpClient.PostForm(client.TokenURL, form)
	client.logger.Infof("POST %s completed in %s", client.TokenURL, time.Since(reqTime))
	if err != nil {
		return "", service.NewAuthError("ArcGIS", "Token request failed", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", service.NewAuthError("ArcGIS", "Cannot read token response", err)
	}
	if resp.StatusCode >= 400 {
		return "", service.NewAuthError("ArcGIS",
			fmt.Sprintf("Token request returned status %d", resp.StatusCode), nil)
	}
	if errMsg := arcgisError(body); errMsg != "" {
		return "", service.NewAuthError("ArcGIS", errMsg, nil)
	}
	token := gjson.GetBytes(body, "token").String()
	if token == "" {
		return "", service.NewAuthError("ArcGIS", "Token response contained no token", nil)
	}
	client.token = token
	client.tokenTime = time.Now()
	return token, nil
}

func (client *ArcGISClient) invalidateToken() {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	client.token = ""
}

// FetchMasts pulls every mast feature from the layer, following the
// server's transfer limit through as many pages as it takes. Features
// come back in the layer's own order, which is also the order the
// matcher uses to break ties.
func (client *ArcGISClient) FetchMasts() ([]*gis.MastRecord, error) {
	masts := make([]*gis.MastRecord, 0)
	offset := 0
	for {
		page, exceeded, err := client.fetchPage(offset)
		if err != nil {
			return nil, err
		}
		masts = append(masts, page...)
		if !exceeded || len(page) == 0 {
			break
		}
		offset += len(page)
	}
	client.logger.Infof("Fetched %d masts from %s", len(masts), client.LayerURL)
	return masts, nil
}

func (client *ArcGISClient) fetchPage(offset int) ([]*gis.MastRecord, bool, error) {
	body, err := client.queryPage(offset, false)
	if err != nil {
		return nil, false, err
	}
	features := gjson.GetBytes(body, "features").Array()
	masts := make([]*gis.MastRecord, 0, len(features))
	for _, feature := range features {
		attributes := feature.Get("attributes").Map()
		fields := make(map[string]interface{}, len(attributes))
		for name, value := range attributes {
			fields[name] = value.Value()
		}
		point := orb.Point{
			feature.Get("geometry.x").Float(),
			feature.Get("geometry.y").Float(),
		}
		masts = append(masts, gis.NewMastRecord(
			feature.Get("attributes.ID").Int(), point, fields))
	}
	return masts, gjson.GetBytes(body, "exceededTransferLimit").Bool(), nil
}

// queryPage runs one layer query. When the layer rejects the token and
// this is the first try, the token is refreshed and the query replayed
// once.
func (client *ArcGISClient) queryPage(offset int, retried bool) ([]byte, error) {
	token, err := client.GetToken()
	if err != nil {
		return nil, err
	}
	form := url.Values{}
	form.Set("where", "1=1")
	form.Set("outFields", "*")
	form.Set("returnGeometry", "true")
	form.Set("outSR", "4326")
	form.Set("resultOffset", strconv.Itoa(offset))
	form.Set("f", "json")
	form.Set("token", token)

	queryURL := client.LayerURL + "/query"
	reqTime := time.Now()
	resp, err := client.httpClient.PostForm(queryURL, form)
	client.logger.Infof("POST %s completed in %s", queryURL, time.Since(reqTime))
	if err != nil {
		return nil, fmt.Errorf("POST %s: %s", queryURL, err.Error())
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("POST %s: %s", queryURL, err.Error())
	}
	if tokenRejected(resp.StatusCode, body) {
		if retried {
			return nil, service.NewAuthError("ArcGIS",
				"Layer rejected a freshly issued token", nil)
		}
		client.logger.Info("ArcGIS token rejected, requesting a new one")
		client.invalidateToken()
		return client.queryPage(offset, true)
	}
	if resp.StatusCode >= 400 {
		return nil, service.NewServiceError("POST", queryURL, resp.StatusCode,
			string(body), nil)
	}
	if errMsg := arcgisError(body); errMsg != "" {
		return nil, service.NewServiceError("POST", queryURL, resp.StatusCode,
			errMsg, nil)
	}
	return body, nil
}

// tokenRejected says whether a layer response means the token is no
// longer valid. ArcGIS signals this either with HTTP 498/401 or with
// an error object carrying code 498 inside a 200 response.
func tokenRejected(statusCode int, body []byte) bool {
	if statusCode == http.StatusUnauthorized || statusCode == 498 {
		return true
	}
	return gjson.GetBytes(body, "error.code").Int() == 498
}

// arcgisError returns the message of an error object the server put
// inside a 200 response, or "" when the response is clean.
func arcgisError(body []byte) string {
	errObj := gjson.GetBytes(body, "error")
	if !errObj.Exists() {
		return ""
	}
	parts := make([]string, 0, 4)
	if message := errObj.Get("message").String(); message != "" {
		parts = append(parts, message)
	}
	for _, detail := range errObj.Get("details").Array() {
		if detail.String() != "" {
			parts = append(parts, detail.String())
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("ArcGIS error code %d", errObj.Get("code").Int())
	}
	return strings.Join(parts, " ")
}
