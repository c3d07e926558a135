package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/moerenett/toppbefaring-services/models/gis"
)

// ArcGISServer fakes the two Portal endpoints the mast fetcher talks
// to: generateToken and the feature layer query. Tokens are issued
// sequentially, and ExpireToken invalidates the current one so tests
// can force the 498 refresh path.
type ArcGISServer struct {
	Masts    []*gis.MastRecord
	PageSize int
	FailAuth bool

	server        *httptest.Server
	mutex         sync.Mutex
	currentToken  string
	tokenRequests int
}

func NewArcGISServer(masts []*gis.MastRecord) *ArcGISServer {
	arcgisServer := &ArcGISServer{
		Masts: masts,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/portal/sharing/rest/generateToken", arcgisServer.handleToken)
	mux.HandleFunc("/server/rest/services/Nett/FeatureServer/5/query", arcgisServer.handleQuery)
	arcgisServer.server = httptest.NewServer(mux)
	return arcgisServer
}

func (s *ArcGISServer) TokenURL() string {
	return s.server.URL + "/portal/sharing/rest/generateToken"
}

func (s *ArcGISServer) LayerURL() string {
	return s.server.URL + "/server/rest/services/Nett/FeatureServer/5"
}

// TokenRequests reports how many times the token endpoint was hit,
// successful or not.
func (s *ArcGISServer) TokenRequests() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.tokenRequests
}

// ExpireToken invalidates the last token this server handed out, as if
// its lifetime had run out.
func (s *ArcGISServer) ExpireToken() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.currentToken = ""
}

func (s *ArcGISServer) Close() {
	s.server.Close()
}

func (s *ArcGISServer) handleToken(w http.ResponseWriter, r *http.Request) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.tokenRequests++
	if s.FailAuth || r.FormValue("username") == "" || r.FormValue("password") == "" {
		// Portal reports bad credentials inside a 200, not with an
		// HTTP error status.
		writeJSON(w, map[string]interface{}{
			"error": map[string]interface{}{
				"code":    400,
				"message": "Unable to generate token.",
				"details": []string{"Invalid username or password."},
			},
		})
		return
	}
	s.currentToken = fmt.Sprintf("token-%d", s.tokenRequests)
	writeJSON(w, map[string]interface{}{
		"token":   s.currentToken,
		"expires": time.Now().Add(time.Hour).UnixMilli(),
		"ssl":     true,
	})
}

func (s *ArcGISServer) handleQuery(w http.ResponseWriter, r *http.Request) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	token := r.FormValue("token")
	if token == "" || token != s.currentToken {
		writeJSON(w, map[string]interface{}{
			"error": map[string]interface{}{
				"code":    498,
				"message": "Invalid token.",
				"details": []string{},
			},
		})
		return
	}
	offset, _ := strconv.Atoi(r.FormValue("resultOffset"))
	limit := len(s.Masts)
	if s.PageSize > 0 {
		limit = s.PageSize
	}
	end := offset + limit
	if end > len(s.Masts) {
		end = len(s.Masts)
	}
	if offset > end {
		offset = end
	}
	features := make([]map[string]interface{}, 0, end-offset)
	for _, mast := range s.Masts[offset:end] {
		features = append(features, map[string]interface{}{
			"attributes": mast.Fields,
			"geometry": map[string]interface{}{
				"x": mast.Point.Lon(),
				"y": mast.Point.Lat(),
			},
		})
	}
	writeJSON(w, map[string]interface{}{
		"objectIdFieldName":     "OID",
		"features":              features,
		"exceededTransferLimit": end < len(s.Masts),
	})
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	encoded, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(encoded)
}
