package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// UploadedDocument records what a test pushed into the fake grid: the
// file bytes, the name from the multipart form, and the attributes a
// later runschematasks call attached.
type UploadedDocument struct {
	ID         string
	FileName   string
	Body       []byte
	Schema     string
	Attributes map[string]interface{}
}

// ImageGridServer fakes the document API endpoints the uploader talks
// to: the OAuth token endpoint, upload, runschematasks and search.
// Seed KnownHashes before the test runs to simulate documents uploaded
// in earlier sessions; documents whose schema tasks set a filehash are
// indexed automatically, the way the live service does it.
type ImageGridServer struct {
	KnownHashes     map[string][]string
	SearchMisses404 bool

	server        *httptest.Server
	mutex         sync.Mutex
	currentToken  string
	tokenRequests int
	docSerial     int
	documents     map[string]*UploadedDocument
}

func NewImageGridServer() *ImageGridServer {
	gridServer := &ImageGridServer{
		KnownHashes: make(map[string][]string),
		documents:   make(map[string]*UploadedDocument),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/connect/token", gridServer.handleToken)
	mux.HandleFunc("/api/", gridServer.handleAPI)
	gridServer.server = httptest.NewServer(mux)
	return gridServer
}

func (s *ImageGridServer) URL() string {
	return s.server.URL
}

func (s *ImageGridServer) TokenURL() string {
	return s.server.URL + "/connect/token"
}

// TokenRequests reports how many times the token endpoint was hit.
func (s *ImageGridServer) TokenRequests() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.tokenRequests
}

// ExpireToken invalidates the last access token this server issued.
// The next API call with the old token gets a 401.
func (s *ImageGridServer) ExpireToken() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.currentToken = ""
}

// Document returns the uploaded document with the given id, or nil.
func (s *ImageGridServer) Document(id string) *UploadedDocument {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.documents[id]
}

func (s *ImageGridServer) DocumentCount() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.documents)
}

func (s *ImageGridServer) Close() {
	s.server.Close()
}

func (s *ImageGridServer) handleToken(w http.ResponseWriter, r *http.Request) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.tokenRequests++
	if r.FormValue("grant_type") != "client_credentials" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"unsupported_grant_type"}`))
		return
	}
	s.currentToken = fmt.Sprintf("grid-token-%d", s.tokenRequests)
	writeJSON(w, map[string]interface{}{
		"access_token": s.currentToken,
		"token_type":   "Bearer",
		"expires_in":   3600,
	})
}

func (s *ImageGridServer) handleAPI(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"Message":"Authorization has been denied for this request."}`))
		return
	}
	// Paths look like /api/v1.0/{tenant}/upload, .../search, or
	// /api/v1.0/{tenant}/{schema}/{id}/runschematasks.
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 4 {
		http.NotFound(w, r)
		return
	}
	rest := parts[3:]
	switch {
	case len(rest) == 1 && rest[0] == "upload":
		s.handleUpload(w, r)
	case len(rest) == 1 && rest[0] == "search":
		s.handleSearch(w, r)
	case len(rest) == 3 && rest[2] == "runschematasks":
		s.handleSchemaTasks(w, r, rest[0], rest[1])
	default:
		http.NotFound(w, r)
	}
}

func (s *ImageGridServer) authorized(r *http.Request) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	header := r.Header.Get("Authorization")
	return s.currentToken != "" && header == "Bearer "+s.currentToken
}

func (s *ImageGridServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()
	body, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.docSerial++
	doc := &UploadedDocument{
		ID:       fmt.Sprintf("doc-%d", s.docSerial),
		FileName: header.Filename,
		Body:     body,
	}
	s.documents[doc.ID] = doc
	writeJSON(w, map[string]interface{}{"Id": doc.ID})
}

func (s *ImageGridServer) handleSchemaTasks(w http.ResponseWriter, r *http.Request, schema, id string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	doc := s.documents[id]
	if doc == nil {
		http.NotFound(w, r)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload := struct {
		Attributes map[string]interface{} `json:"Attributes"`
	}{}
	if err = json.Unmarshal(body, &payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	doc.Schema = schema
	doc.Attributes = payload.Attributes
	if hash, ok := payload.Attributes["filehash"].(string); ok && hash != "" {
		s.KnownHashes[hash] = append(s.KnownHashes[hash], doc.ID)
	}
	writeJSON(w, map[string]interface{}{"Id": doc.ID, "TasksRun": 1})
}

func (s *ImageGridServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	var ids []string
	if r.FormValue("key") == "filehash" {
		ids = s.KnownHashes[r.FormValue("value")]
	}
	if len(ids) == 0 && s.SearchMisses404 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"Message":"No documents matched the query."}`))
		return
	}
	results := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		result := map[string]interface{}{"id": id}
		if doc := s.documents[id]; doc != nil {
			result["fileName"] = doc.FileName
		}
		results = append(results, result)
	}
	writeJSON(w, map[string]interface{}{
		"count":   len(ids),
		"results": results,
	})
}
