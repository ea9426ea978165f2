// Package testutil provides a fake deployment API for tests. It implements
// the token-issuance, asset-index and deployment endpoints over httptest
// and records every call so tests can assert on upload behavior.
package testutil

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// DeploymentRecord captures one deployment-creation request.
type DeploymentRecord struct {
	Manifest      map[string]string
	Branch        string
	CommitMessage string
	CommitHash    string
	Headers       string
	Redirects     string
	WorkerScript  string
}

// FakeAPI is an in-process stand-in for the remote deployment service.
// All exported state is guarded by Mu; tests that read it after the client
// call returns do not need the lock.
type FakeAPI struct {
	Server *httptest.Server

	Mu sync.Mutex

	// Stored maps fingerprint to the uploaded base64 value.
	Stored map[string]string

	// ContentTypes maps fingerprint to the uploaded content type.
	ContentTypes map[string]string

	// UploadCalls counts upload requests (one blob per request).
	UploadCalls int

	// UpsertCalls records the hash set of each upsert request.
	UpsertCalls [][]string

	// CheckMissingCalls records the hash set of each check-missing request.
	CheckMissingCalls [][]string

	// TokenRequests counts upload-token issuances.
	TokenRequests int

	// Deployments records each created deployment.
	Deployments []DeploymentRecord

	// TokenTTL controls the expiry of minted upload tokens.
	TokenTTL time.Duration

	// FailUploads makes the next N upload requests answer with an HTML 500,
	// exercising the client's content-type guard and retry path.
	FailUploads int
}

// NewFakeAPI starts a fake deployment service. Callers own the server and
// must Close it.
func NewFakeAPI() *FakeAPI {
	f := &FakeAPI{
		Stored:       make(map[string]string),
		ContentTypes: make(map[string]string),
		TokenTTL:     time.Hour,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /accounts/{account}/pages/projects/{project}/upload-token", f.handleUploadToken)
	mux.HandleFunc("POST /pages/assets/check-missing", f.handleCheckMissing)
	mux.HandleFunc("POST /pages/assets/upload", f.handleUpload)
	mux.HandleFunc("POST /pages/assets/upsert-hashes", f.handleUpsert)
	mux.HandleFunc("POST /accounts/{account}/pages/projects/{project}/deployments", f.handleCreateDeployment)

	f.Server = httptest.NewServer(mux)
	return f
}

// Close shuts down the fake server.
func (f *FakeAPI) Close() {
	f.Server.Close()
}

// URL returns the fake server's base URL.
func (f *FakeAPI) URL() string {
	return f.Server.URL
}

// MintToken builds an unsigned credential with the given expiry, shaped
// like the tokens the real service issues.
func MintToken(exp time.Time) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf(`{"exp":%d}`, exp.Unix())))
	return header + "." + payload + ".fake-signature"
}

func (f *FakeAPI) handleUploadToken(w http.ResponseWriter, r *http.Request) {
	f.Mu.Lock()
	f.TokenRequests++
	ttl := f.TokenTTL
	f.Mu.Unlock()

	writeResult(w, map[string]string{"jwt": MintToken(time.Now().Add(ttl))})
}

func (f *FakeAPI) handleCheckMissing(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Hashes []string `json:"hashes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeFailure(w, 8000001, "malformed request body")
		return
	}

	f.Mu.Lock()
	f.CheckMissingCalls = append(f.CheckMissingCalls, body.Hashes)
	missing := []string{}
	for _, hash := range body.Hashes {
		if _, ok := f.Stored[hash]; !ok {
			missing = append(missing, hash)
		}
	}
	f.Mu.Unlock()

	writeResult(w, missing)
}

func (f *FakeAPI) handleUpload(w http.ResponseWriter, r *http.Request) {
	f.Mu.Lock()
	if f.FailUploads > 0 {
		f.FailUploads--
		f.Mu.Unlock()
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "<html>edge error</html>")
		return
	}
	f.Mu.Unlock()

	var payloads []struct {
		Key      string `json:"key"`
		Value    string `json:"value"`
		Metadata struct {
			ContentType string `json:"contentType"`
		} `json:"metadata"`
		Base64 bool `json:"base64"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payloads); err != nil {
		writeFailure(w, 8000002, "malformed upload payload")
		return
	}

	f.Mu.Lock()
	f.UploadCalls++
	for _, p := range payloads {
		f.Stored[p.Key] = p.Value
		f.ContentTypes[p.Key] = p.Metadata.ContentType
	}
	f.Mu.Unlock()

	writeResult(w, true)
}

func (f *FakeAPI) handleUpsert(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Hashes []string `json:"hashes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeFailure(w, 8000003, "malformed request body")
		return
	}

	f.Mu.Lock()
	f.UpsertCalls = append(f.UpsertCalls, body.Hashes)
	f.Mu.Unlock()

	writeResult(w, true)
}

func (f *FakeAPI) handleCreateDeployment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeFailure(w, 8000004, "malformed deployment form")
		return
	}

	record := DeploymentRecord{
		Branch:        r.FormValue("branch"),
		CommitMessage: r.FormValue("commit_message"),
		CommitHash:    r.FormValue("commit_hash"),
		Headers:       formFile(r, "_headers"),
		Redirects:     formFile(r, "_redirects"),
		WorkerScript:  formFile(r, "_worker.js"),
	}
	if err := json.Unmarshal([]byte(r.FormValue("manifest")), &record.Manifest); err != nil {
		writeFailure(w, 8000005, "malformed manifest")
		return
	}

	f.Mu.Lock()
	f.Deployments = append(f.Deployments, record)
	id := fmt.Sprintf("dep-%06d", len(f.Deployments))
	f.Mu.Unlock()

	writeResult(w, map[string]string{
		"id":  id,
		"url": fmt.Sprintf("https://%s.%s.pages.example", id, r.PathValue("project")),
	})
}

func formFile(r *http.Request, name string) string {
	file, _, err := r.FormFile(name)
	if err != nil {
		return ""
	}
	defer file.Close()
	var buf [1 << 20]byte
	n, _ := file.Read(buf[:])
	return string(buf[:n])
}

func writeResult(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"result":  result,
		"errors":  []any{},
	})
}

func writeFailure(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"result":  nil,
		"errors":  []map[string]any{{"code": code, "message": message}},
	})
}
