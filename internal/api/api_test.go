package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webfoundry/pages/errors"
	"github.com/webfoundry/pages/internal/testutil"
)

// newTestClient returns a client pointed at url with sleeping disabled,
// recording each backoff delay into the returned slice.
func newTestClient(url string) (*Client, *[]time.Duration) {
	naps := &[]time.Duration{}
	client := New(Config{BaseURL: url})
	client.sleep = func(d time.Duration) {
		*naps = append(*naps, d)
	}
	return client, naps
}

func TestDoRetriesTransportFailures(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 5 {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, "<html>bad gateway</html>")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"success":true,"result":"ok","errors":[]}`)
	}))
	defer server.Close()

	client, naps := newTestClient(server.URL)
	var out string
	err := client.do(context.Background(), request{path: "/flaky", auth: "tok"}, &out)

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 5, attempts)
	assert.Equal(t, []time.Duration{
		1 * time.Second,
		5656854249, // 2^2.5 seconds
		15588457268,
		32 * time.Second,
	}, *naps)
}

func TestDoGivesUpAfterAttemptBudget(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "nope")
	}))
	defer server.Close()

	client, naps := newTestClient(server.URL)
	err := client.do(context.Background(), request{path: "/down", auth: "tok"}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnexpectedResponse)
	assert.Contains(t, err.Error(), "nope")
	assert.Equal(t, 5, attempts)
	assert.Len(t, *naps, 4)
}

func TestDoDoesNotRetryAPIFailures(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"success":false,"result":null,"errors":[{"code":8000000,"message":"project not found"}]}`)
	}))
	defer server.Close()

	client, naps := newTestClient(server.URL)
	err := client.do(context.Background(), request{path: "/rejected", auth: "tok"}, nil)

	apiErr, ok := errors.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 8000000, apiErr.Messages[0].Code)
	assert.Contains(t, apiErr.Error(), "project not found")
	assert.Equal(t, 1, attempts)
	assert.Empty(t, *naps)
}

func TestDoSendsAuthAndUserAgent(t *testing.T) {
	var gotAuth, gotAgent, gotMethod, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"success":true,"result":null,"errors":[]}`)
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)

	err := client.do(context.Background(), request{path: "/get", auth: "secret"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, defaultUserAgent, gotAgent)
	assert.Equal(t, http.MethodGet, gotMethod)

	err = client.do(context.Background(), request{path: "/post", auth: "secret", body: []byte(`{}`)}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotContentType)
}

func TestBackoffCapsAtSixtySeconds(t *testing.T) {
	assert.Equal(t, time.Second, backoff(1))
	assert.Equal(t, 32*time.Second, backoff(4))
	assert.Equal(t, 60*time.Second, backoff(6))
	assert.Equal(t, 60*time.Second, backoff(100))
}

func TestMissingHashes(t *testing.T) {
	fake := testutil.NewFakeAPI()
	defer fake.Close()
	fake.Stored["aaaa"] = "stored"

	client, _ := newTestClient(fake.URL())
	missing, err := client.MissingHashes(context.Background(), "tok", []string{"aaaa", "bbbb", "cccc"})

	require.NoError(t, err)
	assert.Equal(t, []string{"bbbb", "cccc"}, missing)
	assert.Equal(t, [][]string{{"aaaa", "bbbb", "cccc"}}, fake.CheckMissingCalls)
}

func TestUploadBlob(t *testing.T) {
	fake := testutil.NewFakeAPI()
	defer fake.Close()

	client, _ := newTestClient(fake.URL())
	err := client.UploadBlob(context.Background(), "tok", "abcd", "aGVsbG8=", "text/html")

	require.NoError(t, err)
	assert.Equal(t, "aGVsbG8=", fake.Stored["abcd"])
	assert.Equal(t, "text/html", fake.ContentTypes["abcd"])
}

func TestUpsertHashes(t *testing.T) {
	fake := testutil.NewFakeAPI()
	defer fake.Close()

	client, _ := newTestClient(fake.URL())
	err := client.UpsertHashes(context.Background(), "tok", []string{"aaaa", "bbbb"})

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"aaaa", "bbbb"}}, fake.UpsertCalls)
}

func TestUploadToken(t *testing.T) {
	fake := testutil.NewFakeAPI()
	defer fake.Close()

	client, _ := newTestClient(fake.URL())
	token, err := client.UploadToken(context.Background(), "api-token", "acct", "proj")

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, 1, fake.TokenRequests)
}

func TestCreateDeployment(t *testing.T) {
	fake := testutil.NewFakeAPI()
	defer fake.Close()

	client, _ := newTestClient(fake.URL())
	deployment, err := client.CreateDeployment(context.Background(), "api-token", "acct", "proj", DeploymentForm{
		Manifest:      map[string]string{"/index.html": "aaaa", "/site.css": "bbbb"},
		Branch:        "main",
		CommitMessage: "ship it",
		Headers:       "/*\n  X-Frame-Options: DENY",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, deployment.ID)
	assert.Contains(t, deployment.URL, deployment.ID)

	require.Len(t, fake.Deployments, 1)
	record := fake.Deployments[0]
	assert.Equal(t, map[string]string{"/index.html": "aaaa", "/site.css": "bbbb"}, record.Manifest)
	assert.Equal(t, "main", record.Branch)
	assert.Equal(t, "ship it", record.CommitMessage)
	assert.Empty(t, record.CommitHash)
	assert.Equal(t, "/*\n  X-Frame-Options: DENY", record.Headers)
	assert.Empty(t, record.Redirects)
	assert.Empty(t, record.WorkerScript)
}

func TestCreateDeploymentRetriesThroughEdgeErrors(t *testing.T) {
	fake := testutil.NewFakeAPI()
	defer fake.Close()
	fake.FailUploads = 2

	client, naps := newTestClient(fake.URL())
	err := client.UploadBlob(context.Background(), "tok", "abcd", "dmFsdWU=", "text/plain")

	require.NoError(t, err)
	assert.Len(t, *naps, 2)
	assert.Equal(t, "dmFsdWU=", fake.Stored["abcd"])
}
