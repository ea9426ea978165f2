// Package api implements the remote deployment API client: a resilient
// request layer that decodes the service's JSON envelopes, plus typed
// wrappers for the asset-index and deployment endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/webfoundry/pages/errors"
)

const (
	// DefaultBaseURL is the production API endpoint.
	DefaultBaseURL = "https://api.cloudflare.com/client/v4"

	// DefaultMaxAttempts is the total number of tries per request.
	DefaultMaxAttempts = 5

	// defaultUserAgent identifies this client to the remote service.
	defaultUserAgent = "webfoundry-pages/1.0"

	// maxBackoff caps the delay between attempts.
	maxBackoff = 60 * time.Second

	// errBodyLimit bounds how much of a non-JSON response body is echoed
	// into error messages.
	errBodyLimit = 512
)

// Client performs authenticated calls against the remote API with retry.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	maxAttempts int
	logger      *slog.Logger

	// sleep is replaced in tests to observe backoff without waiting.
	sleep func(time.Duration)
}

// Config holds the knobs for a Client. Zero values select defaults.
type Config struct {
	HTTPClient  *http.Client
	BaseURL     string
	UserAgent   string
	MaxAttempts int
	Logger      *slog.Logger
}

// New creates a Client from cfg, filling in defaults for unset fields.
func New(cfg Config) *Client {
	client := &Client{
		httpClient:  cfg.HTTPClient,
		baseURL:     cfg.BaseURL,
		userAgent:   cfg.UserAgent,
		maxAttempts: cfg.MaxAttempts,
		logger:      cfg.Logger,
		sleep:       time.Sleep,
	}
	if client.httpClient == nil {
		client.httpClient = http.DefaultClient
	}
	if client.baseURL == "" {
		client.baseURL = DefaultBaseURL
	}
	if client.userAgent == "" {
		client.userAgent = defaultUserAgent
	}
	if client.maxAttempts <= 0 {
		client.maxAttempts = DefaultMaxAttempts
	}
	if client.logger == nil {
		client.logger = slog.New(slog.DiscardHandler)
	}
	return client
}

// request describes one API call. A nil body produces a GET, otherwise a
// POST. contentType overrides the default application/json body type, which
// multipart bodies need.
type request struct {
	path        string
	auth        string
	body        []byte
	contentType string
}

// envelope is the response shape shared by every endpoint.
type envelope struct {
	Success bool                `json:"success"`
	Result  json.RawMessage     `json:"result"`
	Errors  []errors.APIMessage `json:"errors"`
}

// do performs req with retry, decoding the envelope result into out when
// out is non-nil. Transport failures and non-JSON responses are retried up
// to the attempt budget with polynomial backoff; a well-formed
// success:false envelope is surfaced immediately as an *errors.APIError.
func (c *Client) do(ctx context.Context, req request, out any) error {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := c.once(ctx, req, out)
		if err == nil {
			return nil
		}
		var apiErr *errors.APIError
		if stderrors.As(err, &apiErr) {
			return err
		}

		lastErr = err
		if attempt < c.maxAttempts {
			delay := backoff(attempt)
			c.logger.Warn("request failed, retrying",
				"path", req.path,
				"attempt", attempt,
				"delay", delay,
				"error", err)
			c.sleep(delay)
		}
	}
	return lastErr
}

// backoff returns the delay after the given 1-based attempt number:
// min(attempt^2.5, 60) seconds.
func backoff(attempt int) time.Duration {
	seconds := math.Min(math.Pow(float64(attempt), 2.5), maxBackoff.Seconds())
	return time.Duration(seconds * float64(time.Second))
}

// once performs a single attempt of req.
func (c *Client) once(ctx context.Context, req request, out any) error {
	method := http.MethodGet
	var body io.Reader
	if req.body != nil {
		method = http.MethodPost
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+req.path, body)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", req.path, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+req.auth)
	httpReq.Header.Set("User-Agent", c.userAgent)
	if req.body != nil {
		contentType := req.contentType
		if contentType == "" {
			contentType = "application/json"
		}
		httpReq.Header.Set("Content-Type", contentType)
	}

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, req.path, err)
	}
	defer res.Body.Close()

	text, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("reading response from %s: %w", req.path, err)
	}

	// The edge layer answers with HTML error pages under some failure
	// modes; treating those as decode failures keeps the real cause in
	// the error instead of a JSON syntax error.
	if contentType := res.Header.Get("Content-Type"); !strings.Contains(contentType, "json") {
		return fmt.Errorf("%w: %s returned %q (status %d): %s",
			errors.ErrUnexpectedResponse, req.path, contentType, res.StatusCode, truncate(text))
	}

	var env envelope
	if err := json.Unmarshal(text, &env); err != nil {
		return fmt.Errorf("%w: decoding %s response: %v", errors.ErrUnexpectedResponse, req.path, err)
	}
	if !env.Success {
		return &errors.APIError{Messages: env.Errors}
	}
	if out != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("%w: decoding %s result: %v", errors.ErrUnexpectedResponse, req.path, err)
		}
	}
	return nil
}

func truncate(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > errBodyLimit {
		return text[:errBodyLimit] + "..."
	}
	return text
}
