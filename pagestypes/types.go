// Package pagestypes provides shared type definitions for the pages module.
package pagestypes

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/webfoundry/pages/errors"
)

// DeploymentFile is one deployable asset. Name is the deploy-relative path
// using forward slashes. Content holds the raw bytes; for large files a
// ContentFunc can be supplied instead and is invoked at most once, when the
// bytes are first needed.
//
// The deployment pipeline mutates the record in place: it fills in Hash when
// empty and caches the base64 encoding of the content internally. Records
// must not be shared between concurrent deployments.
type DeploymentFile struct {
	// Name is the deploy-relative path, forward-slash separated,
	// without a leading slash (e.g. "css/site.css")
	Name string

	// Content is the raw file content. May be nil when ContentFunc is set.
	Content []byte

	// ContentFunc lazily produces the file content. Only consulted when
	// Content is nil.
	ContentFunc func() ([]byte, error)

	// ContentType overrides MIME detection for this file when non-empty.
	ContentType string

	// Hash is the content fingerprint. Callers may precompute it with
	// pages.Fingerprint to avoid re-reading large files; when empty it is
	// computed during deployment.
	Hash string

	// encoded caches the base64 encoding of Content so the pipeline
	// encodes each file at most once.
	encoded string
}

// Bytes returns the file content, invoking ContentFunc the first time when
// Content is nil. The result is retained on the record.
func (f *DeploymentFile) Bytes() ([]byte, error) {
	if f.Content != nil {
		return f.Content, nil
	}
	if f.ContentFunc == nil {
		return nil, errors.NewError("read", errors.ErrMissingContent).WithPath(f.Name)
	}
	content, err := f.ContentFunc()
	if err != nil {
		return nil, errors.NewError("read", err).WithPath(f.Name)
	}
	f.Content = content
	return content, nil
}

// Base64Content returns the standard base64 encoding of the file content,
// materializing the content if needed. The encoding is cached on the record.
func (f *DeploymentFile) Base64Content() (string, error) {
	if f.encoded != "" {
		return f.encoded, nil
	}
	content, err := f.Bytes()
	if err != nil {
		return "", err
	}
	f.encoded = base64.StdEncoding.EncodeToString(content)
	return f.encoded, nil
}

// DeploymentResult describes a completed deployment.
type DeploymentResult struct {
	// ID is the deployment identifier assigned by the platform
	ID string

	// URL is the preview URL for this deployment
	URL string

	// Hashes maps every input file name to its fingerprint
	Hashes map[string]string
}

// ClientConfig holds configuration for the pages client.
// It is populated through functional options.
type ClientConfig struct {
	// BaseURL is the remote API base URL
	BaseURL string

	// UserAgent is sent with every request
	UserAgent string

	// HTTPClient overrides the default HTTP client
	HTTPClient *http.Client

	// MaxAttempts is the total number of attempts per request (default 5)
	MaxAttempts int

	// Concurrency is the upload worker count (default 4)
	Concurrency int

	// Filesystem backs directory deployments; defaults to the OS filesystem
	Filesystem fs.Filesystem

	// Logger receives progress output; nil discards it
	Logger *slog.Logger
}

// Option configures the pages client.
type Option func(*ClientConfig)

// DeployConfig holds per-deployment metadata.
// It is populated through functional deploy options.
type DeployConfig struct {
	// Branch is the branch name recorded on the deployment
	Branch string

	// CommitMessage is the commit message recorded on the deployment
	CommitMessage string

	// CommitHash is the commit hash recorded on the deployment
	CommitHash string

	// Headers is the _headers file content
	Headers string

	// Redirects is the _redirects file content
	Redirects string

	// WorkerScript is the _worker.js file content
	WorkerScript string
}

// DeployOption configures a single deployment.
type DeployOption func(*DeployConfig)
