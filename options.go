package pages

import (
	"log/slog"
	"net/http"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/webfoundry/pages/pagestypes"
)

// WithBaseURL overrides the remote API base URL.
// Useful for tests and self-hosted gateways.
func WithBaseURL(baseURL string) pagestypes.Option {
	return func(c *pagestypes.ClientConfig) {
		c.BaseURL = baseURL
	}
}

// WithHTTPClient provides a custom HTTP client.
// This gives full control over HTTP behavior including timeouts and proxies.
func WithHTTPClient(client *http.Client) pagestypes.Option {
	return func(c *pagestypes.ClientConfig) {
		c.HTTPClient = client
	}
}

// WithMaxAttempts sets the total number of tries per remote call.
// Default is 5. Failed attempts back off polynomially, capped at 60s.
func WithMaxAttempts(attempts int) pagestypes.Option {
	return func(c *pagestypes.ClientConfig) {
		if attempts > 0 {
			c.MaxAttempts = attempts
		}
	}
}

// WithConcurrency sets the number of concurrent upload workers.
// Default is 4 concurrent uploads.
func WithConcurrency(concurrency int) pagestypes.Option {
	return func(c *pagestypes.ClientConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithUserAgent overrides the User-Agent header sent with every request.
func WithUserAgent(userAgent string) pagestypes.Option {
	return func(c *pagestypes.ClientConfig) {
		c.UserAgent = userAgent
	}
}

// WithFilesystem sets a custom filesystem implementation for directory
// deployments. This allows using in-memory filesystems for testing or
// virtual filesystems. If not specified, defaults to the OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) pagestypes.Option {
	return func(c *pagestypes.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithLogger sets the logger receiving progress output.
// A nil logger (the default) discards all output.
func WithLogger(logger *slog.Logger) pagestypes.Option {
	return func(c *pagestypes.ClientConfig) {
		c.Logger = logger
	}
}

// WithBranch records the source branch on the deployment.
func WithBranch(branch string) pagestypes.DeployOption {
	return func(c *pagestypes.DeployConfig) {
		c.Branch = branch
	}
}

// WithCommitMessage records the commit message on the deployment.
func WithCommitMessage(message string) pagestypes.DeployOption {
	return func(c *pagestypes.DeployConfig) {
		c.CommitMessage = message
	}
}

// WithCommitHash records the commit hash on the deployment.
func WithCommitHash(hash string) pagestypes.DeployOption {
	return func(c *pagestypes.DeployConfig) {
		c.CommitHash = hash
	}
}

// WithHeaders supplies the _headers file content for the deployment.
// In directory mode a caller-supplied value takes precedence over a
// discovered _headers file.
func WithHeaders(headers string) pagestypes.DeployOption {
	return func(c *pagestypes.DeployConfig) {
		c.Headers = headers
	}
}

// WithRedirects supplies the _redirects file content for the deployment.
// In directory mode a caller-supplied value takes precedence over a
// discovered _redirects file.
func WithRedirects(redirects string) pagestypes.DeployOption {
	return func(c *pagestypes.DeployConfig) {
		c.Redirects = redirects
	}
}

// WithWorkerScript supplies the _worker.js content for the deployment.
// In directory mode a caller-supplied value takes precedence over a
// discovered _worker.js file.
func WithWorkerScript(script string) pagestypes.DeployOption {
	return func(c *pagestypes.DeployConfig) {
		c.WorkerScript = script
	}
}
