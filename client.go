package pages

import (
	"log/slog"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"

	"github.com/webfoundry/pages/errors"
	"github.com/webfoundry/pages/internal/api"
	"github.com/webfoundry/pages/internal/sync/executor"
	"github.com/webfoundry/pages/internal/validation"
	"github.com/webfoundry/pages/pagestypes"
)

// Client deploys to one project of the hosting platform. A Client is safe
// for sequential reuse across deployments; each deployment obtains its own
// short-lived upload credential.
type Client struct {
	api *api.Client

	accountID string
	project   string
	apiToken  string

	concurrency int
	fs          fs.Filesystem
	logger      *slog.Logger
}

// New creates a client for the given account, project and API token.
//
// Example:
//
//	client, err := pages.New(accountID, "my-site", apiToken,
//	    pages.WithConcurrency(8),
//	    pages.WithLogger(slog.Default()),
//	)
func New(accountID, project, apiToken string, opts ...pagestypes.Option) (*Client, error) {
	if err := validation.ValidateCredentials(accountID, project, apiToken); err != nil {
		return nil, errors.NewError("client initialization", err)
	}

	cfg := &pagestypes.ClientConfig{
		MaxAttempts: api.DefaultMaxAttempts,
		Concurrency: executor.DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	filesystem := cfg.Filesystem
	if filesystem == nil {
		filesystem = billy.NewOSFS("/")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = executor.DefaultConcurrency
	}

	return &Client{
		api: api.New(api.Config{
			HTTPClient:  cfg.HTTPClient,
			BaseURL:     cfg.BaseURL,
			UserAgent:   cfg.UserAgent,
			MaxAttempts: cfg.MaxAttempts,
			Logger:      logger,
		}),
		accountID:   accountID,
		project:     project,
		apiToken:    apiToken,
		concurrency: concurrency,
		fs:          filesystem,
		logger:      logger,
	}, nil
}
