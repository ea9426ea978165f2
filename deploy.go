package pages

import (
	"context"

	"github.com/webfoundry/pages/errors"
	"github.com/webfoundry/pages/internal/api"
	"github.com/webfoundry/pages/internal/auth"
	"github.com/webfoundry/pages/internal/sync/executor"
	"github.com/webfoundry/pages/internal/sync/planner"
	"github.com/webfoundry/pages/internal/sync/scanner"
	"github.com/webfoundry/pages/internal/validation"
	"github.com/webfoundry/pages/pagestypes"
)

// Deploy publishes an explicit file list as a new deployment.
//
// The deployment proceeds in phases: fingerprint every file, ask the remote
// which fingerprints are missing, upload the missing blobs concurrently,
// associate the full fingerprint set with the deployment, then submit the
// manifest. A deployment either fully completes or fails; there is no
// partial result.
//
// File records are mutated in place (hash and cached encoding) and must not
// be shared with a concurrent Deploy call.
//
// Returns:
//   - *pagestypes.DeploymentResult: the deployment id, preview URL, and the
//     fingerprint of every input file
//   - error: validation failures, exhausted retries, or a structured remote
//     rejection (see the errors package)
func (c *Client) Deploy(
	ctx context.Context,
	files []*pagestypes.DeploymentFile,
	opts ...pagestypes.DeployOption,
) (*pagestypes.DeploymentResult, error) {
	cfg := &pagestypes.DeployConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if err := validation.ValidateFiles(files); err != nil {
		return nil, errors.NewError("deploy", err).WithProject(c.project)
	}

	plan, err := planner.Build(files, c.logger)
	if err != nil {
		return nil, err
	}
	c.logger.Info("hashed deployment files",
		"files", len(files),
		"distinct", len(plan.Hashes()))

	// One credential cache per deployment; the upload workers share it.
	tokens := auth.NewCache(func(ctx context.Context) (string, error) {
		return c.api.UploadToken(ctx, c.apiToken, c.accountID, c.project)
	})

	uploadToken, err := tokens.Get(ctx)
	if err != nil {
		return nil, err
	}
	missing, err := c.api.MissingHashes(ctx, uploadToken, plan.Hashes())
	if err != nil {
		return nil, err
	}
	c.logger.Info("checked remote asset index",
		"distinct", len(plan.Hashes()),
		"missing", len(missing))

	uploads := executor.New(&cachedTokenStore{api: c.api, tokens: tokens}, c.concurrency, c.logger)
	if err := uploads.Run(ctx, missing, plan); err != nil {
		return nil, err
	}

	if len(missing) > 0 {
		uploadToken, err = tokens.Get(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.api.UpsertHashes(ctx, uploadToken, plan.Hashes()); err != nil {
			return nil, err
		}
	}

	deployment, err := c.api.CreateDeployment(ctx, c.apiToken, c.accountID, c.project, api.DeploymentForm{
		Manifest:      plan.Manifest(),
		Branch:        cfg.Branch,
		CommitMessage: cfg.CommitMessage,
		CommitHash:    cfg.CommitHash,
		Headers:       cfg.Headers,
		Redirects:     cfg.Redirects,
		WorkerScript:  cfg.WorkerScript,
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("created deployment", "id", deployment.ID, "url", deployment.URL)

	return &pagestypes.DeploymentResult{
		ID:     deployment.ID,
		URL:    deployment.URL,
		Hashes: plan.FileHashes(),
	}, nil
}

// DeployDirectory publishes a directory tree as a new deployment. Every
// regular file below root becomes an asset; files named _headers,
// _redirects or _worker.js at any depth are captured as the corresponding
// deployment option instead (first occurrence wins, and an explicit option
// always takes precedence over a discovered file).
//
// Example:
//
//	result, err := client.DeployDirectory(ctx, "./public",
//	    pages.WithBranch("main"),
//	    pages.WithCommitMessage("deploy"),
//	)
func (c *Client) DeployDirectory(
	ctx context.Context,
	root string,
	opts ...pagestypes.DeployOption,
) (*pagestypes.DeploymentResult, error) {
	listing, err := scanner.New(c.fs, c.logger).Scan(ctx, root)
	if err != nil {
		return nil, err
	}

	// Discovered special files go first so caller options applied after
	// them win.
	merged := make([]pagestypes.DeployOption, 0, len(opts)+3)
	if listing.Headers != "" {
		merged = append(merged, WithHeaders(listing.Headers))
	}
	if listing.Redirects != "" {
		merged = append(merged, WithRedirects(listing.Redirects))
	}
	if listing.WorkerScript != "" {
		merged = append(merged, WithWorkerScript(listing.WorkerScript))
	}
	merged = append(merged, opts...)

	return c.Deploy(ctx, listing.Files, merged...)
}

// cachedTokenStore adapts the API client and the credential cache to the
// executor's blob store, so each upload uses a fresh-enough credential.
type cachedTokenStore struct {
	api    *api.Client
	tokens *auth.Cache
}

func (s *cachedTokenStore) UploadBlob(ctx context.Context, key, value, contentType string) error {
	uploadToken, err := s.tokens.Get(ctx)
	if err != nil {
		return err
	}
	return s.api.UploadBlob(ctx, uploadToken, key, value, contentType)
}
