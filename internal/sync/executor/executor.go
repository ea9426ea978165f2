// Package executor uploads the missing asset set with bounded concurrency.
// A fixed pool of workers drains a channel of fingerprints, so each missing
// blob is assigned to exactly one worker and uploaded exactly once.
package executor

import (
	"context"
	"log/slog"
	"mime"
	"path"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"github.com/webfoundry/pages/errors"
	"github.com/webfoundry/pages/internal/sync/planner"
	"github.com/webfoundry/pages/pagestypes"
)

// DefaultConcurrency is the worker count when none is configured.
const DefaultConcurrency = 4

// defaultContentType is used when no MIME type can be determined.
const defaultContentType = "application/octet-stream"

// BlobStore stores one base64-encoded blob keyed by its fingerprint.
type BlobStore interface {
	UploadBlob(ctx context.Context, key, value, contentType string) error
}

// Executor drives the upload of missing fingerprints.
type Executor struct {
	store       BlobStore
	concurrency int
	logger      *slog.Logger
}

// New creates an executor uploading through store with the given worker
// count. Non-positive counts fall back to DefaultConcurrency.
func New(store BlobStore, concurrency int, logger *slog.Logger) *Executor {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Executor{store: store, concurrency: concurrency, logger: logger}
}

// Run uploads every fingerprint in missing exactly once. The first upload
// failure cancels the remaining work and is returned; uploads already in
// flight finish or fail on the cancelled context.
func (e *Executor) Run(ctx context.Context, missing []string, plan *planner.Plan) error {
	if len(missing) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := min(e.concurrency, len(missing))
	jobs := make(chan string)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for hash := range jobs {
				if ctx.Err() != nil {
					return
				}
				if err := e.upload(ctx, hash, plan); err != nil {
					fail(err)
					return
				}
			}
		}()
	}

	for _, hash := range missing {
		select {
		case jobs <- hash:
		case <-ctx.Done():
			// Workers are gone or the caller cancelled; stop feeding.
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

// upload materializes and stores the blob for one missing fingerprint.
func (e *Executor) upload(ctx context.Context, hash string, plan *planner.Plan) error {
	file, ok := plan.FileFor(hash)
	if !ok {
		// Fingerprints are derived from the same file list, so a missing
		// backing file means the plan and the missing set diverged.
		return errors.NewError("upload", errors.ErrNoFileForHash).WithHash(hash)
	}

	value, err := file.Base64Content()
	if err != nil {
		return err
	}
	contentType := ContentType(file)

	e.logger.Debug("uploading asset", "path", file.Name, "hash", hash, "contentType", contentType)
	return e.store.UploadBlob(ctx, hash, value, contentType)
}

// ContentType resolves the upload content type for a file: the explicit
// override when set, then extension lookup, then content sniffing over the
// materialized bytes, then the generic binary fallback.
func ContentType(file *pagestypes.DeploymentFile) string {
	if file.ContentType != "" {
		return file.ContentType
	}
	if ext := path.Ext(file.Name); ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}
	if content, err := file.Bytes(); err == nil && len(content) > 0 {
		if mt := mimetype.Detect(content); mt != nil {
			return mt.String()
		}
	}
	return defaultContentType
}
