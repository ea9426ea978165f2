// Package scanner walks a local directory tree and turns it into a
// deployment file list. Files named after the platform's special files
// (_headers, _redirects, _worker.js) are captured separately instead of
// being deployed as assets.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/webfoundry/pages/errors"
	"github.com/webfoundry/pages/pagestypes"
)

// Special file names recognized anywhere in the tree.
const (
	headersFile      = "_headers"
	redirectsFile    = "_redirects"
	workerScriptFile = "_worker.js"
)

// Listing is the result of scanning a deploy root.
type Listing struct {
	// Files are the deployable assets, with deploy-relative names.
	// Content is read lazily, when the pipeline first needs it.
	Files []*pagestypes.DeploymentFile

	// Headers, Redirects and WorkerScript hold the contents of discovered
	// special files; empty when none was found. For each, the first
	// occurrence in walk order wins.
	Headers      string
	Redirects    string
	WorkerScript string
}

// Scanner lists deployable files through a filesystem abstraction, so
// directory deployments work against the OS or an in-memory tree alike.
type Scanner struct {
	filesystem fs.Filesystem
	logger     *slog.Logger
}

// New creates a scanner over the given filesystem.
func New(filesystem fs.Filesystem, logger *slog.Logger) *Scanner {
	return &Scanner{filesystem: filesystem, logger: logger}
}

// Scan walks root and returns its deployable listing. Every regular file
// below root becomes an asset except special files, which are read as text
// and captured on the listing.
func (s *Scanner) Scan(ctx context.Context, root string) (*Listing, error) {
	info, err := s.filesystem.Stat(root)
	if err != nil {
		return nil, errors.NewError("scan", fmt.Errorf("reading deploy root: %w", err)).WithPath(root)
	}
	if !info.IsDir() {
		return nil, errors.NewError("scan",
			fmt.Errorf("%w: %s is not a directory", errors.ErrInvalidInput, root))
	}

	listing := &Listing{}
	err = s.filesystem.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("deriving deploy path for %s: %w", path, err)
		}
		name := filepath.ToSlash(rel)

		handled, err := s.captureSpecial(listing, filepath.Base(path), path)
		if err != nil {
			return err
		}
		if handled {
			return nil
		}

		filePath := path
		listing.Files = append(listing.Files, &pagestypes.DeploymentFile{
			Name: name,
			ContentFunc: func() ([]byte, error) {
				return s.filesystem.ReadFile(filePath)
			},
		})
		return nil
	})
	if err != nil {
		return nil, errors.NewError("scan", err).WithPath(root)
	}

	s.logger.Debug("scanned deploy root",
		"root", root,
		"files", len(listing.Files),
		"headers", listing.Headers != "",
		"redirects", listing.Redirects != "",
		"worker", listing.WorkerScript != "")
	return listing, nil
}

// captureSpecial records the file as a special option when its base name
// matches one, reporting whether the file was handled and so must not be
// deployed as an asset. Later occurrences of an already-captured special
// file are dropped.
func (s *Scanner) captureSpecial(listing *Listing, base, path string) (bool, error) {
	var target *string
	switch base {
	case headersFile:
		target = &listing.Headers
	case redirectsFile:
		target = &listing.Redirects
	case workerScriptFile:
		target = &listing.WorkerScript
	default:
		return false, nil
	}

	if *target == "" {
		content, err := s.filesystem.ReadFile(path)
		if err != nil {
			return true, fmt.Errorf("reading %s: %w", path, err)
		}
		*target = string(content)
	}
	return true, nil
}
