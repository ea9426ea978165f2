// Package planner prepares a file list for deployment: it computes the
// fingerprint of every file, groups files by distinct fingerprint, and
// builds the manifest submitted with the deployment.
package planner

import (
	"log/slog"

	"github.com/webfoundry/pages/internal/fingerprint"
	"github.com/webfoundry/pages/pagestypes"
)

// Plan is the hashed view of one deployment's file list.
type Plan struct {
	files []*pagestypes.DeploymentFile

	// byHash maps each distinct fingerprint to the first file producing it.
	// Files with identical content and extension share an entry; uploading
	// any one of them stores the blob for all.
	byHash map[string]*pagestypes.DeploymentFile

	// hashes holds the distinct fingerprints in first-seen order.
	hashes []string
}

// Build fingerprints every file that does not carry a precomputed hash and
// returns the resulting plan. File records are mutated in place: the hash
// and the base64 encoding of the content are attached as they are computed.
func Build(files []*pagestypes.DeploymentFile, logger *slog.Logger) (*Plan, error) {
	plan := &Plan{
		files:  files,
		byHash: make(map[string]*pagestypes.DeploymentFile, len(files)),
	}
	for _, file := range files {
		if file.Hash == "" {
			encoded, err := file.Base64Content()
			if err != nil {
				return nil, err
			}
			file.Hash = fingerprint.SumEncoded(encoded, file.Name)
			logger.Debug("hashed file", "path", file.Name, "hash", file.Hash)
		}
		if _, seen := plan.byHash[file.Hash]; !seen {
			plan.byHash[file.Hash] = file
			plan.hashes = append(plan.hashes, file.Hash)
		}
	}
	return plan, nil
}

// Hashes returns the distinct fingerprints across all files.
func (p *Plan) Hashes() []string {
	return p.hashes
}

// FileFor returns the file whose content backs the given fingerprint.
func (p *Plan) FileFor(hash string) (*pagestypes.DeploymentFile, bool) {
	file, ok := p.byHash[hash]
	return file, ok
}

// Manifest maps each deploy path, prefixed with a slash, to its
// fingerprint. When two input files share a name the later one wins,
// matching map semantics; callers are expected to pass unique names.
func (p *Plan) Manifest() map[string]string {
	manifest := make(map[string]string, len(p.files))
	for _, file := range p.files {
		manifest["/"+file.Name] = file.Hash
	}
	return manifest
}

// FileHashes maps every input file name to its fingerprint, for the
// deployment result.
func (p *Plan) FileHashes() map[string]string {
	hashes := make(map[string]string, len(p.files))
	for _, file := range p.files {
		hashes[file.Name] = file.Hash
	}
	return hashes
}
