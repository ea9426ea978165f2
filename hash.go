package pages

import "github.com/webfoundry/pages/internal/fingerprint"

// Fingerprint returns the content-addressed identifier the platform uses to
// deduplicate assets: BLAKE3 over the base64-encoded content and the file
// extension, hex-encoded and truncated to 32 characters.
//
// Callers deploying very large files can compute fingerprints up front and
// set them on the DeploymentFile records, so deployment only materializes
// the content of files the remote is actually missing.
func Fingerprint(content []byte, filename string) string {
	return fingerprint.Sum(content, filename)
}
