// Package fingerprint computes the content-addressed identifiers used to
// deduplicate assets against the remote store.
//
// A fingerprint is derived from the base64 encoding of the content followed
// by the file's extension, hashed with BLAKE3 and truncated to 32 hex
// characters. Two files with identical bytes and identical extensions share
// a fingerprint regardless of their names or directories.
package fingerprint

import (
	"encoding/base64"
	"encoding/hex"
	"path"
	"strings"

	"github.com/zeebo/blake3"
)

// HexLength is the length of a fingerprint in hex characters (128 bits).
const HexLength = 32

// Sum returns the fingerprint for the given content and filename.
// It is a total function: any byte sequence and any filename hash cleanly.
func Sum(content []byte, filename string) string {
	return SumEncoded(base64.StdEncoding.EncodeToString(content), filename)
}

// SumEncoded is Sum for content that is already base64-encoded. The
// deployment pipeline caches each file's encoding and uses this to avoid
// encoding twice.
func SumEncoded(encoded, filename string) string {
	hasher := blake3.New()
	_, _ = hasher.WriteString(encoded)
	_, _ = hasher.WriteString(Extension(filename))
	digest := hasher.Sum(nil)
	return hex.EncodeToString(digest)[:HexLength]
}

// Extension returns the filename's extension without the leading dot, or ""
// when there is none. A dot leading the base name does not count: dotfiles
// like ".env" have no extension. Case is preserved as given.
func Extension(filename string) string {
	base := path.Base(filename)
	i := strings.LastIndex(base, ".")
	if i <= 0 {
		return ""
	}
	return base[i+1:]
}
