package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/webfoundry/pages/errors"
	"github.com/webfoundry/pages/pagestypes"
)

func TestValidateCredentials(t *testing.T) {
	assert.NoError(t, ValidateCredentials("acct", "proj", "token"))
	assert.ErrorIs(t, ValidateCredentials("", "proj", "token"), errors.ErrInvalidInput)
	assert.ErrorIs(t, ValidateCredentials("acct", "", "token"), errors.ErrInvalidInput)
	assert.ErrorIs(t, ValidateCredentials("acct", "proj", ""), errors.ErrInvalidInput)
}

func TestValidateFiles(t *testing.T) {
	content := []byte("x")
	producer := func() ([]byte, error) { return content, nil }

	tests := []struct {
		name    string
		files   []*pagestypes.DeploymentFile
		wantErr string
	}{
		{
			name:    "empty list",
			files:   nil,
			wantErr: "no files",
		},
		{
			name:  "valid with content",
			files: []*pagestypes.DeploymentFile{{Name: "index.html", Content: content}},
		},
		{
			name:  "valid with producer",
			files: []*pagestypes.DeploymentFile{{Name: "index.html", ContentFunc: producer}},
		},
		{
			name:  "valid with precomputed hash",
			files: []*pagestypes.DeploymentFile{{Name: "big.bin", Content: content, Hash: strings.Repeat("ab", 16)}},
		},
		{
			name:    "nil entry",
			files:   []*pagestypes.DeploymentFile{nil},
			wantErr: "is nil",
		},
		{
			name:    "empty name",
			files:   []*pagestypes.DeploymentFile{{Content: content}},
			wantErr: "empty name",
		},
		{
			name:    "absolute name",
			files:   []*pagestypes.DeploymentFile{{Name: "/index.html", Content: content}},
			wantErr: "leading slash",
		},
		{
			name:    "no content",
			files:   []*pagestypes.DeploymentFile{{Name: "index.html"}},
			wantErr: "neither content",
		},
		{
			name:    "short hash",
			files:   []*pagestypes.DeploymentFile{{Name: "a.txt", Content: content, Hash: "abcd"}},
			wantErr: "malformed fingerprint",
		},
		{
			name:    "uppercase hash",
			files:   []*pagestypes.DeploymentFile{{Name: "a.txt", Content: content, Hash: strings.Repeat("AB", 16)}},
			wantErr: "malformed fingerprint",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateFiles(tc.files)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, errors.ErrInvalidInput)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
