// Package validation provides input validation for deployment operations.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/webfoundry/pages/errors"
	"github.com/webfoundry/pages/pagestypes"
)

// hashPattern matches a well-formed fingerprint: 32 lowercase hex characters.
var hashPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// ValidateCredentials checks the identifiers required for any remote call.
func ValidateCredentials(accountID, project, apiToken string) error {
	if accountID == "" {
		return fmt.Errorf("%w: account ID cannot be empty", errors.ErrInvalidInput)
	}
	if project == "" {
		return fmt.Errorf("%w: project name cannot be empty", errors.ErrInvalidInput)
	}
	if apiToken == "" {
		return fmt.Errorf("%w: API token cannot be empty", errors.ErrInvalidInput)
	}
	return nil
}

// ValidateFiles checks a deployment file list before any hashing or remote
// call happens, so a bad record fails the deployment up front rather than
// mid-upload.
func ValidateFiles(files []*pagestypes.DeploymentFile) error {
	if len(files) == 0 {
		return fmt.Errorf("%w: no files to deploy", errors.ErrInvalidInput)
	}
	for i, file := range files {
		if file == nil {
			return fmt.Errorf("%w: file %d is nil", errors.ErrInvalidInput, i)
		}
		if file.Name == "" {
			return fmt.Errorf("%w: file %d has an empty name", errors.ErrInvalidInput, i)
		}
		if strings.HasPrefix(file.Name, "/") {
			return fmt.Errorf("%w: file %q must be deploy-relative, without a leading slash",
				errors.ErrInvalidInput, file.Name)
		}
		if file.Content == nil && file.ContentFunc == nil {
			return fmt.Errorf("%w: file %q has neither content nor a content producer",
				errors.ErrInvalidInput, file.Name)
		}
		if file.Hash != "" && !hashPattern.MatchString(file.Hash) {
			return fmt.Errorf("%w: file %q has a malformed fingerprint %q",
				errors.ErrInvalidInput, file.Name, file.Hash)
		}
	}
	return nil
}
