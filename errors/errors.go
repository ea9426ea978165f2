// Package errors provides error types and handling for deployment operations.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error represents a deployment operation error with context about what failed.
// It wraps the underlying error with additional context for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "deploy", "check-missing", "upload")
	Op string

	// Project is the project name (if applicable)
	Project string

	// Path is the deploy-relative file path (if applicable)
	Path string

	// Hash is the asset fingerprint involved (if applicable)
	Hash string

	// Err is the underlying error
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	switch {
	case e.Path != "":
		return fmt.Sprintf("pages.%s %s: %v", e.Op, e.Path, e.Err)
	case e.Hash != "":
		return fmt.Sprintf("pages.%s asset %s: %v", e.Op, e.Hash, e.Err)
	case e.Project != "":
		return fmt.Sprintf("pages.%s project %s: %v", e.Op, e.Project, e.Err)
	}
	return fmt.Sprintf("pages.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithProject adds project context to an existing error.
func (e *Error) WithProject(project string) *Error {
	e.Project = project
	return e
}

// WithPath adds file path context to an existing error.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithHash adds asset fingerprint context to an existing error.
func (e *Error) WithHash(hash string) *Error {
	e.Hash = hash
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// APIMessage is one structured error returned by the remote API.
type APIMessage struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// APIError is a well-formed failure envelope from the remote API
// (success:false). It carries the full error list from the response.
// API errors are terminal: the request reached the service and was
// rejected, so retrying would not help.
type APIError struct {
	Messages []APIMessage
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return "api: request failed"
	}
	parts := make([]string, 0, len(e.Messages))
	for _, m := range e.Messages {
		parts = append(parts, fmt.Sprintf("%d: %s", m.Code, m.Message))
	}
	return "api: " + strings.Join(parts, "; ")
}

// Sentinel errors for common deployment failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("pages: invalid input")

	// ErrUnexpectedResponse indicates the remote returned a non-JSON body,
	// usually an HTML error page from the edge layer
	ErrUnexpectedResponse = errors.New("pages: unexpected response")

	// ErrInvalidToken indicates the upload credential could not be decoded
	ErrInvalidToken = errors.New("pages: invalid upload token")

	// ErrMissingContent indicates a file has neither content nor a content producer
	ErrMissingContent = errors.New("pages: missing file content")

	// ErrNoFileForHash indicates the upload scheduler was handed a fingerprint
	// that no input file produced; this is an internal consistency failure
	ErrNoFileForHash = errors.New("pages: no file for fingerprint")
)

// IsInvalidInput checks if an error indicates invalid input.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnexpectedResponse checks if an error indicates a non-JSON remote response.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsUnexpectedResponse(err error) bool {
	return errors.Is(err, ErrUnexpectedResponse)
}

// IsAPIError checks if an error is a structured failure from the remote API
// and returns the typed error when it is.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
