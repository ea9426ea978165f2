package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "op only",
			err:  NewError("deploy", base),
			want: "pages.deploy: boom",
		},
		{
			name: "with project",
			err:  NewError("deploy", base).WithProject("my-site"),
			want: "pages.deploy project my-site: boom",
		},
		{
			name: "path wins over project",
			err:  NewError("scan", base).WithProject("my-site").WithPath("assets/app.js"),
			want: "pages.scan assets/app.js: boom",
		},
		{
			name: "with hash",
			err:  NewError("upload", base).WithHash("deadbeefdeadbeefdeadbeefdeadbeef"),
			want: "pages.upload asset deadbeefdeadbeefdeadbeefdeadbeef: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	err := NewError("check-missing", ErrUnexpectedResponse).WithProject("my-site")

	assert.True(t, errors.Is(err, ErrUnexpectedResponse))
	assert.True(t, IsUnexpectedResponse(err))
	assert.True(t, IsUnexpectedResponse(fmt.Errorf("outer: %w", err)))
	assert.False(t, IsInvalidInput(err))
}

func TestIsAPIError(t *testing.T) {
	apiErr := &APIError{Messages: []APIMessage{
		{Code: 8000000, Message: "project not found"},
		{Code: 8000001, Message: "and something else"},
	}}
	wrapped := NewError("deploy", apiErr).WithProject("my-site")

	got, ok := IsAPIError(wrapped)
	require.True(t, ok)
	assert.Equal(t, apiErr, got)
	assert.Equal(t, "api: 8000000: project not found; 8000001: and something else", apiErr.Error())

	_, ok = IsAPIError(errors.New("plain"))
	assert.False(t, ok)

	assert.Equal(t, "api: request failed", (&APIError{}).Error())
}
