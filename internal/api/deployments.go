package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"

	"github.com/webfoundry/pages/errors"
)

// DeploymentForm carries everything submitted to finalize a deployment:
// the manifest plus optional source metadata and special-file contents.
// Empty fields are omitted from the form.
type DeploymentForm struct {
	// Manifest maps each deploy path (with leading slash) to its fingerprint
	Manifest map[string]string

	Branch        string
	CommitMessage string
	CommitHash    string

	// Headers, Redirects and WorkerScript are the contents of the
	// platform's special files, attached as file parts when non-empty
	Headers      string
	Redirects    string
	WorkerScript string
}

// Deployment is the deployment object returned by the remote on creation.
type Deployment struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateDeployment submits the manifest and metadata as a multipart form
// and returns the created deployment. The form body is built once so retry
// attempts replay identical bytes.
func (c *Client) CreateDeployment(
	ctx context.Context,
	apiToken, accountID, project string,
	form DeploymentForm,
) (*Deployment, error) {
	body, contentType, err := encodeDeploymentForm(form)
	if err != nil {
		return nil, errors.NewError("create-deployment", err).WithProject(project)
	}

	var out Deployment
	path := fmt.Sprintf("/accounts/%s/pages/projects/%s/deployments", accountID, project)
	err = c.do(ctx, request{path: path, auth: apiToken, body: body, contentType: contentType}, &out)
	if err != nil {
		return nil, errors.NewError("create-deployment", err).WithProject(project)
	}
	return &out, nil
}

func encodeDeploymentForm(form DeploymentForm) (body []byte, contentType string, err error) {
	manifest, err := json.Marshal(form.Manifest)
	if err != nil {
		return nil, "", fmt.Errorf("encoding manifest: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("manifest", string(manifest)); err != nil {
		return nil, "", fmt.Errorf("writing manifest field: %w", err)
	}
	fields := []struct{ name, value string }{
		{"branch", form.Branch},
		{"commit_message", form.CommitMessage},
		{"commit_hash", form.CommitHash},
	}
	for _, field := range fields {
		if field.value == "" {
			continue
		}
		if err := writer.WriteField(field.name, field.value); err != nil {
			return nil, "", fmt.Errorf("writing %s field: %w", field.name, err)
		}
	}
	files := []struct{ name, content string }{
		{"_headers", form.Headers},
		{"_redirects", form.Redirects},
		{"_worker.js", form.WorkerScript},
	}
	for _, file := range files {
		if file.content == "" {
			continue
		}
		part, err := writer.CreateFormFile(file.name, file.name)
		if err != nil {
			return nil, "", fmt.Errorf("creating %s part: %w", file.name, err)
		}
		if _, err := part.Write([]byte(file.content)); err != nil {
			return nil, "", fmt.Errorf("writing %s part: %w", file.name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("finalizing form: %w", err)
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}
