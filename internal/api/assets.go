package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/webfoundry/pages/errors"
)

// hashSet is the JSON body shared by the check-missing and upsert endpoints.
type hashSet struct {
	Hashes []string `json:"hashes"`
}

// blobPayload is one entry of the upload endpoint's JSON array body.
type blobPayload struct {
	Key      string       `json:"key"`
	Value    string       `json:"value"`
	Metadata blobMetadata `json:"metadata"`
	Base64   bool         `json:"base64"`
}

type blobMetadata struct {
	ContentType string `json:"contentType"`
}

// UploadToken fetches the signed upload credential for a project. The
// credential authenticates all asset-index calls; the account API token
// only authenticates this endpoint and deployment creation.
func (c *Client) UploadToken(ctx context.Context, apiToken, accountID, project string) (string, error) {
	var out struct {
		JWT string `json:"jwt"`
	}
	path := fmt.Sprintf("/accounts/%s/pages/projects/%s/upload-token", accountID, project)
	if err := c.do(ctx, request{path: path, auth: apiToken}, &out); err != nil {
		return "", errors.NewError("upload-token", err).WithProject(project)
	}
	return out.JWT, nil
}

// MissingHashes asks the remote asset index which of the given fingerprints
// it does not yet store and returns that subset.
func (c *Client) MissingHashes(ctx context.Context, uploadToken string, hashes []string) ([]string, error) {
	body, err := json.Marshal(hashSet{Hashes: hashes})
	if err != nil {
		return nil, errors.NewError("check-missing", err)
	}
	var missing []string
	err = c.do(ctx, request{path: "/pages/assets/check-missing", auth: uploadToken, body: body}, &missing)
	if err != nil {
		return nil, errors.NewError("check-missing", err)
	}
	return missing, nil
}

// UploadBlob stores one base64-encoded blob in the remote asset index,
// keyed by its fingerprint.
func (c *Client) UploadBlob(ctx context.Context, uploadToken, key, value, contentType string) error {
	body, err := json.Marshal([]blobPayload{{
		Key:      key,
		Value:    value,
		Metadata: blobMetadata{ContentType: contentType},
		Base64:   true,
	}})
	if err != nil {
		return errors.NewError("upload", err).WithHash(key)
	}
	err = c.do(ctx, request{path: "/pages/assets/upload", auth: uploadToken, body: body}, nil)
	if err != nil {
		return errors.NewError("upload", err).WithHash(key)
	}
	return nil
}

// UpsertHashes records that the full fingerprint set is now associated with
// the deployment about to be created. Called once after all missing blobs
// are uploaded.
func (c *Client) UpsertHashes(ctx context.Context, uploadToken string, hashes []string) error {
	body, err := json.Marshal(hashSet{Hashes: hashes})
	if err != nil {
		return errors.NewError("upsert-hashes", err)
	}
	err = c.do(ctx, request{path: "/pages/assets/upsert-hashes", auth: uploadToken, body: body}, nil)
	if err != nil {
		return errors.NewError("upsert-hashes", err)
	}
	return nil
}
