package support

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-logr/logr"
	"github.com/go-resty/resty/v2"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
)

// DefaultUploadBase is the Redis support file drop, a files.com-style API.
const DefaultUploadBase = "https://redis-enterprise.app.files.com/api/rest/v1"

// uploadTimeout bounds the whole transfer; bundles can be large.
const uploadTimeout = 10 * time.Minute

// Uploader ships bundles to the support file drop. The flow is three-step:
// begin an upload to get a storage URI, PUT the bytes there, then mark the
// upload finished.
type Uploader struct {
	api *resty.Client
	// storage carries no credentials: the storage URI is pre-signed and
	// lives on a different host than the API.
	storage *resty.Client
	log     logr.Logger
}

// NewUploader builds an uploader against base authenticated with apiKey.
func NewUploader(base, apiKey string, log logr.Logger) *Uploader {
	if base == "" {
		base = DefaultUploadBase
	}
	api := resty.New().
		SetBaseURL(base).
		SetHeader("X-FilesAPI-Key", apiKey).
		SetHeader("Accept", "application/json").
		SetTimeout(uploadTimeout)
	storage := resty.New().SetTimeout(uploadTimeout)
	return &Uploader{api: api, storage: storage, log: log}
}

// UploadReport is the rendered outcome of an upload.
type UploadReport struct {
	RemotePath string `json:"remote_path"`
	SizeBytes  int64  `json:"size_bytes"`
	Size       string `json:"size"`
}

// UploadFile reads path and uploads it under its base name.
func (u *Uploader) UploadFile(ctx context.Context, path string) (*UploadReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errdefs.IOWrap(err, "reading %s", path)
	}
	return u.Upload(ctx, filepath.Base(path), data)
}

// Upload ships data under remotePath.
func (u *Uploader) Upload(ctx context.Context, remotePath string, data []byte) (*UploadReport, error) {
	filePath := "/files/" + url.PathEscape(remotePath)

	var begin struct {
		Ref       string `json:"ref"`
		UploadURI string `json:"upload_uri"`
	}
	resp, err := u.api.R().
		SetContext(ctx).
		SetBody(map[string]any{"action": "put"}).
		SetResult(&begin).
		Post(filePath)
	if err != nil {
		return nil, errdefs.Transportf("starting upload: %v", err)
	}
	if resp.IsError() {
		return nil, errdefs.API(resp.StatusCode(), string(resp.Body()))
	}
	if begin.UploadURI == "" {
		return nil, errdefs.Validationf("upload service returned no storage URI for %s", remotePath)
	}
	u.log.V(1).Info("upload started", "remote", remotePath, "bytes", len(data))

	put, err := u.storage.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(data).
		Put(begin.UploadURI)
	if err != nil {
		return nil, errdefs.Transportf("uploading bytes: %v", err)
	}
	if put.IsError() {
		return nil, errdefs.API(put.StatusCode(), string(put.Body()))
	}

	end, err := u.api.R().
		SetContext(ctx).
		SetBody(map[string]any{"action": "end", "ref": begin.Ref}).
		Post(filePath)
	if err != nil {
		return nil, errdefs.Transportf("finishing upload: %v", err)
	}
	if end.IsError() {
		return nil, errdefs.API(end.StatusCode(), string(end.Body()))
	}

	return &UploadReport{
		RemotePath: remotePath,
		SizeBytes:  int64(len(data)),
		Size:       humanize.Bytes(uint64(len(data))),
	}, nil
}

// keyHint names where an upload key can come from, for error messages.
func keyHint(profile string) string {
	if profile == "" {
		return "set files_api_key in the config or use 'redisctl files-key set'"
	}
	return fmt.Sprintf("set files_api_key on profile %q or globally with 'redisctl files-key set'", profile)
}

// MissingKeyError builds the credential error for an upload without a key.
func MissingKeyError(profile string) error {
	return errdefs.Credentialf("no files.com API key configured; %s", keyHint(profile))
}
