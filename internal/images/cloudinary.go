// Package images uploads product and article images to Cloudinary using the
// unsigned upload flow the admin screens rely on.
package images

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// Uploader posts files to a Cloudinary cloud with a fixed unsigned preset.
type Uploader struct {
	CloudName    string
	UploadPreset string

	// BaseURL overrides the Cloudinary API host, for tests.
	BaseURL string

	hc *http.Client
}

// New creates an uploader for the given cloud and preset.
func New(cloudName, uploadPreset string) *Uploader {
	return &Uploader{
		CloudName:    cloudName,
		UploadPreset: uploadPreset,
		hc:           &http.Client{Timeout: 60 * time.Second},
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// UploadFile uploads a local image file and returns the hosted secure URL.
func (u *Uploader) UploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close() //nolint:errcheck

	return u.Upload(ctx, filepath.Base(path), f)
}

// Upload uploads image content under the given filename.
func (u *Uploader) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("read image content: %w", err)
	}
	if err := mw.WriteField("upload_preset", u.UploadPreset); err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}

	base := u.BaseURL
	if base == "" {
		base = "https://api.cloudinary.com"
	}
	endpoint := fmt.Sprintf("%s/v1_1/%s/image/upload", base, u.CloudName)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	var result uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if resp.StatusCode >= 400 || result.SecureURL == "" {
		msg := "upload rejected"
		if result.Error != nil && result.Error.Message != "" {
			msg = result.Error.Message
		}
		return "", fmt.Errorf("upload image: HTTP %d: %s", resp.StatusCode, msg)
	}

	log.Debug().Str("file", filename).Str("url", result.SecureURL).Msg("image uploaded")

	return result.SecureURL, nil
}
