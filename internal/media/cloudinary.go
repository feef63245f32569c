package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const cloudinaryBaseURL = "https://api.cloudinary.com/v1_1"

// Cloudinary uploads through an unsigned upload preset
type Cloudinary struct {
	cloudName    string
	uploadPreset string
	baseURL      string
	httpClient   *http.Client
}

func NewCloudinary(cloudName, uploadPreset string, timeout time.Duration) *Cloudinary {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Cloudinary{
		cloudName:    cloudName,
		uploadPreset: uploadPreset,
		baseURL:      cloudinaryBaseURL,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// SetBaseURL points the client at another API host
func (c *Cloudinary) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Upload posts the file as multipart form data and returns secure_url
func (c *Cloudinary) Upload(ctx context.Context, file File) (string, error) {
	kind, _, err := KindOf(file.Data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", file.Name, err)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", file.Name)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(file.Data); err != nil {
		return "", err
	}
	if err := w.WriteField("upload_preset", c.uploadPreset); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/%s/%s/upload", c.baseURL, c.cloudName, kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrUploadFailed, err)
	}

	var result uploadResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("%w: status %d", ErrUploadFailed, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK || result.SecureURL == "" {
		msg := http.StatusText(resp.StatusCode)
		if result.Error != nil && result.Error.Message != "" {
			msg = result.Error.Message
		}
		return "", fmt.Errorf("%w: %s", ErrUploadFailed, msg)
	}
	return result.SecureURL, nil
}
