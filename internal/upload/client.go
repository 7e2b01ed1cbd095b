// Package upload is the non-socket side-channel for profile images: a
// multipart POST to the backend servlet, keyed by user id.
package upload

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
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	uploadPath = "/UploadProfileImage"
	fieldName  = "profileImage"
)

// Result is the backend's upload response. A false or absent status is a
// failure; the caller keeps the locally chosen image either way.
type Result struct {
	Status          bool   `json:"status"`
	Message         string `json:"message"`
	ProfileImageURL string `json:"profileImageUrl"`
	ImagePath       string `json:"imagePath"`
}

// Client posts profile images to the backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	mountPath  string
	logger     *zap.Logger
}

// New creates an upload client for the backend at baseURL+mountPath.
func New(baseURL, mountPath string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		mountPath:  mountPath,
		logger:     logger,
	}
}

// ProfileImage uploads the file at imagePath for userID. The returned
// Result reports backend acceptance; transport and decode failures come
// back as errors.
func (c *Client) ProfileImage(ctx context.Context, userID int, imagePath string) (*Result, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(fieldName, filepath.Base(imagePath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("copy image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalize form: %w", err)
	}

	url := c.baseURL + c.mountPath + uploadPath + "?userId=" + strconv.Itoa(userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upload: unexpected status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if !result.Status {
		c.logger.Warn("profile image rejected by backend",
			zap.Int("user_id", userID),
			zap.String("message", result.Message))
	}
	return &result, nil
}
