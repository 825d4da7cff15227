package ingest

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OCRClient is the swappable text-extraction backend. Implementations take
// encoded image bytes and return recognized text lines and the detected
// document orientation.
type OCRClient interface {
	// Recognize runs OCR and returns recognized text lines in reading order.
	Recognize(ctx context.Context, image []byte) ([]string, error)

	// Orientation classifies document rotation and returns one of 0, 90,
	// 180, 270 degrees.
	Orientation(ctx context.Context, image []byte) (int, error)
}

// ServiceClient talks to an OCR/orientation HTTP service (e.g. a PaddleOCR
// serving deployment) exposing /ocr and /orientation endpoints.
type ServiceClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewServiceClient creates a new OCR service client.
func NewServiceClient(baseURL string, timeout time.Duration) *ServiceClient {
	if timeout == 0 {
		timeout = time.Minute
	}
	return &ServiceClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type ocrRequest struct {
	Image string `json:"image"` // base64-encoded
}

type ocrResponse struct {
	Lines []string `json:"lines"`
}

type orientationResponse struct {
	Angle int `json:"angle"`
}

type serviceError struct {
	Error string `json:"error"`
}

// Recognize posts the image to /ocr and returns the recognized lines.
func (c *ServiceClient) Recognize(ctx context.Context, image []byte) ([]string, error) {
	var resp ocrResponse
	if err := c.post(ctx, "/ocr", image, &resp); err != nil {
		return nil, err
	}
	return resp.Lines, nil
}

// Orientation posts the image to /orientation and returns the detected angle.
func (c *ServiceClient) Orientation(ctx context.Context, image []byte) (int, error) {
	var resp orientationResponse
	if err := c.post(ctx, "/orientation", image, &resp); err != nil {
		return 0, err
	}
	switch resp.Angle {
	case 0, 90, 180, 270:
		return resp.Angle, nil
	}
	return 0, fmt.Errorf("orientation service returned invalid angle %d", resp.Angle)
}

func (c *ServiceClient) post(ctx context.Context, path string, image []byte, out any) error {
	payload, err := json.Marshal(ocrRequest{
		Image: base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ocr service request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr serviceError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("ocr service error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("ocr service error: status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
