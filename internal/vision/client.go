// Package vision provides the OCR backend client. The backend is an
// opaque text-extraction oracle: it takes an image and returns a raw text
// blob plus geometric paragraph/word annotations. All interpretation of
// that output lives in the ocr package.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// BoundingBox is the pixel rectangle a token was read from.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Word is one OCR'd token with its confidence and geometry.
type Word struct {
	Text        string       `json:"text"`
	Confidence  float64      `json:"confidence"`
	BoundingBox *BoundingBox `json:"boundingBox,omitempty"`
}

// Paragraph groups words the backend judged to belong together spatially.
type Paragraph struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Words      []Word  `json:"words"`
	Tokens     []Word  `json:"tokens,omitempty"`
}

// Result is the full extraction for one image.
type Result struct {
	Text       string      `json:"text"`
	Paragraphs []Paragraph `json:"paragraphs"`
}

// APIError represents an OCR backend error with status code and body.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vision API error %d: %s", e.Status, e.Body)
}

// Client defines the single operation the upload pipeline needs.
type Client interface {
	ExtractText(ctx context.Context, image []byte, mimeType string) (*Result, error)
}

// HTTPClient talks to the OCR backend over REST.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewHTTPClient creates a vision client. OCR calls are slow relative to
// market data calls, so the default timeout is generous.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: 60 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// WithHTTPClient allows overriding the HTTP client (tests, custom transport).
func (c *HTTPClient) WithHTTPClient(hc *http.Client) *HTTPClient {
	if hc != nil {
		c.client = hc
	}
	return c
}

// Ensure HTTPClient implements Client at compile time.
var _ Client = (*HTTPClient)(nil)

// ExtractText sends one image for OCR and returns the annotated result.
// Failures here are collaborator failures and propagate as errors; the
// parsing core downstream never throws.
func (c *HTTPClient) ExtractText(ctx context.Context, image []byte, mimeType string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/extract", bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out Result
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &out, nil
}
