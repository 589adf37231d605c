package classify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	zeroShotPath   = "/v1/classify/zero-shot"
	imagePath      = "/v1/classify/image"
	transcribePath = "/v1/transcribe"
	healthPath     = "/health"
)

// InferenceClient talks to the model inference service over HTTP.
type InferenceClient struct {
	baseURL string
	client  *http.Client

	mu        sync.RWMutex
	available bool
}

// NewInferenceClient creates a client for the inference service. The client
// reports unavailable until the first successful Probe.
func NewInferenceClient(baseURL string, timeout time.Duration) *InferenceClient {
	return &InferenceClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Probe checks the inference service health endpoint and records the result.
func (c *InferenceClient) Probe(ctx context.Context) bool {
	ok := false
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err == nil {
		resp, err := c.client.Do(req)
		if err == nil {
			ok = resp.StatusCode == http.StatusOK
			resp.Body.Close()
		}
	}

	c.mu.Lock()
	c.available = ok
	c.mu.Unlock()
	return ok
}

// Available reports the result of the last Probe.
func (c *InferenceClient) Available() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.available
}

type zeroShotRequest struct {
	Text   string   `json:"text"`
	Labels []string `json:"labels"`
}

type imageRequest struct {
	Image  string   `json:"image"`
	Labels []string `json:"labels"`
}

type transcribeRequest struct {
	Audio      string `json:"audio"`
	SampleRate int    `json:"sample_rate"`
}

type scoresResponse struct {
	Scores []Score `json:"scores"`
}

type transcribeResponse struct {
	Text string `json:"text"`
}

// ClassifyText runs zero-shot text classification on the inference service.
func (c *InferenceClient) ClassifyText(ctx context.Context, text string, labels []string) ([]Score, error) {
	var resp scoresResponse
	if err := c.post(ctx, zeroShotPath, zeroShotRequest{Text: text, Labels: labels}, &resp); err != nil {
		return nil, err
	}
	return resp.Scores, nil
}

// ClassifyImage scores image bytes against the labels on the inference service.
func (c *InferenceClient) ClassifyImage(ctx context.Context, image []byte, labels []string) ([]Score, error) {
	req := imageRequest{
		Image:  base64.StdEncoding.EncodeToString(image),
		Labels: labels,
	}
	var resp scoresResponse
	if err := c.post(ctx, imagePath, req, &resp); err != nil {
		return nil, err
	}
	return resp.Scores, nil
}

// Transcribe converts audio bytes to text on the inference service.
func (c *InferenceClient) Transcribe(ctx context.Context, audio []byte, sampleRate int) (string, error) {
	req := transcribeRequest{
		Audio:      base64.StdEncoding.EncodeToString(audio),
		SampleRate: sampleRate,
	}
	var resp transcribeResponse
	if err := c.post(ctx, transcribePath, req, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (c *InferenceClient) post(ctx context.Context, path string, payload, out any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
