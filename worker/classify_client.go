package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"civic-ml-pipeline/models"
)

// ClassifyClient calls the classification API over HTTP. The worker goes
// through the service boundary instead of the classifier directly so the
// API and the worker can be scaled independently.
type ClassifyClient struct {
	url    string
	client *http.Client
}

func NewClassifyClient(baseURL string, timeout time.Duration) *ClassifyClient {
	return &ClassifyClient{
		url:    strings.TrimRight(baseURL, "/") + "/api/v3/classify",
		client: &http.Client{Timeout: timeout},
	}
}

// Classify posts the request to the classify endpoint.
func (c *ClassifyClient) Classify(ctx context.Context, request models.ClassificationRequest) (models.ClassificationResponse, error) {
	var result models.ClassificationResponse

	body, err := json.Marshal(request)
	if err != nil {
		return result, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(body))
	if err != nil {
		return result, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return result, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("classify error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, &result); err != nil {
		return result, fmt.Errorf("failed to parse response: %w", err)
	}
	return result, nil
}
