// Package webhook notifies the main application when a report has been
// classified. Delivery is best-effort: the classification is already
// persisted by the time a webhook fires, so a failed notification is logged
// and dropped rather than failing the job.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"civic-ml-pipeline/models"
	"civic-ml-pipeline/store"
)

// Notification is the webhook request body.
type Notification struct {
	ReportID       string                        `json:"reportId"`
	Classification models.ClassificationResponse `json:"classification"`
	UpdatedReport  *store.ReportProjection       `json:"updatedReport"`
}

type Notifier struct {
	url    string
	client *http.Client
}

func New(url string, timeout time.Duration) *Notifier {
	return &Notifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Notify posts the notification. Any non-2xx response is an error.
func (n *Notifier) Notify(ctx context.Context, notification Notification) error {
	body, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook error (status %d)", resp.StatusCode)
	}
	return nil
}
