package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const webhookTimeout = 10 * time.Second

// Webhook sends alerts as JSON to an arbitrary HTTP endpoint.
type Webhook struct {
	URL    string
	Method string

	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Name implements [Notifier].
func (w *Webhook) Name() string { return "webhook" }

// Validate implements [Notifier].
func (w *Webhook) Validate() error {
	if w.URL == "" {
		return errors.New("webhook: url is required")
	}
	return nil
}

// Send implements [Notifier]. The full event is serialized as the request
// body.
func (w *Webhook) Send(ctx context.Context, event Event) error {
	payload := map[string]any{
		"event_id":  event.ID,
		"target":    event.Target,
		"url":       event.URL,
		"previous":  event.Previous,
		"new":       event.New,
		"timestamp": event.At.UTC().Format(time.RFC3339),
	}
	if event.Detail != "" {
		payload["detail"] = event.Detail
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhook: marshal payload: %w", err)
	}

	method := w.Method
	if method == "" {
		method = http.MethodPost
	}

	req, err := http.NewRequestWithContext(ctx, method, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("webhook: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (w *Webhook) httpClient() *http.Client {
	if w.HTTPClient != nil {
		return w.HTTPClient
	}
	return &http.Client{Timeout: webhookTimeout}
}
