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

const slackTimeout = 10 * time.Second

// Slack sends alerts to a Slack channel via an incoming webhook.
type Slack struct {
	WebhookURL string

	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Name implements [Notifier].
func (s *Slack) Name() string { return "slack" }

// Validate implements [Notifier].
func (s *Slack) Validate() error {
	if s.WebhookURL == "" {
		return errors.New("slack: webhook_url is required")
	}
	return nil
}

// Send implements [Notifier]. The message is a single formatted text
// block with the service name, transition, and a link to the status page.
func (s *Slack) Send(ctx context.Context, event Event) error {
	text := fmt.Sprintf("🚨 *Monitor Alert: %s*\n*Status:* %s → %s\n<%s|View Status Page>",
		event.Target, humanStatus(event.Previous), humanStatus(event.New), event.URL)

	payload := map[string]string{"text": text}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("slack: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("slack: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("slack: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (s *Slack) httpClient() *http.Client {
	if s.HTTPClient != nil {
		return s.HTTPClient
	}
	return &http.Client{Timeout: slackTimeout}
}
