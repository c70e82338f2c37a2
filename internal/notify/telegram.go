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

const telegramTimeout = 10 * time.Second

// Telegram sends alerts to a chat via the Telegram Bot API.
type Telegram struct {
	BotToken string
	ChatID   string

	// BaseURL overrides the Bot API base URL, mainly for tests.
	// Empty means https://api.telegram.org.
	BaseURL string

	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Name implements [Notifier].
func (t *Telegram) Name() string { return "telegram" }

// Validate implements [Notifier].
func (t *Telegram) Validate() error {
	if t.BotToken == "" {
		return errors.New("telegram: bot_token is required")
	}
	if t.ChatID == "" {
		return errors.New("telegram: chat_id is required")
	}
	return nil
}

// Send implements [Notifier].
func (t *Telegram) Send(ctx context.Context, event Event) error {
	text := fmt.Sprintf("🚨 <b>%s</b>\nStatus: <b>%s → %s</b>\nTime: %s\n%s",
		event.Target,
		humanStatus(event.Previous),
		humanStatus(event.New),
		event.At.UTC().Format("2006-01-02 15:04:05 UTC"),
		event.URL,
	)

	payload := map[string]any{
		"chat_id":    t.ChatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: marshal payload: %w", err)
	}

	base := t.BaseURL
	if base == "" {
		base = "https://api.telegram.org"
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", base, t.BotToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (t *Telegram) httpClient() *http.Client {
	if t.HTTPClient != nil {
		return t.HTTPClient
	}
	return &http.Client{Timeout: telegramTimeout}
}
