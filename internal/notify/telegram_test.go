package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestTelegram_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tg      Telegram
		wantErr bool
	}{
		{name: "valid", tg: Telegram{BotToken: "123:abc", ChatID: "-100"}},
		{name: "missing token", tg: Telegram{ChatID: "-100"}, wantErr: true},
		{name: "missing chat id", tg: Telegram{BotToken: "123:abc"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTelegram_Send(t *testing.T) {
	var (
		gotPath    string
		gotPayload map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotPayload)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tg := &Telegram{
		BotToken:   "123:abc",
		ChatID:     "-100",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	}
	err := tg.Send(context.Background(), Event{
		Target:   "Service X",
		URL:      "https://example.com/status",
		Previous: "operational",
		New:      "possible_issues",
		At:       time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if gotPath != "/bot123:abc/sendMessage" {
		t.Errorf("request path = %q, want /bot123:abc/sendMessage", gotPath)
	}
	if gotPayload["chat_id"] != "-100" {
		t.Errorf("chat_id = %v, want -100", gotPayload["chat_id"])
	}
	if gotPayload["parse_mode"] != "HTML" {
		t.Errorf("parse_mode = %v, want HTML", gotPayload["parse_mode"])
	}
	text, _ := gotPayload["text"].(string)
	for _, want := range []string{"Service X", "OPERATIONAL", "POSSIBLE ISSUES", "2026-08-30 12:00:00 UTC"} {
		if !strings.Contains(text, want) {
			t.Errorf("message missing %q:\n%s", want, text)
		}
	}
}

func TestTelegram_SendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	tg := &Telegram{BotToken: "bad", ChatID: "-100", BaseURL: srv.URL, HTTPClient: srv.Client()}
	if err := tg.Send(context.Background(), Event{Target: "X"}); err == nil {
		t.Error("Send() error = nil, want status error")
	}
}
