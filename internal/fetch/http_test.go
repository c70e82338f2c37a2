package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTP_Fetch(t *testing.T) {
	const page = `<html><head><title>Service Status</title></head>
<body>Reports indicate no current problems</body></html>`

	var gotUserAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Write([]byte(page))
	}))
	defer srv.Close()

	f := NewHTTP(0)
	defer f.Close()

	result, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if result.Content != page {
		t.Errorf("Content = %q, want full page", result.Content)
	}
	if result.Title != "Service Status" {
		t.Errorf("Title = %q, want %q", result.Title, "Service Status")
	}
	if result.Blocked {
		t.Error("Blocked = true for a normal page")
	}
	if !strings.Contains(gotUserAgent, "Mozilla/5.0") {
		t.Errorf("User-Agent = %q, want a desktop browser string", gotUserAgent)
	}
}

func TestHTTP_FetchChallengePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Just a moment...</title></head><body></body></html>`))
	}))
	defer srv.Close()

	f := NewHTTP(0)
	defer f.Close()

	result, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !result.Blocked {
		t.Error("Blocked = false for a challenge page")
	}
}

func TestHTTP_FetchNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewHTTP(0)
	defer f.Close()

	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Error("Fetch() error = nil, want status error")
	}
}

func TestHTTP_FetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	f := NewHTTP(50 * time.Millisecond)
	defer f.Close()

	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Error("Fetch() error = nil, want timeout")
	}
}

func TestHTTP_FetchMissingTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>no title here</body></html>`))
	}))
	defer srv.Close()

	f := NewHTTP(0)
	defer f.Close()

	result, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if result.Title != "" {
		t.Errorf("Title = %q, want empty", result.Title)
	}
	if result.Blocked {
		t.Error("Blocked = true without a title")
	}
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"simple", `<title>Hello</title>`, "Hello"},
		{"attributes", `<title data-x="1">Hello</title>`, "Hello"},
		{"mixed case", `<TITLE>Hello</TITLE>`, "Hello"},
		{"multiline", "<title>\nHello\n</title>", "\nHello\n"},
		{"absent", `<h1>Hello</h1>`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractTitle([]byte(tt.body)); got != tt.want {
				t.Errorf("extractTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
