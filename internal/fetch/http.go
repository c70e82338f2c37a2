package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
)

const maxResponseBodySize = 1 << 20 // 1MB

// connection pooling limits to prevent resource exhaustion when polling many targets
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second
)

const defaultRequestTimeout = 30 * time.Second

// desktopUserAgent is sent with every request so status pages serve the
// same markup they serve to browsers.
const desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"

var titlePattern = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

// HTTP is a [Fetcher] backed by a plain pooled HTTP client.
//
// HTTP is suitable for status pages without anti-bot protection. Response
// bodies are limited to 1MB and timeouts are applied per request via
// context rather than a global client timeout.
type HTTP struct {
	client  *http.Client
	timeout time.Duration
}

// NewHTTP creates an HTTP [Fetcher].
//
// The client is configured with connection pooling limits to prevent
// resource exhaustion when polling many targets. A timeout of zero
// defaults to 30 seconds per request.
func NewHTTP(timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &HTTP{
		timeout: timeout,
		client: &http.Client{
			// no default timeout - per-request timeouts via context
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
	}
}

// Fetch retrieves a page over HTTP.
//
// The page title is extracted from the body for the challenge-page
// heuristic. Non-2xx responses are errors: a status page that cannot be
// served is indistinguishable from an unreachable one for monitoring
// purposes.
func (h *HTTP) Fetch(ctx context.Context, url string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", desktopUserAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return Result{}, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	title := extractTitle(body)
	return Result{
		Content: string(body),
		Title:   title,
		Blocked: challengeTitle(title),
	}, nil
}

// Close closes all idle connections in the client's connection pool.
// Safe to call multiple times.
func (h *HTTP) Close() error {
	if h == nil || h.client == nil {
		return nil
	}
	if transport, ok := h.client.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
	return nil
}

// extractTitle pulls the first <title> element out of an HTML body.
// Returns empty string when no title is present.
func extractTitle(body []byte) string {
	matches := titlePattern.FindSubmatch(body)
	if len(matches) < 2 {
		return ""
	}
	return string(matches[1])
}
