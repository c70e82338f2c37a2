// Package fetch provides page fetchers for the monitoring loop.
//
// A fetcher retrieves raw page content plus a title hint for a URL. Two
// implementations are provided: a plain pooled HTTP client, and a headless
// Chrome fetcher for pages behind anti-bot protection. The monitoring loop
// depends only on the [Fetcher] interface, so implementations can be
// substituted per deployment.
package fetch

import (
	"context"
	"strings"
)

// Result holds the outcome of fetching a single page.
type Result struct {
	// Content is the raw page content. Case normalization is the
	// consumer's responsibility.
	Content string

	// Title is the page title hint, when the fetcher can determine one.
	Title string

	// Blocked reports that the fetched page is an anti-automation
	// challenge rather than real content. Consumers should skip
	// classification for this fetch; the detection heuristic is
	// fetcher-specific.
	Blocked bool
}

// Fetcher retrieves status page content.
//
// Fetch returns the page content and metadata, or an error if the page
// could not be retrieved. Close releases any resources held by the
// fetcher (connection pools, browser processes) and must be safe to call
// exactly once after the last Fetch.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Result, error)
	Close() error
}

// Challenge interstitial title fragments. "just a moment" is Cloudflare's
// JavaScript challenge page; "attention required" its block page.
var challengeTitles = []string{
	"just a moment",
	"attention required",
}

// challengeTitle reports whether a page title looks like an anti-bot
// challenge interstitial.
func challengeTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, fragment := range challengeTitles {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}
