// Package downwatch provides a lightweight monitor for external status
// pages that alerts on operational state transitions.
//
// Downwatch polls a fixed set of status pages (DownDetector-style
// aggregated report pages, or official status pages checked by keyword),
// classifies each page into a small set of discrete statuses, and fires a
// notification through every configured channel exactly once per genuine
// status transition. The first observation of a target establishes its
// baseline and never alarms.
//
// It is designed as an SDK-first library, following functional programming
// principles with immutable types, pure classification functions, and
// composable configuration via the functional options pattern.
//
// # Quick Start
//
// Create targets and run the watcher with graceful shutdown:
//
//	t, _ := downwatch.NewTarget("OpenAI API", "https://status.openai.com/",
//	    downwatch.ModeKeyword,
//	    downwatch.WithKeywords("all systems operational", "operational"),
//	)
//	w, _ := downwatch.New(
//	    downwatch.WithTarget(t),
//	    downwatch.WithSlackWebhook(os.Getenv("SLACK_WEBHOOK_URL")),
//	)
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	w.Run(ctx) // blocks until context is cancelled
//
// # Classification Modes
//
// Each target carries one of two classification modes:
//
//   - [ModeAggregated]: DownDetector-style report pages, classified by
//     indicator phrases in a fixed priority order into [StatusOperational],
//     [StatusPossibleIssues], [StatusOutageDetected], or [StatusUnknown].
//   - [ModeKeyword]: generic status pages, classified by case-insensitive
//     containment of caller-supplied keywords into [StatusOperational] or
//     [StatusPotentialOutage].
//
// # Page Fetchers
//
// How a page is retrieved is a pluggable capability. The default fetcher is
// a plain HTTP client. For pages behind anti-bot protection, a headless
// Chrome fetcher is available via [WithBrowserFetcher]. Custom fetchers can
// be injected with [WithFetcher].
//
// # Architecture
//
// Downwatch consists of several internal packages (under internal/):
//
//   - internal/fetch: page fetchers (HTTP client, headless Chrome)
//   - internal/state: last-status store and transition detection
//   - internal/notify: notification channels (email, Slack, Telegram, webhook)
//
// The internal packages are not part of the public API and may change
// without notice.
package downwatch
