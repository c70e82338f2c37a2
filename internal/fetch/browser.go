package fetch

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	defaultSettleMin = 5 * time.Second
	defaultSettleMax = 8 * time.Second
)

// Browser is a [Fetcher] backed by a headless Chrome instance, for status
// pages behind anti-bot protection that a plain HTTP client cannot load.
//
// One Chrome process is shared across all fetches; each Fetch opens a
// fresh tab. The browser is an exclusively-owned resource: it is launched
// by [NewBrowser] and must be released with [Browser.Close] on every exit
// path.
//
// After navigation the fetcher waits a random, bounded settle delay within
// the configured range. This lets JavaScript finish rendering and avoids a
// fixed polling fingerprint; the delay is always bounded by the range,
// never unbounded.
type Browser struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	settleMin     time.Duration
	settleMax     time.Duration
}

// NewBrowser launches a headless Chrome instance and returns a [Browser]
// fetcher bound to it.
//
// The browser runs headless with a standard desktop viewport and user
// agent, and with sandboxing disabled for container compatibility. Launch
// failure (Chrome not installed, cannot start) is returned as an error;
// callers should treat it as fatal since no fetches can succeed without
// the browser.
//
// A zero settle range defaults to [5s, 8s]. Returns an error if
// settleMin > settleMax or either is negative.
func NewBrowser(ctx context.Context, settleMin, settleMax time.Duration) (*Browser, error) {
	if settleMin == 0 && settleMax == 0 {
		settleMin, settleMax = defaultSettleMin, defaultSettleMax
	}
	if settleMin < 0 || settleMax < 0 || settleMin > settleMax {
		return nil, fmt.Errorf("invalid settle range [%s, %s]", settleMin, settleMax)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(desktopUserAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// start the browser process now so acquisition failure surfaces here
	// rather than on the first fetch
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	return &Browser{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		settleMin:     settleMin,
		settleMax:     settleMax,
	}, nil
}

// Fetch navigates a fresh tab to the URL, waits the settle delay, and
// returns the rendered page content and title.
func (b *Browser) Fetch(ctx context.Context, url string) (Result, error) {
	tabCtx, cancel := chromedp.NewContext(b.browserCtx)
	defer cancel()

	// honor the caller's cancellation alongside the tab lifetime
	if deadline, ok := ctx.Deadline(); ok {
		var tcancel context.CancelFunc
		tabCtx, tcancel = context.WithDeadline(tabCtx, deadline)
		defer tcancel()
	}

	var content, title string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(b.settleDelay()),
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &content, chromedp.ByQuery),
	)
	if err != nil {
		return Result{}, fmt.Errorf("browser fetch failed: %w", err)
	}

	return Result{
		Content: content,
		Title:   title,
		Blocked: challengeTitle(title),
	}, nil
}

// Close tears down the shared browser process and its allocator.
// Safe to call once after the last Fetch.
func (b *Browser) Close() error {
	b.browserCancel()
	b.allocCancel()
	return nil
}

// settleDelay picks a random delay within the configured settle range.
func (b *Browser) settleDelay() time.Duration {
	if b.settleMax <= b.settleMin {
		return b.settleMin
	}
	return b.settleMin + time.Duration(rand.Int63n(int64(b.settleMax-b.settleMin)))
}
