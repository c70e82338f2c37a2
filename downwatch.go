package downwatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/downwatch/internal/fetch"
	"github.com/jpalmerr/downwatch/internal/notify"
	"github.com/jpalmerr/downwatch/internal/state"
)

const (
	defaultCheckDelay = 10 * time.Second
	defaultLoopDelay  = 60 * time.Second
)

// Page is the content returned by a [Fetcher] for one URL.
type Page struct {
	// Content is the raw page content. The watcher lower-cases it before
	// classification.
	Content string

	// Title is the page title hint, when the fetcher can determine one.
	Title string

	// Blocked reports that the page is an anti-automation challenge
	// rather than real content. The watcher skips classification for
	// blocked pages; the target's stored status is untouched.
	Blocked bool
}

// Fetcher retrieves status page content for the watcher.
//
// How a page is fetched is a pluggable capability: the built-in
// implementations are a plain HTTP client ([WithHTTPFetcher]) and a
// headless Chrome session ([WithBrowserFetcher]); custom implementations
// can be injected with [WithFetcher]. The watcher relies on the fetcher's
// own timeout to bound a single fetch.
type Fetcher interface {
	// Fetch retrieves the page at url. Any error is treated as a
	// per-target skip for the current cycle.
	Fetch(ctx context.Context, url string) (Page, error)

	// Close releases the fetch capability. Called exactly once when
	// [Watcher.Run] exits, on every exit path.
	Close() error
}

// Watcher is the main orchestrator for status page monitoring.
//
// Watcher polls every configured target on a fixed cadence, classifies
// each page into a [Status], detects transitions against the last stored
// status, and dispatches an [Event] to all configured channels when a
// transition occurs. It is created with [New] and started with
// [Watcher.Run].
//
// The typical lifecycle is:
//
//	w, err := downwatch.New(downwatch.WithTarget(t))
//	if err != nil {
//	    slog.Error("failed to create watcher", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	w.Run(ctx) // blocks until context cancelled
type Watcher struct {
	targets        []Target
	checkDelay     time.Duration
	loopDelay      time.Duration
	checkJitter    time.Duration
	logger         *slog.Logger
	fetcher        Fetcher
	fetcherFactory func(context.Context) (Fetcher, error)
	dispatcher     *notify.Dispatcher
	observers      []func(Observation)
}

// New creates a [Watcher] with the given options.
//
// At least one target must be configured via [WithTarget] or
// [WithTargets], and every target's URL must be unique: the URL is the
// key under which last observed status is tracked. Other options have
// sensible defaults:
//   - Check delay (between targets): 10 seconds
//   - Loop delay (between cycles): 60 seconds
//   - Fetcher: plain HTTP client
//
// Configuration problems are surfaced here, before the loop ever runs.
func New(opts ...Option) (*Watcher, error) {
	cfg := &wConfig{
		checkDelay: defaultCheckDelay,
		loopDelay:  defaultLoopDelay,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if len(cfg.targets) == 0 {
		return nil, errors.New("at least one target is required")
	}

	// URL uniqueness is required for state tracking
	seen := make(map[string]bool, len(cfg.targets))
	for _, t := range cfg.targets {
		if seen[t.url] {
			return nil, fmt.Errorf("duplicate target URL: %q", t.url)
		}
		seen[t.url] = true
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		targets:        cfg.targets,
		checkDelay:     cfg.checkDelay,
		loopDelay:      cfg.loopDelay,
		checkJitter:    cfg.checkJitter,
		logger:         logger,
		fetcher:        cfg.fetcher,
		fetcherFactory: cfg.fetcherFactory,
		dispatcher:     notify.NewDispatcher(cfg.channels, logger),
		observers:      cfg.observers,
	}, nil
}

// Targets returns a copy of the configured targets.
func (w *Watcher) Targets() []Target {
	cp := make([]Target, len(w.targets))
	copy(cp, w.targets)
	return cp
}

// CheckDelay returns the configured pause between targets within a cycle.
func (w *Watcher) CheckDelay() time.Duration {
	return w.checkDelay
}

// LoopDelay returns the configured pause between check cycles.
func (w *Watcher) LoopDelay() time.Duration {
	return w.loopDelay
}

// ChannelCount returns the number of configured notification channels.
func (w *Watcher) ChannelCount() int {
	return w.dispatcher.ChannelCount()
}

// Run starts the monitoring loop and blocks until ctx is cancelled.
//
// On start the fetch capability is acquired and all targets are
// registered in the status store as never-observed. Each cycle then
// checks every target in configuration order: fetch, classify, detect a
// transition, and dispatch notifications on transition. Per-target
// failures are logged and skipped; they never terminate the loop.
//
// Cancellation is cooperative: it is honored between targets and at every
// pacing delay, so shutdown latency is bounded by the configured delays.
// The in-flight fetch/classify step is allowed to finish rather than
// being aborted mid-step. The fetch capability is released exactly once
// on every exit path.
//
// Returns nil on graceful shutdown. Returns an error only if the fetch
// capability cannot be acquired.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("downwatch starting",
		"targets", len(w.targets),
		"channels", w.dispatcher.ChannelCount(),
		"check_delay", w.checkDelay.String(),
		"loop_delay", w.loopDelay.String(),
	)
	if w.dispatcher.ChannelCount() == 0 {
		w.logger.Warn("no notification channels configured, transitions will only be logged")
	}

	if ctx.Err() != nil {
		return nil
	}

	fetcher, err := w.acquireFetcher(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire fetch capability: %w", err)
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			w.logger.Error("fetch capability release failed", "error", err)
		}
		w.logger.Info("downwatch stopped")
	}()

	store := state.NewMemoryStore()
	urls := make([]string, len(w.targets))
	for i, t := range w.targets {
		urls[i] = t.url
	}
	store.Init(urls)
	detector := state.NewDetector(store)

	for cycle := 1; ; cycle++ {
		w.logger.Info("check cycle started", "cycle", cycle)

		for _, t := range w.targets {
			if ctx.Err() != nil {
				return nil
			}
			w.checkTarget(ctx, fetcher, detector, t)
			if !sleep(ctx, w.interTargetDelay()) {
				return nil
			}
		}

		w.logger.Info("check cycle finished", "cycle", cycle, "next_in", w.loopDelay.String())
		if !sleep(ctx, w.loopDelay) {
			return nil
		}
	}
}

// checkTarget runs the fetch/classify/detect/dispatch step for a single
// target. Every failure is local to the target: it is logged, the stored
// status is left untouched, and the loop moves on.
func (w *Watcher) checkTarget(ctx context.Context, fetcher Fetcher, detector *state.Detector, t Target) {
	// the in-flight step finishes even when shutdown is requested;
	// the fetcher's own timeout bounds it
	stepCtx := context.WithoutCancel(ctx)

	page, err := fetcher.Fetch(stepCtx, t.url)
	if err != nil {
		w.logger.Warn("fetch failed, skipping target",
			"target", t.name,
			"url", t.url,
			"error", err,
		)
		return
	}

	if page.Blocked {
		w.logger.Warn("challenge page detected, skipping target",
			"target", t.name,
			"url", t.url,
			"title", page.Title,
		)
		return
	}

	status, err := w.classify(t, strings.ToLower(page.Content))
	if err != nil {
		w.logger.Warn("classification failed, skipping target",
			"target", t.name,
			"url", t.url,
			"error", err,
		)
		return
	}

	transition, changed := detector.Observe(t.url, status.String())

	// observers fire after the store reflects the observation
	if len(w.observers) > 0 {
		obs := Observation{Target: t.name, URL: t.url, Status: status, At: time.Now()}
		for _, fn := range w.observers {
			w.invokeObserverSafe(fn, obs)
		}
	}

	if !changed {
		w.logger.Debug("status observed",
			"target", t.name,
			"status", status.String(),
		)
		return
	}

	event := Event{
		ID:       uuid.NewString(),
		Target:   t.name,
		URL:      t.url,
		Previous: Status(transition.Previous),
		New:      Status(transition.New),
		At:       time.Now(),
	}
	w.logger.Info("status transition detected",
		"target", t.name,
		"previous", event.Previous.String(),
		"new", event.New.String(),
		"event_id", event.ID,
	)

	// best-effort: per-channel failures are logged by the dispatcher
	_ = w.dispatcher.Dispatch(stepCtx, toNotifyEvent(event))
}

// classify calls the target's classifier with panic recovery.
// If the classifier panics, the target is skipped with an error carrying
// a correlation ID; the full stack trace is logged for debugging.
func (w *Watcher) classify(t Target, content string) (status Status, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			w.logger.Error("classifier panic",
				"correlation_id", correlationID,
				"target", t.name,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			status = StatusUnknown
			err = fmt.Errorf("classifier panic (correlation_id: %s)", correlationID)
		}
	}()
	return t.Classify(content)
}

// invokeObserverSafe calls an observer with panic recovery.
// Panics are logged but do not propagate.
func (w *Watcher) invokeObserverSafe(fn func(Observation), obs Observation) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("observer panicked",
				"panic", r,
				"target", obs.Target,
			)
		}
	}()
	fn(obs)
}

// acquireFetcher resolves the fetch capability for this run.
func (w *Watcher) acquireFetcher(ctx context.Context) (Fetcher, error) {
	if w.fetcher != nil {
		return w.fetcher, nil
	}
	if w.fetcherFactory != nil {
		return w.fetcherFactory(ctx)
	}
	return fetcherAdapter{fetch.NewHTTP(0)}, nil
}

// interTargetDelay returns the inter-target pause, with bounded random
// jitter when configured.
func (w *Watcher) interTargetDelay() time.Duration {
	d := w.checkDelay
	if w.checkJitter > 0 {
		d += time.Duration(rand.Int63n(int64(w.checkJitter)))
	}
	return d
}

// sleep pauses for d, returning early with false if ctx is cancelled.
// A non-positive d only checks for cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// fetcherAdapter exposes an internal fetcher as the public [Fetcher]
// interface.
type fetcherAdapter struct {
	f fetch.Fetcher
}

func (a fetcherAdapter) Fetch(ctx context.Context, url string) (Page, error) {
	res, err := a.f.Fetch(ctx, url)
	if err != nil {
		return Page{}, err
	}
	return Page{Content: res.Content, Title: res.Title, Blocked: res.Blocked}, nil
}

func (a fetcherAdapter) Close() error {
	return a.f.Close()
}

// funcChannel adapts a user-supplied function into a notification channel.
type funcChannel struct {
	name string
	fn   func(context.Context, Event) error
}

func (c *funcChannel) Name() string { return c.name }

func (c *funcChannel) Validate() error { return nil }

func (c *funcChannel) Send(ctx context.Context, event notify.Event) error {
	return c.fn(ctx, fromNotifyEvent(event))
}

// toNotifyEvent converts a public [Event] to the dispatcher's type.
func toNotifyEvent(e Event) notify.Event {
	return notify.Event{
		ID:       e.ID,
		Target:   e.Target,
		URL:      e.URL,
		Previous: e.Previous.String(),
		New:      e.New.String(),
		At:       e.At,
		Detail:   e.Detail,
	}
}

// fromNotifyEvent converts the dispatcher's event type back to the public
// [Event].
func fromNotifyEvent(e notify.Event) Event {
	return Event{
		ID:       e.ID,
		Target:   e.Target,
		URL:      e.URL,
		Previous: Status(e.Previous),
		New:      Status(e.New),
		At:       e.At,
		Detail:   e.Detail,
	}
}
