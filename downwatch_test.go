package downwatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fetchStep is one scripted fetch outcome for a URL.
type fetchStep struct {
	page Page
	err  error
}

// fakeFetcher serves scripted fetch outcomes per URL. When a URL's script
// is exhausted, the last step repeats. Close calls are counted.
type fakeFetcher struct {
	mu      sync.Mutex
	script  map[string][]fetchStep
	calls   map[string]int
	total   int
	closed  int
	onFetch func(total int)
}

func newFakeFetcher(script map[string][]fetchStep) *fakeFetcher {
	return &fakeFetcher{
		script: script,
		calls:  make(map[string]int),
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (Page, error) {
	f.mu.Lock()
	steps := f.script[url]
	if len(steps) == 0 {
		f.mu.Unlock()
		return Page{}, fmt.Errorf("no script for %s", url)
	}
	idx := f.calls[url]
	if idx >= len(steps) {
		idx = len(steps) - 1
	}
	step := steps[idx]
	f.calls[url]++
	f.total++
	total := f.total
	hook := f.onFetch
	f.mu.Unlock()

	if hook != nil {
		hook(total)
	}
	return step.page, step.err
}

func (f *fakeFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeFetcher) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeFetcher) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

// eventRecorder collects dispatched events through an alert func channel.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) record(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *eventRecorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// startWatcher runs w.Run in the background and returns a wait func that
// fails the test if Run does not finish within 5s.
func startWatcher(t *testing.T, ctx context.Context, w *Watcher) func() error {
	t.Helper()

	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	return func() error {
		select {
		case err := <-done:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("watcher did not stop within 5s")
			return nil
		}
	}
}

const (
	pageNoProblems = "Reports indicate no current problems at this provider"
	pageProblems   = "Reports indicate problems at this provider"
)

// TestWatcher_TransitionScenario drives the full first-observation /
// transition / fetch-failure / steady-state sequence through the loop:
//
//	cycle 1: OPERATIONAL       -> baseline, no event
//	cycle 2: OUTAGE_DETECTED   -> one event (operational -> outage_detected)
//	cycle 3: fetch failure     -> no event, stored status untouched
//	cycle 4: OUTAGE_DETECTED   -> no event (unchanged)
func TestWatcher_TransitionScenario(t *testing.T) {
	const url = "https://downdetector.com/status/x/"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := newFakeFetcher(map[string][]fetchStep{
		url: {
			{page: Page{Content: pageNoProblems}},
			{page: Page{Content: pageProblems}},
			{err: errors.New("connection refused")},
			{page: Page{Content: pageProblems}},
		},
	})
	fetcher.onFetch = func(total int) {
		if total == 4 {
			cancel() // cycle 4 still completes: the in-flight step finishes
		}
	}

	var (
		mu           sync.Mutex
		observations []Status
	)
	recorder := &eventRecorder{}

	target, err := NewTarget("Service X", url, ModeAggregated)
	if err != nil {
		t.Fatalf("NewTarget() error = %v", err)
	}

	w, err := New(
		WithTarget(target),
		WithCheckDelay(0),
		WithLoopDelay(0),
		WithLogger(testLogger()),
		WithFetcher(fetcher),
		WithAlertFunc("recorder", recorder.record),
		WithObserver(func(obs Observation) {
			mu.Lock()
			observations = append(observations, obs.Status)
			mu.Unlock()
		}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := startWatcher(t, ctx, w)(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	events := recorder.all()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1: %+v", len(events), events)
	}
	ev := events[0]
	if ev.Previous != StatusOperational || ev.New != StatusOutageDetected {
		t.Errorf("event = %v -> %v, want %v -> %v",
			ev.Previous, ev.New, StatusOperational, StatusOutageDetected)
	}
	if ev.Target != "Service X" || ev.URL != url {
		t.Errorf("event identity = (%q, %q), want (%q, %q)", ev.Target, ev.URL, "Service X", url)
	}
	if ev.ID == "" {
		t.Error("event ID is empty")
	}

	mu.Lock()
	gotObs := append([]Status(nil), observations...)
	mu.Unlock()
	// cycle 3's fetch failure produces no observation
	wantObs := []Status{StatusOperational, StatusOutageDetected, StatusOutageDetected}
	if len(gotObs) != len(wantObs) {
		t.Fatalf("observations = %v, want %v", gotObs, wantObs)
	}
	for i := range wantObs {
		if gotObs[i] != wantObs[i] {
			t.Errorf("observations[%d] = %v, want %v", i, gotObs[i], wantObs[i])
		}
	}

	if n := fetcher.closeCount(); n != 1 {
		t.Errorf("fetcher closed %d times, want exactly 1", n)
	}
}

// TestWatcher_FirstObservationNeverAlarms checks that the baseline
// observation produces no event regardless of which status it is.
func TestWatcher_FirstObservationNeverAlarms(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"operational baseline", pageNoProblems},
		{"outage baseline", pageProblems},
		{"unknown baseline", "unrecognizable content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const url = "https://example.com/status"

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			fetcher := newFakeFetcher(map[string][]fetchStep{
				url: {{page: Page{Content: tt.content}}},
			})
			fetcher.onFetch = func(total int) {
				if total == 1 {
					cancel()
				}
			}

			recorder := &eventRecorder{}
			target, _ := NewTarget("Test", url, ModeAggregated)
			w, err := New(
				WithTarget(target),
				WithCheckDelay(0),
				WithLoopDelay(0),
				WithLogger(testLogger()),
				WithFetcher(fetcher),
				WithAlertFunc("recorder", recorder.record),
			)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			if err := startWatcher(t, ctx, w)(); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			if events := recorder.all(); len(events) != 0 {
				t.Errorf("got %d events on first observation, want 0: %+v", len(events), events)
			}
		})
	}
}

// TestWatcher_OscillationFiresEveryChange verifies there is no debounce:
// flipping between two statuses fires on every change.
func TestWatcher_OscillationFiresEveryChange(t *testing.T) {
	const url = "https://example.com/status"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := newFakeFetcher(map[string][]fetchStep{
		url: {
			{page: Page{Content: pageNoProblems}},
			{page: Page{Content: pageProblems}},
			{page: Page{Content: pageNoProblems}},
			{page: Page{Content: pageProblems}},
		},
	})
	fetcher.onFetch = func(total int) {
		if total == 4 {
			cancel()
		}
	}

	recorder := &eventRecorder{}
	target, _ := NewTarget("Test", url, ModeAggregated)
	w, err := New(
		WithTarget(target),
		WithCheckDelay(0),
		WithLoopDelay(0),
		WithLogger(testLogger()),
		WithFetcher(fetcher),
		WithAlertFunc("recorder", recorder.record),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := startWatcher(t, ctx, w)(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	events := recorder.all()
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3: %+v", len(events), events)
	}
	wantPairs := [][2]Status{
		{StatusOperational, StatusOutageDetected},
		{StatusOutageDetected, StatusOperational},
		{StatusOperational, StatusOutageDetected},
	}
	for i, want := range wantPairs {
		if events[i].Previous != want[0] || events[i].New != want[1] {
			t.Errorf("events[%d] = %v -> %v, want %v -> %v",
				i, events[i].Previous, events[i].New, want[0], want[1])
		}
	}
}

// TestWatcher_BlockedPageSkipped verifies a challenge page is treated as
// a skip: no observation, no event, and the next real page is still the
// baseline.
func TestWatcher_BlockedPageSkipped(t *testing.T) {
	const url = "https://example.com/status"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := newFakeFetcher(map[string][]fetchStep{
		url: {
			{page: Page{Content: "challenge", Title: "Just a moment...", Blocked: true}},
			{page: Page{Content: pageNoProblems}},
			{page: Page{Content: pageProblems}},
		},
	})
	fetcher.onFetch = func(total int) {
		if total == 3 {
			cancel()
		}
	}

	recorder := &eventRecorder{}
	target, _ := NewTarget("Test", url, ModeAggregated)
	w, err := New(
		WithTarget(target),
		WithCheckDelay(0),
		WithLoopDelay(0),
		WithLogger(testLogger()),
		WithFetcher(fetcher),
		WithAlertFunc("recorder", recorder.record),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := startWatcher(t, ctx, w)(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// blocked cycle is skipped, cycle 2 is the baseline, cycle 3 fires
	events := recorder.all()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1: %+v", len(events), events)
	}
	if events[0].Previous != StatusOperational || events[0].New != StatusOutageDetected {
		t.Errorf("event = %v -> %v, want operational -> outage_detected",
			events[0].Previous, events[0].New)
	}
}

// TestWatcher_CancelMidCycle verifies that cancellation during one
// target's check finishes that step, processes no further targets, and
// releases the fetcher exactly once.
func TestWatcher_CancelMidCycle(t *testing.T) {
	const (
		urlA = "https://a.example.com/status"
		urlB = "https://b.example.com/status"
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := newFakeFetcher(map[string][]fetchStep{
		urlA: {{page: Page{Content: pageNoProblems}}},
		urlB: {{page: Page{Content: pageNoProblems}}},
	})
	fetcher.onFetch = func(total int) {
		if total == 1 {
			cancel() // cancel while target A's step is in flight
		}
	}

	targetA, _ := NewTarget("A", urlA, ModeAggregated)
	targetB, _ := NewTarget("B", urlB, ModeAggregated)
	w, err := New(
		WithTargets(targetA, targetB),
		WithCheckDelay(0),
		WithLoopDelay(0),
		WithLogger(testLogger()),
		WithFetcher(fetcher),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := startWatcher(t, ctx, w)(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if n := fetcher.callCount(urlA); n != 1 {
		t.Errorf("target A fetched %d times, want 1", n)
	}
	if n := fetcher.callCount(urlB); n != 0 {
		t.Errorf("target B fetched %d times, want 0", n)
	}
	if n := fetcher.closeCount(); n != 1 {
		t.Errorf("fetcher closed %d times, want exactly 1", n)
	}
}

// TestWatcher_AlreadyCancelled verifies Run with a cancelled context
// returns immediately without fetching.
func TestWatcher_AlreadyCancelled(t *testing.T) {
	const url = "https://example.com/status"
	fetcher := newFakeFetcher(map[string][]fetchStep{
		url: {{page: Page{Content: pageNoProblems}}},
	})

	target, _ := NewTarget("Test", url, ModeAggregated)
	w, err := New(
		WithTarget(target),
		WithLogger(testLogger()),
		WithFetcher(fetcher),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := w.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if n := fetcher.callCount(url); n != 0 {
		t.Errorf("fetched %d times, want 0", n)
	}
}

// TestWatcher_ChannelFailureDoesNotStopLoop verifies a failing channel
// neither stops the loop nor suppresses later dispatches.
func TestWatcher_ChannelFailureDoesNotStopLoop(t *testing.T) {
	const url = "https://example.com/status"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := newFakeFetcher(map[string][]fetchStep{
		url: {
			{page: Page{Content: pageNoProblems}},
			{page: Page{Content: pageProblems}},
			{page: Page{Content: pageNoProblems}},
		},
	})
	fetcher.onFetch = func(total int) {
		if total == 3 {
			cancel()
		}
	}

	recorder := &eventRecorder{}
	target, _ := NewTarget("Test", url, ModeAggregated)
	w, err := New(
		WithTarget(target),
		WithCheckDelay(0),
		WithLoopDelay(0),
		WithLogger(testLogger()),
		WithFetcher(fetcher),
		WithAlertFunc("failing", func(context.Context, Event) error {
			return errors.New("delivery refused")
		}),
		WithAlertFunc("recorder", recorder.record),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := startWatcher(t, ctx, w)(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// both transitions reached the healthy channel despite the failing one
	if events := recorder.all(); len(events) != 2 {
		t.Errorf("got %d events, want 2: %+v", len(events), events)
	}
}

// TestWatcher_ObserverPanicRecovered verifies a panicking observer does
// not crash the loop.
func TestWatcher_ObserverPanicRecovered(t *testing.T) {
	const url = "https://example.com/status"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := newFakeFetcher(map[string][]fetchStep{
		url: {{page: Page{Content: pageNoProblems}}},
	})
	fetcher.onFetch = func(total int) {
		if total == 2 {
			cancel()
		}
	}

	target, _ := NewTarget("Test", url, ModeAggregated)
	w, err := New(
		WithTarget(target),
		WithCheckDelay(0),
		WithLoopDelay(0),
		WithLogger(testLogger()),
		WithFetcher(fetcher),
		WithObserver(func(Observation) { panic("observer bug") }),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := startWatcher(t, ctx, w)(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// reaching a second fetch proves the first observer panic was recovered
	if n := fetcher.callCount(url); n < 2 {
		t.Errorf("fetched %d times, want at least 2", n)
	}
}
