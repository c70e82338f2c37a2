package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

// stubChannel is a scripted Notifier for dispatcher tests.
type stubChannel struct {
	name    string
	sendErr error
	sent    []Event
}

func (c *stubChannel) Name() string { return c.name }

func (c *stubChannel) Send(_ context.Context, event Event) error {
	c.sent = append(c.sent, event)
	return c.sendErr
}

func (c *stubChannel) Validate() error { return nil }

func testEvent() Event {
	return Event{
		ID:       "evt-1",
		Target:   "Service X",
		URL:      "https://example.com/status",
		Previous: "operational",
		New:      "outage_detected",
		At:       time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatcher_AllChannelsReceive(t *testing.T) {
	a := &stubChannel{name: "a"}
	b := &stubChannel{name: "b"}
	d := NewDispatcher([]Notifier{a, b}, discardLogger())

	if err := d.Dispatch(context.Background(), testEvent()); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if len(a.sent) != 1 || len(b.sent) != 1 {
		t.Errorf("deliveries = (%d, %d), want (1, 1)", len(a.sent), len(b.sent))
	}
	if a.sent[0].ID != "evt-1" {
		t.Errorf("delivered event ID = %q, want %q", a.sent[0].ID, "evt-1")
	}
}

func TestDispatcher_FailureDoesNotBlockOthers(t *testing.T) {
	failing := &stubChannel{name: "failing", sendErr: errors.New("delivery refused")}
	healthy := &stubChannel{name: "healthy"}
	d := NewDispatcher([]Notifier{failing, healthy}, discardLogger())

	err := d.Dispatch(context.Background(), testEvent())
	if err == nil {
		t.Fatal("Dispatch() error = nil, want joined failure")
	}
	if !errors.Is(err, failing.sendErr) {
		t.Errorf("Dispatch() error = %v, want wrapping %v", err, failing.sendErr)
	}

	if len(failing.sent) != 1 {
		t.Errorf("failing channel attempted %d times, want 1", len(failing.sent))
	}
	if len(healthy.sent) != 1 {
		t.Errorf("healthy channel attempted %d times, want 1", len(healthy.sent))
	}
}

func TestDispatcher_AllFailuresJoined(t *testing.T) {
	errA := errors.New("a down")
	errB := errors.New("b down")
	d := NewDispatcher([]Notifier{
		&stubChannel{name: "a", sendErr: errA},
		&stubChannel{name: "b", sendErr: errB},
	}, discardLogger())

	err := d.Dispatch(context.Background(), testEvent())
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("Dispatch() error = %v, want both channel errors joined", err)
	}
}

func TestDispatcher_NoChannels(t *testing.T) {
	d := NewDispatcher(nil, discardLogger())

	if got := d.ChannelCount(); got != 0 {
		t.Errorf("ChannelCount() = %d, want 0", got)
	}
	if err := d.Dispatch(context.Background(), testEvent()); err != nil {
		t.Errorf("Dispatch() error = %v, want nil", err)
	}
}

func TestDispatcher_NilLoggerFallsBack(t *testing.T) {
	d := NewDispatcher([]Notifier{&stubChannel{name: "a"}}, nil)

	if err := d.Dispatch(context.Background(), testEvent()); err != nil {
		t.Errorf("Dispatch() error = %v", err)
	}
}
