package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Dispatcher broadcasts transition events to a fixed set of channels.
//
// Every channel is invoked for every event, independently and in order.
// A failing channel is logged and does not suppress, retry, or delay the
// remaining channels. If a delivery failure persists, the next detected
// transition is the next delivery attempt; nothing is queued.
type Dispatcher struct {
	channels []Notifier
	logger   *slog.Logger
}

// NewDispatcher creates a [Dispatcher] over the given channels.
// A nil logger falls back to [slog.Default].
func NewDispatcher(channels []Notifier, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{channels: channels, logger: logger}
}

// ChannelCount returns the number of configured channels.
func (d *Dispatcher) ChannelCount() int {
	return len(d.channels)
}

// Dispatch delivers the event to every channel.
//
// Per-channel failures are logged and collected; the joined error is
// returned for callers that want to inspect it, but a non-nil return still
// means every channel was attempted.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) error {
	var errs []error
	for _, ch := range d.channels {
		if err := ch.Send(ctx, event); err != nil {
			d.logger.Error("notification send failed",
				"channel", ch.Name(),
				"event_id", event.ID,
				"target", event.Target,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
			continue
		}
		d.logger.Info("notification sent",
			"channel", ch.Name(),
			"event_id", event.ID,
			"target", event.Target,
			"previous", event.Previous,
			"new", event.New,
		)
	}
	return errors.Join(errs...)
}
