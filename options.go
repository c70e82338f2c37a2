package downwatch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jpalmerr/downwatch/internal/fetch"
	"github.com/jpalmerr/downwatch/internal/notify"
)

// wConfig holds mutable state during [Watcher] construction.
type wConfig struct {
	targets        []Target
	checkDelay     time.Duration
	loopDelay      time.Duration
	checkJitter    time.Duration
	logger         *slog.Logger
	fetcher        Fetcher
	fetcherFactory func(context.Context) (Fetcher, error)
	channels       []notify.Notifier
	observers      []func(Observation)
}

// Option is a function that configures a [Watcher] instance during
// construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
type Option func(*wConfig) error

// WithTarget adds a single [Target] to the watch list.
//
// Can be called multiple times to add multiple targets. At least one
// target must be configured for [New] to succeed.
func WithTarget(t Target) Option {
	return func(cfg *wConfig) error {
		cfg.targets = append(cfg.targets, t)
		return nil
	}
}

// WithTargets adds multiple [Target] values to the watch list.
// Equivalent to calling [WithTarget] multiple times.
func WithTargets(targets ...Target) Option {
	return func(cfg *wConfig) error {
		cfg.targets = append(cfg.targets, targets...)
		return nil
	}
}

// WithCheckDelay sets the pause between consecutive targets within one
// check cycle. This paces requests toward the monitored services.
// Defaults to 10 seconds. Returns an error if the duration is negative.
func WithCheckDelay(d time.Duration) Option {
	return func(cfg *wConfig) error {
		if d < 0 {
			return errors.New("check delay cannot be negative")
		}
		cfg.checkDelay = d
		return nil
	}
}

// WithLoopDelay sets the pause between complete check cycles.
// Defaults to 60 seconds. Returns an error if the duration is negative.
func WithLoopDelay(d time.Duration) Option {
	return func(cfg *wConfig) error {
		if d < 0 {
			return errors.New("loop delay cannot be negative")
		}
		cfg.loopDelay = d
		return nil
	}
}

// WithCheckJitter adds a bounded random extra delay in [0, d) to every
// inter-target pause, so the polling cadence does not form a fixed
// fingerprint. The jitter is always bounded by d, never unbounded.
// Defaults to zero (no jitter). Returns an error if d is negative.
func WithCheckJitter(d time.Duration) Option {
	return func(cfg *wConfig) error {
		if d < 0 {
			return errors.New("check jitter cannot be negative")
		}
		cfg.checkJitter = d
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the watcher.
//
// This allows SDK consumers to control where logs are written and in what
// format. If not specified, [slog.Default] is used.
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *wConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithFetcher injects a ready [Fetcher] implementation.
//
// The watcher takes ownership: the fetcher is closed when [Watcher.Run]
// exits. This is the seam for custom fetch capabilities and for tests.
// Returns an error if the fetcher is nil.
func WithFetcher(f Fetcher) Option {
	return func(cfg *wConfig) error {
		if f == nil {
			return errors.New("fetcher cannot be nil")
		}
		cfg.fetcher = f
		cfg.fetcherFactory = nil
		return nil
	}
}

// WithHTTPFetcher selects the plain HTTP page fetcher with the given
// per-request timeout. A zero timeout uses the fetcher default (30s).
// This is also the default when no fetcher option is given.
func WithHTTPFetcher(timeout time.Duration) Option {
	return func(cfg *wConfig) error {
		if timeout < 0 {
			return errors.New("fetch timeout cannot be negative")
		}
		cfg.fetcher = nil
		cfg.fetcherFactory = func(context.Context) (Fetcher, error) {
			return fetcherAdapter{fetch.NewHTTP(timeout)}, nil
		}
		return nil
	}
}

// WithBrowserFetcher selects the headless Chrome page fetcher, for status
// pages behind anti-bot protection that a plain HTTP client cannot load.
//
// The browser is launched when [Watcher.Run] starts and torn down when it
// exits. After each navigation the fetcher waits a random delay within
// [settleMin, settleMax] so JavaScript can finish rendering; zero values
// select the default range of [5s, 8s]. Range validation happens at
// launch.
func WithBrowserFetcher(settleMin, settleMax time.Duration) Option {
	return func(cfg *wConfig) error {
		cfg.fetcher = nil
		cfg.fetcherFactory = func(ctx context.Context) (Fetcher, error) {
			b, err := fetch.NewBrowser(ctx, settleMin, settleMax)
			if err != nil {
				return nil, err
			}
			return fetcherAdapter{b}, nil
		}
		return nil
	}
}

// EmailSettings configures the email notification channel.
type EmailSettings struct {
	// Host is the SMTP server. Empty defaults to smtp.gmail.com.
	Host string

	// Port is the SMTP port for implicit SSL. Zero defaults to 465.
	Port int

	// From is the sender address, also used as the SMTP username.
	From string

	// Password is the SMTP password (for Gmail, an app password).
	Password string

	// To lists the recipient addresses.
	To []string
}

// WithEmail enables the email notification channel.
// Returns an error if required settings are missing.
func WithEmail(settings EmailSettings) Option {
	return func(cfg *wConfig) error {
		ch := &notify.Email{
			Host:     settings.Host,
			Port:     settings.Port,
			From:     settings.From,
			Password: settings.Password,
			To:       settings.To,
		}
		if err := ch.Validate(); err != nil {
			return err
		}
		cfg.channels = append(cfg.channels, ch)
		return nil
	}
}

// WithSlackWebhook enables the Slack notification channel using an
// incoming webhook URL. Returns an error if the URL is empty.
func WithSlackWebhook(webhookURL string) Option {
	return func(cfg *wConfig) error {
		ch := &notify.Slack{WebhookURL: webhookURL}
		if err := ch.Validate(); err != nil {
			return err
		}
		cfg.channels = append(cfg.channels, ch)
		return nil
	}
}

// WithTelegram enables the Telegram notification channel.
// Returns an error if the bot token or chat ID is empty.
func WithTelegram(botToken, chatID string) Option {
	return func(cfg *wConfig) error {
		ch := &notify.Telegram{BotToken: botToken, ChatID: chatID}
		if err := ch.Validate(); err != nil {
			return err
		}
		cfg.channels = append(cfg.channels, ch)
		return nil
	}
}

// WithWebhook enables a generic JSON webhook notification channel.
// An empty method defaults to POST. Returns an error if the URL is empty.
func WithWebhook(url, method string) Option {
	return func(cfg *wConfig) error {
		ch := &notify.Webhook{URL: url, Method: method}
		if err := ch.Validate(); err != nil {
			return err
		}
		cfg.channels = append(cfg.channels, ch)
		return nil
	}
}

// WithAlertFunc registers a custom notification channel backed by a
// function. The name identifies the channel in logs.
//
// The function participates in dispatch like any other channel: its
// failure is logged and does not affect other channels.
// Returns an error if the name is empty or the function is nil.
func WithAlertFunc(name string, fn func(context.Context, Event) error) Option {
	return func(cfg *wConfig) error {
		if name == "" {
			return errors.New("alert func name cannot be empty")
		}
		if fn == nil {
			return errors.New("alert func cannot be nil")
		}
		cfg.channels = append(cfg.channels, &funcChannel{name: name, fn: fn})
		return nil
	}
}

// WithObserver registers a function called on every successful
// classification, whether or not it produced a transition.
//
// Observers run synchronously after the status store is updated. Panics
// within observers are recovered and logged; they do not crash the
// monitoring loop. Nil observers are silently ignored.
func WithObserver(fn func(Observation)) Option {
	return func(cfg *wConfig) error {
		if fn == nil {
			return nil // no-op for nil observer (safe to call)
		}
		cfg.observers = append(cfg.observers, fn)
		return nil
	}
}
