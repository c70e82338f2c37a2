package config

import (
	"fmt"

	"github.com/jpalmerr/downwatch"
)

// BuildTargets converts parsed configuration into SDK Target objects.
func BuildTargets(cfg *Config) ([]downwatch.Target, error) {
	targets := make([]downwatch.Target, 0, len(cfg.Targets))

	for i, tc := range cfg.Targets {
		t, err := buildTarget(tc)
		if err != nil {
			return nil, fmt.Errorf("targets[%d] (%s): %w", i, tc.Name, err)
		}
		targets = append(targets, t)
	}

	return targets, nil
}

// buildTarget converts a single TargetConfig to an SDK Target.
func buildTarget(tc TargetConfig) (downwatch.Target, error) {
	var opts []downwatch.TargetOption
	if len(tc.Keywords) > 0 {
		opts = append(opts, downwatch.WithKeywords(tc.Keywords...))
	}
	return downwatch.NewTarget(tc.Name, tc.URL, downwatch.Mode(tc.Mode), opts...)
}

// BuildOptions converts parsed configuration into SDK Option values
// covering pacing, the fetcher choice, and the enabled channels.
// Targets are not included; combine with [BuildTargets]. Option values
// are validated by downwatch.New, not here.
func BuildOptions(cfg *Config) []downwatch.Option {
	opts := []downwatch.Option{
		downwatch.WithCheckDelay(cfg.CheckDelay.Duration()),
		downwatch.WithLoopDelay(cfg.LoopDelay.Duration()),
	}

	if cfg.CheckJitter != 0 {
		opts = append(opts, downwatch.WithCheckJitter(cfg.CheckJitter.Duration()))
	}

	switch cfg.Fetcher {
	case FetcherBrowser:
		opts = append(opts, downwatch.WithBrowserFetcher(cfg.SettleMin.Duration(), cfg.SettleMax.Duration()))
	default:
		opts = append(opts, downwatch.WithHTTPFetcher(cfg.FetchTimeout.Duration()))
	}

	if e := cfg.Channels.Email; e != nil {
		opts = append(opts, downwatch.WithEmail(downwatch.EmailSettings{
			Host:     e.Host,
			Port:     e.Port,
			From:     e.From,
			Password: e.Password,
			To:       e.To,
		}))
	}
	if s := cfg.Channels.Slack; s != nil {
		opts = append(opts, downwatch.WithSlackWebhook(s.WebhookURL))
	}
	if t := cfg.Channels.Telegram; t != nil {
		opts = append(opts, downwatch.WithTelegram(t.BotToken, t.ChatID))
	}
	if w := cfg.Channels.Webhook; w != nil {
		opts = append(opts, downwatch.WithWebhook(w.URL, w.Method))
	}

	return opts
}
