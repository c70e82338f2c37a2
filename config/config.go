// Package config provides YAML configuration parsing for downwatch.
//
// This package enables running downwatch as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	check_delay: 10s
//	loop_delay: 60s
//	fetcher: http
//
//	targets:
//	  - name: Internet Archive
//	    url: https://downdetector.com/status/internetarchive/
//	    mode: aggregated
//	  - name: OpenAI API
//	    url: https://status.openai.com/
//	    mode: keyword
//	    keywords: [all systems operational, operational]
//
//	channels:
//	  email:
//	    from: ${EMAIL_SENDER}
//	    password: ${EMAIL_PASSWORD}
//	    to: [ops@example.com]
//	  slack:
//	    webhook_url: ${SLACK_WEBHOOK_URL}
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Fetcher kinds selectable in configuration.
const (
	FetcherHTTP    = "http"
	FetcherBrowser = "browser"
)

// defaultKeywords is applied to keyword-mode targets that omit the
// keywords list.
var defaultKeywords = []string{"operational"}

// Config is the root configuration structure for downwatch.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// CheckDelay is the pause between targets within one check cycle.
	// Accepts duration strings like "10s", "1m", "500ms". Defaults to 10s.
	CheckDelay Duration `yaml:"check_delay"`

	// LoopDelay is the pause between complete check cycles. Defaults to 60s.
	LoopDelay Duration `yaml:"loop_delay"`

	// CheckJitter is a bounded random extra delay added to every
	// inter-target pause. Defaults to zero.
	CheckJitter Duration `yaml:"check_jitter"`

	// Fetcher selects the page fetcher: "http" (default) or "browser"
	// (headless Chrome, for pages behind anti-bot protection).
	Fetcher string `yaml:"fetcher"`

	// SettleMin and SettleMax bound the browser fetcher's random
	// post-navigation render-settle delay. Defaults to 5s and 8s.
	// Ignored by the http fetcher.
	SettleMin Duration `yaml:"settle_min"`
	SettleMax Duration `yaml:"settle_max"`

	// FetchTimeout is the http fetcher's per-request timeout.
	// Zero uses the fetcher default (30s). Ignored by the browser fetcher.
	FetchTimeout Duration `yaml:"fetch_timeout"`

	// Targets defines the monitored status pages.
	Targets []TargetConfig `yaml:"targets"`

	// Channels configures the notification channels. Each channel is
	// enabled by the presence of its block; absent channels are skipped.
	Channels ChannelsConfig `yaml:"channels"`
}

// TargetConfig defines a single monitored status page.
type TargetConfig struct {
	// Name is the human-readable service name used in logs and alerts.
	Name string `yaml:"name"`

	// URL is the status page URL. Must be unique across targets.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	URL string `yaml:"url"`

	// Mode is the classification mode: "aggregated" or "keyword".
	Mode string `yaml:"mode"`

	// Keywords are the positive-indicator phrases for keyword mode.
	// Defaults to ["operational"] when omitted.
	Keywords []string `yaml:"keywords"`
}

// ChannelsConfig groups the per-channel settings. A nil block disables
// the channel.
type ChannelsConfig struct {
	Email    *EmailConfig    `yaml:"email"`
	Slack    *SlackConfig    `yaml:"slack"`
	Telegram *TelegramConfig `yaml:"telegram"`
	Webhook  *WebhookConfig  `yaml:"webhook"`
}

// EmailConfig configures the SMTP email channel.
type EmailConfig struct {
	// Host is the SMTP server. Defaults to smtp.gmail.com.
	Host string `yaml:"host"`

	// Port is the SMTP port for implicit SSL. Defaults to 465.
	Port int `yaml:"port"`

	// From is the sender address, also used as the SMTP username.
	// Supports environment variable substitution.
	From string `yaml:"from"`

	// Password is the SMTP password. Supports environment variable
	// substitution.
	Password string `yaml:"password"`

	// To lists the recipient addresses.
	To []string `yaml:"to"`
}

// SlackConfig configures the Slack incoming-webhook channel.
type SlackConfig struct {
	// WebhookURL is the Slack incoming webhook URL. Supports environment
	// variable substitution.
	WebhookURL string `yaml:"webhook_url"`
}

// TelegramConfig configures the Telegram Bot API channel.
type TelegramConfig struct {
	// BotToken authenticates the bot. Supports environment variable
	// substitution.
	BotToken string `yaml:"bot_token"`

	// ChatID is the destination chat.
	ChatID string `yaml:"chat_id"`
}

// WebhookConfig configures the generic JSON webhook channel.
type WebhookConfig struct {
	// URL is the webhook endpoint. Supports environment variable
	// substitution.
	URL string `yaml:"url"`

	// Method is the HTTP method. Defaults to POST.
	Method string `yaml:"method"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with
// environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in URLs and credential fields.
// Defaults are applied for CheckDelay (10s), LoopDelay (60s), the fetcher
// kind (http), and keyword lists (["operational"]).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.CheckDelay == 0 {
		cfg.CheckDelay = Duration(10 * time.Second)
	}
	if cfg.LoopDelay == 0 {
		cfg.LoopDelay = Duration(60 * time.Second)
	}
	if cfg.Fetcher == "" {
		cfg.Fetcher = FetcherHTTP
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.CheckDelay.Duration() < 0 {
		return fmt.Errorf("check_delay cannot be negative, got %s", c.CheckDelay.Duration())
	}
	if c.LoopDelay.Duration() < 0 {
		return fmt.Errorf("loop_delay cannot be negative, got %s", c.LoopDelay.Duration())
	}
	if c.CheckJitter.Duration() < 0 {
		return fmt.Errorf("check_jitter cannot be negative, got %s", c.CheckJitter.Duration())
	}

	if c.Fetcher != FetcherHTTP && c.Fetcher != FetcherBrowser {
		return fmt.Errorf("fetcher must be %q or %q, got %q", FetcherHTTP, FetcherBrowser, c.Fetcher)
	}
	if c.SettleMin.Duration() < 0 || c.SettleMax.Duration() < 0 {
		return errors.New("settle_min and settle_max cannot be negative")
	}
	if c.SettleMin.Duration() > c.SettleMax.Duration() {
		return fmt.Errorf("settle_min (%s) must not exceed settle_max (%s)",
			c.SettleMin.Duration(), c.SettleMax.Duration())
	}

	if len(c.Targets) == 0 {
		return errors.New("at least one target must be defined")
	}

	seenURLs := make(map[string]int, len(c.Targets))
	for i := range c.Targets {
		t := &c.Targets[i]

		if t.Name == "" {
			return fmt.Errorf("targets[%d]: name is required", i)
		}

		if t.URL == "" {
			return fmt.Errorf("targets[%d] (%s): url is required", i, t.Name)
		}
		expanded, err := expandEnvVars(t.URL)
		if err != nil {
			return fmt.Errorf("targets[%d] (%s): url: %w", i, t.Name, err)
		}
		t.URL = expanded

		parsed, err := url.Parse(t.URL)
		if err != nil {
			return fmt.Errorf("targets[%d] (%s): invalid url: %w", i, t.Name, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("targets[%d] (%s): url scheme must be http or https, got %q", i, t.Name, parsed.Scheme)
		}

		if prev, dup := seenURLs[t.URL]; dup {
			return fmt.Errorf("targets[%d] (%s): url %q duplicates targets[%d]", i, t.Name, t.URL, prev)
		}
		seenURLs[t.URL] = i

		switch t.Mode {
		case "aggregated":
			// no parameters
		case "keyword":
			if len(t.Keywords) == 0 {
				t.Keywords = append([]string(nil), defaultKeywords...)
			}
		default:
			return fmt.Errorf("targets[%d] (%s): mode must be \"aggregated\" or \"keyword\", got %q", i, t.Name, t.Mode)
		}
	}

	return c.expandAndValidateChannels()
}

// expandAndValidateChannels validates only the channel blocks that are
// present; absent channels are simply disabled, never an error.
func (c *Config) expandAndValidateChannels() error {
	if e := c.Channels.Email; e != nil {
		var err error
		if e.From, err = expandEnvVars(e.From); err != nil {
			return fmt.Errorf("channels.email.from: %w", err)
		}
		if e.Password, err = expandEnvVars(e.Password); err != nil {
			return fmt.Errorf("channels.email.password: %w", err)
		}
		if e.From == "" {
			return errors.New("channels.email: from is required")
		}
		if e.Password == "" {
			return errors.New("channels.email: password is required")
		}
		if len(e.To) == 0 {
			return errors.New("channels.email: at least one recipient is required")
		}
	}

	if s := c.Channels.Slack; s != nil {
		var err error
		if s.WebhookURL, err = expandEnvVars(s.WebhookURL); err != nil {
			return fmt.Errorf("channels.slack.webhook_url: %w", err)
		}
		if s.WebhookURL == "" {
			return errors.New("channels.slack: webhook_url is required")
		}
	}

	if t := c.Channels.Telegram; t != nil {
		var err error
		if t.BotToken, err = expandEnvVars(t.BotToken); err != nil {
			return fmt.Errorf("channels.telegram.bot_token: %w", err)
		}
		if t.BotToken == "" {
			return errors.New("channels.telegram: bot_token is required")
		}
		if t.ChatID == "" {
			return errors.New("channels.telegram: chat_id is required")
		}
	}

	if w := c.Channels.Webhook; w != nil {
		var err error
		if w.URL, err = expandEnvVars(w.URL); err != nil {
			return fmt.Errorf("channels.webhook.url: %w", err)
		}
		if w.URL == "" {
			return errors.New("channels.webhook: url is required")
		}
	}

	return nil
}

// ChannelCount returns the number of enabled notification channels.
func (c *Config) ChannelCount() int {
	n := 0
	if c.Channels.Email != nil {
		n++
	}
	if c.Channels.Slack != nil {
		n++
	}
	if c.Channels.Telegram != nil {
		n++
	}
	if c.Channels.Webhook != nil {
		n++
	}
	return n
}
