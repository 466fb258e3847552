// Package config loads bot settings from a YAML file overlaid with
// environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/cinemareddy/postbot/internal/database"
)

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

// TelegramConfig holds the bot transport settings.
type TelegramConfig struct {
	Token                  string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID                int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode                string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	LongPollTimeoutSeconds int    `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook listener settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// TMDBConfig holds the metadata provider settings.
type TMDBConfig struct {
	APIKey         string `yaml:"api_key" envconfig:"TMDB_API_KEY"`
	BaseURL        string `yaml:"base_url" envconfig:"TMDB_BASE_URL"`
	ImageBaseURL   string `yaml:"image_base_url" envconfig:"TMDB_IMAGE_BASE_URL"`
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"TMDB_TIMEOUT_SECONDS"`
}

// SessionConfig bounds the lifetime of pending disambiguation sessions.
type SessionConfig struct {
	MaxAgeSeconds        int `yaml:"max_age_seconds" envconfig:"SESSION_MAX_AGE_SECONDS"`
	SweepIntervalSeconds int `yaml:"sweep_interval_seconds" envconfig:"SESSION_SWEEP_INTERVAL_SECONDS"`
}

// LoggingConfig selects log level, format, and optional file sink.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	Profile string `yaml:"profile"`
	Dir     string `yaml:"dir"`
	File    string `yaml:"file"`
}

// RateLimitConfig enforces a minimum interval between messages per user.
type RateLimitConfig struct {
	IntervalMS int `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
}

// Config aggregates all bot configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	TMDB      TMDBConfig      `yaml:"tmdb"`
	Session   SessionConfig   `yaml:"session"`
	Database  database.Config `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// Load reads configuration from a YAML file and overlays environment
// variables on top.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates required credentials and fills defaults. The process
// must fail fast when either external credential is missing.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		return fmt.Errorf("telegram token is required")
	}
	if strings.TrimSpace(cfg.TMDB.APIKey) == "" {
		return fmt.Errorf("tmdb api key is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	switch rm {
	case "", "polling", RunModeLongpoll:
		rm = RunModeLongpoll
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	if cfg.TMDB.TimeoutSeconds < 0 {
		return fmt.Errorf("tmdb.timeout_seconds must be >= 0")
	}
	if cfg.Session.MaxAgeSeconds < 0 || cfg.Session.SweepIntervalSeconds < 0 {
		return fmt.Errorf("session durations must be >= 0")
	}
	if cfg.Session.MaxAgeSeconds == 0 {
		cfg.Session.MaxAgeSeconds = 180
	}
	if cfg.Session.SweepIntervalSeconds == 0 {
		cfg.Session.SweepIntervalSeconds = 60
	}
	return nil
}
