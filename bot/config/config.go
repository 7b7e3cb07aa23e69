// Package config holds the ROM post bot configuration on top of the core one.
package config

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/rompostbot/core/config"
	"github.com/m3rciful/rompostbot/core/database"
	"github.com/m3rciful/rompostbot/core/health"
)

const (
	defaultIdleTimeout     = 30 * time.Minute
	defaultJanitorInterval = time.Minute
	defaultHealthPort      = 8000

	defaultCreditName = "Shiva Karthik"
	defaultCreditURL  = "https://github.com/madashivakarthikgoud"
)

// ChannelConfig names the announcement channel and its discussion group.
type ChannelConfig struct {
	ID           int64  `yaml:"id" envconfig:"CHANNEL_ID"`
	DiscussionID int64  `yaml:"discussion_id" envconfig:"DISCUSSION_ID"`
	LinkHost     string `yaml:"link_host" envconfig:"LINK_HOST"`
}

// SessionConfig controls conversation lifetime.
type SessionConfig struct {
	IdleTimeoutSeconds     int `yaml:"idle_timeout_seconds" envconfig:"SESSION_IDLE_TIMEOUT_SECONDS"`
	JanitorIntervalSeconds int `yaml:"janitor_interval_seconds" envconfig:"SESSION_JANITOR_INTERVAL_SECONDS"`
}

// IdleTimeout returns the configured idle timeout.
func (s SessionConfig) IdleTimeout() time.Duration {
	return time.Duration(s.IdleTimeoutSeconds) * time.Second
}

// JanitorInterval returns how often idle sessions are swept.
func (s SessionConfig) JanitorInterval() time.Duration {
	return time.Duration(s.JanitorIntervalSeconds) * time.Second
}

// BrandingConfig is the channel-specific text around each post.
type BrandingConfig struct {
	SupportURL string   `yaml:"support_url" envconfig:"SUPPORT_URL"`
	Footer     []string `yaml:"footer"`
	CreditName string   `yaml:"credit_name" envconfig:"CREDIT_NAME"`
	CreditURL  string   `yaml:"credit_url" envconfig:"CREDIT_URL"`
}

// Config is the full bot configuration.
type Config struct {
	Core coreconfig.Config `yaml:",inline"`

	Channel  ChannelConfig   `yaml:"channel"`
	Session  SessionConfig   `yaml:"session"`
	Health   health.Config   `yaml:"health"`
	Database database.Config `yaml:"database"`
	Branding BrandingConfig  `yaml:"branding"`
}

// CoreConfig returns the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Core
}

// Load reads path and the environment into a normalized Config.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Load(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates cfg and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return err
	}

	if cfg.Channel.ID == 0 {
		return fmt.Errorf("channel.id is required (CHANNEL_ID)")
	}
	if cfg.Channel.DiscussionID == 0 {
		return fmt.Errorf("channel.discussion_id is required (DISCUSSION_ID)")
	}
	cfg.Channel.LinkHost = strings.TrimSpace(cfg.Channel.LinkHost)

	if cfg.Session.IdleTimeoutSeconds < 0 || cfg.Session.JanitorIntervalSeconds < 0 {
		return fmt.Errorf("session timeouts must be >= 0")
	}
	if cfg.Session.IdleTimeoutSeconds == 0 {
		cfg.Session.IdleTimeoutSeconds = int(defaultIdleTimeout / time.Second)
	}
	if cfg.Session.JanitorIntervalSeconds == 0 {
		cfg.Session.JanitorIntervalSeconds = int(defaultJanitorInterval / time.Second)
	}

	if cfg.Health.Port == 0 {
		cfg.Health.Port = defaultHealthPort
	}
	if cfg.Health.Port < 0 || cfg.Health.Port > 65535 {
		return fmt.Errorf("health.port out of range: %d", cfg.Health.Port)
	}

	if err := cfg.Database.Normalize(); err != nil {
		return err
	}

	b := &cfg.Branding
	b.SupportURL = strings.TrimSpace(b.SupportURL)
	if b.CreditName == "" && b.CreditURL == "" {
		b.CreditName, b.CreditURL = defaultCreditName, defaultCreditURL
	}
	return nil
}
