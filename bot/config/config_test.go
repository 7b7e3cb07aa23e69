package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/rompostbot/core/config"
)

func validConfig() *Config {
	return &Config{
		Core:    coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "123:abc"}},
		Channel: ChannelConfig{ID: -1001, DiscussionID: -1002},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, Normalize(cfg))

	assert.Equal(t, coreconfig.RunModeLongpoll, cfg.Core.Telegram.RunMode)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout())
	assert.Equal(t, time.Minute, cfg.Session.JanitorInterval())
	assert.Equal(t, 8000, cfg.Health.Port)
	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, "Shiva Karthik", cfg.Branding.CreditName)
	assert.Equal(t, "https://github.com/madashivakarthikgoud", cfg.Branding.CreditURL)
	assert.Same(t, &cfg.Core, cfg.CoreConfig())
}

func TestNormalizeKeepsCustomCredit(t *testing.T) {
	cfg := validConfig()
	cfg.Branding.CreditName = "Someone"
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, "Someone", cfg.Branding.CreditName)
	assert.Empty(t, cfg.Branding.CreditURL)
}

func TestNormalizeErrors(t *testing.T) {
	cases := map[string]func(*Config){
		"missing token":      func(c *Config) { c.Core.Telegram.Token = "" },
		"missing channel":    func(c *Config) { c.Channel.ID = 0 },
		"missing discussion": func(c *Config) { c.Channel.DiscussionID = 0 },
		"negative idle":      func(c *Config) { c.Session.IdleTimeoutSeconds = -1 },
		"bad port":           func(c *Config) { c.Health.Port = 70000 },
		"db without name":    func(c *Config) { c.Database.Host = "localhost" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(cfg)
			assert.Error(t, Normalize(cfg))
		})
	}
	assert.Error(t, Normalize(nil))
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `telegram:
  token: from-yaml
channel:
  id: -1001
  discussion_id: -1002
  link_host: t.me
session:
  idle_timeout_seconds: 600
branding:
  support_url: https://t.me/support
  footer:
    - "Follow: @rom"
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("BOT_TOKEN", "from-env")
	t.Setenv("DISCUSSION_ID", "-1003")
	t.Setenv("PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Core.Telegram.Token)
	assert.Equal(t, int64(-1001), cfg.Channel.ID)
	assert.Equal(t, int64(-1003), cfg.Channel.DiscussionID)
	assert.Equal(t, "t.me", cfg.Channel.LinkHost)
	assert.Equal(t, 10*time.Minute, cfg.Session.IdleTimeout())
	assert.Equal(t, 9090, cfg.Health.Port)
	assert.Equal(t, "https://t.me/support", cfg.Branding.SupportURL)
	assert.Equal(t, []string{"Follow: @rom"}, cfg.Branding.Footer)
}

func TestLoadFailsWithoutChannel(t *testing.T) {
	t.Setenv("BOT_TOKEN", "t")
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "CHANNEL_ID")
}
