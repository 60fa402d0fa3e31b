package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resultbot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
  admin_chat_id: 42
portal:
  url: "https://results.example.edu/login"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, int64(42), cfg.Telegram.AdminChatID)
	assert.Equal(t, 3, cfg.Fetch.Concurrency)
	assert.Equal(t, 10, cfg.Fetch.BatchSize)
	assert.Equal(t, "file", cfg.Registry.Store)
	assert.Equal(t, "users.json", cfg.Registry.Path)
	assert.Equal(t, "offset.txt", cfg.Registry.CursorPath)
	assert.True(t, cfg.Server.Enabled)
	assert.Equal(t, 8080, cfg.Server.Port)

	assert.Equal(t, 5*time.Minute, cfg.SweepInterval())
	assert.Equal(t, time.Second, cfg.DrainInterval())
	assert.Equal(t, time.Minute, cfg.ProbeTimeout())
	assert.Equal(t, 3*time.Second, cfg.SettleDelay())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
  admin_chat_id: 42
portal:
  url: "https://results.example.edu/login"
  timeout_seconds: 30
fetch:
  concurrency: 5
  sweep_interval_seconds: 60
registry:
  store: postgres
  dsn: "postgres://bot:pw@localhost/results"
  table: students
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Fetch.Concurrency)
	assert.Equal(t, time.Minute, cfg.SweepInterval())
	assert.Equal(t, 30*time.Second, cfg.ProbeTimeout())
	assert.Equal(t, "postgres", cfg.Registry.Store)
	assert.Equal(t, "students", cfg.Registry.Table)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Telegram: TelegramConfig{Token: "123:abc", AdminChatID: 42},
		Portal:   PortalConfig{URL: "https://results.example.edu"},
		Fetch:    FetchConfig{Concurrency: 3, BatchSize: 10, SweepIntervalSec: 300},
		Registry: RegistryConfig{Store: "file", Path: "users.json", CursorPath: "offset.txt"},
		Server:   ServerConfig{Enabled: true, Port: 8080},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing token", func(c *Config) { c.Telegram.Token = "" }, "telegram.token"},
		{"missing admin chat", func(c *Config) { c.Telegram.AdminChatID = 0 }, "admin_chat_id"},
		{"missing portal url", func(c *Config) { c.Portal.URL = "" }, "portal.url"},
		{"zero concurrency", func(c *Config) { c.Fetch.Concurrency = 0 }, "concurrency"},
		{"zero batch size", func(c *Config) { c.Fetch.BatchSize = 0 }, "batch_size"},
		{"zero sweep interval", func(c *Config) { c.Fetch.SweepIntervalSec = 0 }, "sweep_interval"},
		{"file store without path", func(c *Config) { c.Registry.Path = "" }, "registry.path"},
		{"unknown store", func(c *Config) { c.Registry.Store = "redis" }, "unknown registry store"},
		{"missing cursor path", func(c *Config) { c.Registry.CursorPath = "" }, "cursor_path"},
		{"enabled server without port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{
			"postgres store without dsn",
			func(c *Config) { c.Registry = RegistryConfig{Store: "postgres", CursorPath: "offset.txt"} },
			"registry.dsn",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
