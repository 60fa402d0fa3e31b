// Package config loads and validates result-bot configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Portal   PortalConfig   `mapstructure:"portal"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Registry RegistryConfig `mapstructure:"registry"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// TelegramConfig controls the chat transport.
type TelegramConfig struct {
	Token          string `mapstructure:"token"`
	AdminChatID    int64  `mapstructure:"admin_chat_id"`
	BaseURL        string `mapstructure:"base_url"`
	SendTimeoutSec int    `mapstructure:"send_timeout_seconds"`
	PollTimeoutSec int    `mapstructure:"poll_timeout_seconds"`
}

// PortalConfig controls the headless portal probe.
type PortalConfig struct {
	URL           string `mapstructure:"url"`
	TimeoutSec    int    `mapstructure:"timeout_seconds"`
	SettleDelayMs int    `mapstructure:"settle_delay_ms"`
	UserAgent     string `mapstructure:"user_agent"`
	PingTimeout   int    `mapstructure:"ping_timeout_seconds"`
}

// FetchConfig governs sweep behavior.
type FetchConfig struct {
	Concurrency      int `mapstructure:"concurrency"`
	BatchSize        int `mapstructure:"batch_size"`
	SweepIntervalSec int `mapstructure:"sweep_interval_seconds"`
	DrainIntervalMs  int `mapstructure:"drain_interval_ms"`
}

// RegistryConfig selects and configures the subscriber store.
type RegistryConfig struct {
	Store      string `mapstructure:"store"`
	Path       string `mapstructure:"path"`
	DSN        string `mapstructure:"dsn"`
	Table      string `mapstructure:"table"`
	CursorPath string `mapstructure:"cursor_path"`
}

// ServerConfig controls the admin HTTP server.
type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RESULTBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.send_timeout_seconds", 10)
	v.SetDefault("telegram.poll_timeout_seconds", 15)
	v.SetDefault("portal.timeout_seconds", 60)
	v.SetDefault("portal.settle_delay_ms", 3000)
	v.SetDefault("portal.ping_timeout_seconds", 15)
	v.SetDefault("fetch.concurrency", 3)
	v.SetDefault("fetch.batch_size", 10)
	v.SetDefault("fetch.sweep_interval_seconds", 300)
	v.SetDefault("fetch.drain_interval_ms", 1000)
	v.SetDefault("registry.store", "file")
	v.SetDefault("registry.path", "users.json")
	v.SetDefault("registry.table", "subscribers")
	v.SetDefault("registry.cursor_path", "offset.txt")
	v.SetDefault("server.enabled", true)
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required")
	}
	if c.Telegram.AdminChatID == 0 {
		return fmt.Errorf("telegram.admin_chat_id is required")
	}
	if c.Portal.URL == "" {
		return fmt.Errorf("portal.url is required")
	}
	if c.Fetch.Concurrency <= 0 {
		return fmt.Errorf("fetch.concurrency must be > 0")
	}
	if c.Fetch.BatchSize <= 0 {
		return fmt.Errorf("fetch.batch_size must be > 0")
	}
	if c.Fetch.SweepIntervalSec <= 0 {
		return fmt.Errorf("fetch.sweep_interval_seconds must be > 0")
	}
	switch c.Registry.Store {
	case "file":
		if c.Registry.Path == "" {
			return fmt.Errorf("registry.path is required for the file store")
		}
	case "postgres":
		if c.Registry.DSN == "" {
			return fmt.Errorf("registry.dsn is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown registry store: %s", c.Registry.Store)
	}
	if c.Registry.CursorPath == "" {
		return fmt.Errorf("registry.cursor_path is required")
	}
	if c.Server.Enabled && c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	return nil
}

// SweepInterval returns the scheduled sweep cadence as a duration.
func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.Fetch.SweepIntervalSec) * time.Second
}

// DrainInterval returns the command drain cadence as a duration.
func (c Config) DrainInterval() time.Duration {
	return time.Duration(c.Fetch.DrainIntervalMs) * time.Millisecond
}

// ProbeTimeout returns the per-probe ceiling as a duration.
func (c Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Portal.TimeoutSec) * time.Second
}

// SettleDelay returns the post-submit settle delay as a duration.
func (c Config) SettleDelay() time.Duration {
	return time.Duration(c.Portal.SettleDelayMs) * time.Millisecond
}
