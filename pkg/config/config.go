package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

type Config struct {
	Environment string          `koanf:"environment"`
	Timezone    string          `koanf:"timezone"`
	Server      ServerConfig    `koanf:"server"`
	Database    DatabaseConfig  `koanf:"database"`
	Telegram    TelegramConfig  `koanf:"telegram"`
	Scheduler   SchedulerConfig `koanf:"scheduler"`

	// Location is resolved from Timezone during Load.
	Location *time.Location `koanf:"-"`
	Hostname string         `koanf:"-"`
}

type ServerConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	APIToken string `koanf:"api_token"`
}

type DatabaseConfig struct {
	FilePath            string `koanf:"file_path"`
	Debug               bool   `koanf:"debug"`
	MaxRetries          int    `koanf:"max_retries"`
	ConnectRetryCount   int    `koanf:"connect_retry_count"`
	ConnectRetryDelayMS int    `koanf:"connect_retry_delay_ms"`
	BusyTimeoutMS       int    `koanf:"busy_timeout_ms"`
}

func (d DatabaseConfig) ConnectRetryDelay() time.Duration {
	return time.Duration(d.ConnectRetryDelayMS) * time.Millisecond
}

func (d DatabaseConfig) BusyTimeout() time.Duration {
	return time.Duration(d.BusyTimeoutMS) * time.Millisecond
}

type TelegramConfig struct {
	BotToken string `koanf:"bot_token"`
}

type SchedulerConfig struct {
	// TickInterval is how often the loop re-checks whether the configured
	// reminder time has passed. Materialization is idempotent, so a shorter
	// interval only costs no-op ticks.
	TickIntervalSeconds int `koanf:"tick_interval_seconds"`
}

func (s SchedulerConfig) TickInterval() time.Duration {
	return time.Duration(s.TickIntervalSeconds) * time.Second
}

const (
	envPrefix     = "READLOOP_"
	configPathENV = "READLOOP_CONFIG"
)

// New loads configuration in three layers: baked-in defaults, an optional yaml
// file (READLOOP_CONFIG, default ./readloop.yaml), then READLOOP_* environment
// variables. A double underscore separates nesting levels so that keys can
// themselves contain underscores: READLOOP_SERVER__API_TOKEN maps to
// server.api_token.
func New() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(defaultProvider(), nil); err != nil {
		return nil, errors.WithStack(err)
	}

	configPath := os.Getenv(configPathENV)
	if configPath == "" {
		configPath = "readloop.yaml"
	}
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, errors.Wrap(err, "config file error")
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	cfg.Location, err = time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid timezone %q", cfg.Timezone)
	}

	cfg.Hostname, err = os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if cfg.Environment == "test" {
		cfg.Database.FilePath = ":memory:"
	}

	return cfg, nil
}
