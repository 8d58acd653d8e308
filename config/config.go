package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Vault    VaultConfig    `yaml:"vault"`
	Settings SettingsConfig `yaml:"settings"`
	Editor   EditorConfig   `yaml:"editor"`
	HTTP     HTTPConfig     `yaml:"http"`
	Notify   NotifyConfig   `yaml:"notify"`
	Bridge   BridgeConfig   `yaml:"bridge"`
	Log      LogConfig      `yaml:"log"`
}

type VaultConfig struct {
	Dir   string `yaml:"dir"`
	Watch bool   `yaml:"watch"`
}

// SettingsConfig points at the persisted plugin settings. The extension
// picks the codec (.yaml, .json, .toml). Empty keeps settings in memory.
type SettingsConfig struct {
	Path string `yaml:"path"`
}

type EditorConfig struct {
	Kind string `yaml:"kind"` // file or clipboard
}

type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	Retry   RetryConfig   `yaml:"retry"`
}

type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
}

type NotifyConfig struct {
	Kind     string         `yaml:"kind"` // desktop, pushover or log
	Title    string         `yaml:"title"`
	Pushover PushoverConfig `yaml:"pushover"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
}

type BridgeConfig struct {
	Addr               string `yaml:"addr"`
	AuthToken          string `yaml:"auth_token"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Load reads the YAML config at path, expanding environment variables.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Vault.Dir == "" {
		c.Vault.Dir = "."
	}
	if c.Editor.Kind == "" {
		c.Editor.Kind = "file"
	}
	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = 5 * time.Minute
	}
	if c.HTTP.Retry.MaxAttempts == 0 {
		c.HTTP.Retry.MaxAttempts = 1
	}
	if c.HTTP.Retry.InitialDelay == 0 {
		c.HTTP.Retry.InitialDelay = 500 * time.Millisecond
	}
	if c.Notify.Kind == "" {
		c.Notify.Kind = "desktop"
	}
	if c.Notify.Title == "" {
		c.Notify.Title = "LocalAI"
	}
	if c.Bridge.Addr == "" {
		c.Bridge.Addr = "127.0.0.1:27124"
	}
	if c.Bridge.RateLimitPerMinute == 0 {
		c.Bridge.RateLimitPerMinute = 60
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 28
	}
}
