// Package config loads service configuration from a TOML file with
// environment overrides for secrets.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	defaultListen        = ":8080"
	defaultDBPath        = "data/alerts.db"
	defaultNATSURL       = "nats://127.0.0.1:4222"
	defaultNATSSubject   = "scamwatch.events"
	defaultNATSQueue     = "scamwatch-workers"
	defaultExpirySeconds = 15
	defaultDeepLink      = "scamwatch://alerts"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Listen         string   `toml:"listen"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// StoreConfig holds persistence settings.
type StoreConfig struct {
	Path   string `toml:"path"`
	Silent bool   `toml:"silent"`
}

// IngestConfig holds the NATS event subscription settings.
type IngestConfig struct {
	NATSEnabled bool   `toml:"nats_enabled"`
	URL         string `toml:"url"`
	Subject     string `toml:"subject"`
	Queue       string `toml:"queue"`
}

// LocalClassifier configures the in-process backend.
type LocalClassifier struct {
	Eligible       bool   `toml:"eligible"`
	BundlePath     string `toml:"bundle_path"`
	DataDir        string `toml:"data_dir"`
	EngineEndpoint string `toml:"engine_endpoint"`
	TimeoutSec     int    `toml:"timeout_sec"`
}

// RemoteClassifier configures the network-bound backend.
type RemoteClassifier struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	BaseURL     string  `toml:"base_url"`
	Temperature float64 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
	TimeoutSec  int     `toml:"timeout_sec"`
}

// ClassifierConfig groups both backends.
type ClassifierConfig struct {
	Local  LocalClassifier  `toml:"local"`
	Remote RemoteClassifier `toml:"remote"`
}

// AlertConfig tunes the alert surface.
type AlertConfig struct {
	ExpirySeconds int    `toml:"expiry_seconds"`
	DeepLink      string `toml:"deep_link"`
}

// TelegramConfig configures the companion notification channel.
type TelegramConfig struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token"`
	ChatID   string `toml:"chat_id"`
	APIBase  string `toml:"api_base"`
}

// Config is the full service configuration.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Store      StoreConfig      `toml:"store"`
	Ingest     IngestConfig     `toml:"ingest"`
	Classifier ClassifierConfig `toml:"classifier"`
	Alert      AlertConfig      `toml:"alert"`
	Telegram   TelegramConfig   `toml:"telegram"`
}

// Load reads the TOML file at path, applies defaults and env overrides, and
// validates the result. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := toml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %q: %w", path, err)
		}
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Server.Listen) == "" {
		c.Server.Listen = defaultListen
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		c.Store.Path = defaultDBPath
	}
	if strings.TrimSpace(c.Ingest.URL) == "" {
		c.Ingest.URL = defaultNATSURL
	}
	if strings.TrimSpace(c.Ingest.Subject) == "" {
		c.Ingest.Subject = defaultNATSSubject
	}
	if strings.TrimSpace(c.Ingest.Queue) == "" {
		c.Ingest.Queue = defaultNATSQueue
	}
	if c.Alert.ExpirySeconds <= 0 {
		c.Alert.ExpirySeconds = defaultExpirySeconds
	}
	if strings.TrimSpace(c.Alert.DeepLink) == "" {
		c.Alert.DeepLink = defaultDeepLink
	}
}

// applyEnv lets deployment environments override secrets without writing
// them into the config file.
func (c *Config) applyEnv() {
	if key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); key != "" {
		c.Classifier.Remote.APIKey = key
	}
	if model := strings.TrimSpace(os.Getenv("OPENAI_MODEL")); model != "" {
		c.Classifier.Remote.Model = model
	}
	if base := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); base != "" {
		c.Classifier.Remote.BaseURL = base
	}
	if token := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")); token != "" {
		c.Telegram.BotToken = token
	}
	if chat := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); chat != "" {
		c.Telegram.ChatID = chat
	}
}

func (c *Config) validate() error {
	if c.Classifier.Local.Eligible && strings.TrimSpace(c.Classifier.Local.BundlePath) == "" {
		return errors.New("classifier.local.bundle_path is required when local is eligible")
	}
	if c.Telegram.Enabled {
		if strings.TrimSpace(c.Telegram.BotToken) == "" {
			return errors.New("telegram.bot_token is required when telegram is enabled")
		}
		if strings.TrimSpace(c.Telegram.ChatID) == "" {
			return errors.New("telegram.chat_id is required when telegram is enabled")
		}
	}
	return nil
}

// Expiry returns the alert auto-dismiss duration.
func (c Config) Expiry() time.Duration {
	return time.Duration(c.Alert.ExpirySeconds) * time.Second
}

// LocalTimeout returns the local inference timeout.
func (c Config) LocalTimeout() time.Duration {
	if c.Classifier.Local.TimeoutSec <= 0 {
		return 0
	}
	return time.Duration(c.Classifier.Local.TimeoutSec) * time.Second
}

// RemoteTimeout returns the remote inference timeout.
func (c Config) RemoteTimeout() time.Duration {
	if c.Classifier.Remote.TimeoutSec <= 0 {
		return 0
	}
	return time.Duration(c.Classifier.Remote.TimeoutSec) * time.Second
}
