package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tradeops/trade-governor/internal/scope"
)

// Config is the full governor configuration.
type Config struct {
	PersistRoot string `yaml:"persist_root"`
	LogLevel    string `yaml:"log_level"`

	Scopes   ScopesConfig   `yaml:"scopes"`
	Evaluate EvaluateConfig `yaml:"evaluate"`
	Journal  JournalConfig  `yaml:"journal"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// ScopeConfig declares one execution context.
type ScopeConfig struct {
	Env    string `yaml:"env"` // "paper" or "live"
	Venue  string `yaml:"venue"`
	Family string `yaml:"family"`
	Market string `yaml:"market"`
}

// ScopesConfig names the scope pairing the analyzer runs against plus the
// registry contents shared by every reader.
type ScopesConfig struct {
	Live       string            `yaml:"live"`  // name or alias of the live scope
	Paper      string            `yaml:"paper"` // name or alias of the paper scope
	Registered []ScopeConfig     `yaml:"registered"`
	Aliases    map[string]string `yaml:"aliases"`
}

// EvaluateConfig controls the governor daemon's evaluation cadence.
type EvaluateConfig struct {
	Schedule string `yaml:"schedule"` // cron spec, e.g. "@every 24h"
}

// JournalConfig controls the SQLite audit journal.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // empty = <persist_root>/governance/journal.db
}

// TelegramConfig controls escalation alerts.
type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		PersistRoot: "logs",
		LogLevel:    "info",
		Scopes: ScopesConfig{
			Live:  "live-crypto",
			Paper: "paper-crypto",
			Registered: []ScopeConfig{
				{Env: "live", Venue: "binance", Family: "trend", Market: "crypto"},
				{Env: "paper", Venue: "binance", Family: "trend", Market: "crypto"},
			},
			Aliases: map[string]string{
				"live-crypto":  "live-binance-trend-crypto",
				"paper-crypto": "paper-binance-trend-crypto",
			},
		},
		Evaluate: EvaluateConfig{
			Schedule: "@every 24h",
		},
		Journal: JournalConfig{
			Enabled: true,
		},
	}
}

// LoadFile reads configuration from a yaml file over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides config fields from GOVERNOR_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("GOVERNOR_PERSIST_ROOT"); v != "" {
		c.PersistRoot = v
	}
	if v := os.Getenv("GOVERNOR_SCHEDULE"); v != "" {
		c.Evaluate.Schedule = v
	}
	if v := os.Getenv("GOVERNOR_TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
		c.Telegram.Enabled = true
	}
	if v := os.Getenv("GOVERNOR_TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("GOVERNOR_JOURNAL"); v != "" {
		c.Journal.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
}

// Registry builds the shared scope registry from the configured scopes and
// aliases.
func (c Config) Registry() *scope.Registry {
	scopes := make([]scope.Scope, 0, len(c.Scopes.Registered))
	for _, s := range c.Scopes.Registered {
		scopes = append(scopes, scope.Scope{
			Env:    s.Env,
			Venue:  s.Venue,
			Family: s.Family,
			Market: s.Market,
		})
	}
	return scope.NewRegistry(scopes, c.Scopes.Aliases)
}

// JournalPath returns the journal database path, defaulting under the persist
// root.
func (c Config) JournalPath() string {
	if c.Journal.Path != "" {
		return c.Journal.Path
	}
	return filepath.Join(c.PersistRoot, "governance", "journal.db")
}
