package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate checks high-impact runtime configuration constraints.
func (c Config) Validate() error {
	if strings.TrimSpace(c.PersistRoot) == "" {
		return fmt.Errorf("persist_root must not be empty")
	}

	if strings.TrimSpace(c.Scopes.Live) == "" || strings.TrimSpace(c.Scopes.Paper) == "" {
		return fmt.Errorf("scopes.live and scopes.paper must both be set")
	}
	for i, s := range c.Scopes.Registered {
		env := strings.ToLower(strings.TrimSpace(s.Env))
		if env != "paper" && env != "live" {
			return fmt.Errorf("scopes.registered[%d].env must be 'paper' or 'live', got %q", i, s.Env)
		}
		if s.Venue == "" || s.Family == "" || s.Market == "" {
			return fmt.Errorf("scopes.registered[%d] must set venue, family, and market", i)
		}
	}

	if _, err := cron.ParseStandard(c.Evaluate.Schedule); err != nil {
		return fmt.Errorf("evaluate.schedule %q is not a valid cron spec: %w", c.Evaluate.Schedule, err)
	}

	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.enabled requires bot_token and chat_id")
	}

	return nil
}
