package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/danhigham/mailstr/internal/domain"
)

type Config struct {
	Telegram       TelegramConfig  `yaml:"telegram"`
	AccessPassword string          `yaml:"access_password"`
	Patterns       []PatternConfig `yaml:"password_patterns"`
	Defaults       TemplateConfig  `yaml:"defaults"`
	LogLevel       string          `yaml:"log_level"`
}

type TelegramConfig struct {
	APIID    int    `yaml:"api_id"`
	APIHash  string `yaml:"api_hash"`
	BotToken string `yaml:"bot_token"`
}

// PatternConfig is one row of the ordered password-detection table.
type PatternConfig struct {
	Trigger   string `yaml:"trigger"`
	PrimePass string `yaml:"prime_pass"`
	MailPass  string `yaml:"mail_pass"`
}

// TemplateConfig is the default per-user output template. Pointer fields
// distinguish "absent" from an explicit empty value.
type TemplateConfig struct {
	Prime          *string `yaml:"prime"`
	Validity       *string `yaml:"validity"`
	BinType        *string `yaml:"bin_type"`
	PrimePass      *string `yaml:"prime_pass"`
	MailPass       *string `yaml:"mail_pass"`
	AutoClearTimer *int    `yaml:"auto_clear_timer"`
}

func Dir() string {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		cfgDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(cfgDir, "mailstr")
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Telegram.BotToken == "" {
		return nil, fmt.Errorf("telegram.bot_token is required")
	}
	if cfg.AccessPassword == "" {
		return nil, fmt.Errorf("access_password is required")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if t := cfg.Defaults.AutoClearTimer; t != nil && *t < 0 {
		return nil, fmt.Errorf("defaults.auto_clear_timer must be non-negative, got %d", *t)
	}

	return &cfg, nil
}

// Template merges the configured defaults over the built-in template.
func (c *Config) Template() domain.Config {
	tpl := domain.Config{
		Prime:          "prime",
		Validity:       "1m",
		BinType:        "BIN",
		AutoClearTimer: 300,
	}
	d := c.Defaults
	if d.Prime != nil {
		tpl.Prime = *d.Prime
	}
	if d.Validity != nil {
		tpl.Validity = *d.Validity
	}
	if d.BinType != nil {
		tpl.BinType = *d.BinType
	}
	if d.PrimePass != nil {
		tpl.PrimePass = *d.PrimePass
	}
	if d.MailPass != nil {
		tpl.MailPass = *d.MailPass
	}
	if d.AutoClearTimer != nil {
		tpl.AutoClearTimer = *d.AutoClearTimer
	}
	return tpl
}

// PasswordPatterns returns the configured detection table, falling back
// to the built-in one when the config file does not define any.
func (c *Config) PasswordPatterns() []domain.PasswordPattern {
	if len(c.Patterns) == 0 {
		return builtinPatterns()
	}
	out := make([]domain.PasswordPattern, 0, len(c.Patterns))
	for _, p := range c.Patterns {
		out = append(out, domain.PasswordPattern{
			Trigger:   p.Trigger,
			PrimePass: p.PrimePass,
			MailPass:  p.MailPass,
		})
	}
	return out
}

func builtinPatterns() []domain.PasswordPattern {
	return []domain.PasswordPattern{
		{Trigger: "prime123", PrimePass: "prime123", MailPass: "prime123"},
		{Trigger: "star@683", PrimePass: "star@683", MailPass: "scar@@00"},
		{Trigger: "Qwerty1", PrimePass: "Qwerty1", MailPass: "Qwerty@@00"},
		{Trigger: "prime100", PrimePass: "prime100", MailPass: "prime100"},
		{Trigger: "password123", PrimePass: "password123", MailPass: "password123"},
		{Trigger: "admin123", PrimePass: "admin123", MailPass: "admin@@00"},
	}
}
