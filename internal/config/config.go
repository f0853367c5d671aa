// Package config provides configuration management for the journal.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"fxjournal/internal/policy"
)

// Config holds all application configuration.
type Config struct {
	User    UserConfig    `mapstructure:"user"`
	Journal JournalConfig `mapstructure:"journal"`
	Risk    policy.Policy `mapstructure:"risk"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// UserConfig identifies the journal owner and the active account.
type UserConfig struct {
	ID            string `mapstructure:"id"`
	ActiveAccount string `mapstructure:"active_account"`
}

// JournalConfig holds storage and journaling defaults.
type JournalConfig struct {
	DBPath          string  `mapstructure:"db_path"`
	DefaultRisk     float64 `mapstructure:"default_risk"`
	DefaultStrategy string  `mapstructure:"default_strategy"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/fxjournal"
	}
	return filepath.Join(home, ".config", "fxjournal")
}

// Load loads configuration from the specified directory. If configDir is
// empty the default directory is used; a missing config file falls back to
// defaults after writing a template.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config.toml: %w", err)
		}
		if err := writeTemplate(configDir); err != nil {
			return nil, fmt.Errorf("writing config template: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	pol := policy.Default()

	v.SetDefault("user.id", "local")
	v.SetDefault("user.active_account", "")
	v.SetDefault("journal.db_path", filepath.Join(configDir, "journal.db"))
	v.SetDefault("journal.default_risk", 2.0)
	v.SetDefault("journal.default_strategy", "")
	v.SetDefault("risk.per_trade_risk_cap", pol.PerTradeRiskCap)
	v.SetDefault("risk.daily_risk_cap", pol.DailyRiskCap)
	v.SetDefault("risk.max_trades_per_day", pol.MaxTradesPerDay)
	v.SetDefault("risk.max_active_per_day", pol.MaxActivePerDay)
	v.SetDefault("risk.max_cancel_per_day", pol.MaxCancelPerDay)
	v.SetDefault("risk.min_risk_percent", pol.MinRiskPercent)
	v.SetDefault("risk.max_risk_percent", pol.MaxRiskPercent)
	v.SetDefault("risk.risk_step", pol.RiskStep)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FXJOURNAL_USER"); v != "" {
		cfg.User.ID = v
	}
	if v := os.Getenv("FXJOURNAL_ACCOUNT"); v != "" {
		cfg.User.ActiveAccount = v
	}
	if v := os.Getenv("FXJOURNAL_DB"); v != "" {
		cfg.Journal.DBPath = v
	}
	if v := os.Getenv("FXJOURNAL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.User.ID == "" {
		return fmt.Errorf("user.id is required")
	}
	if c.Journal.DBPath == "" {
		return fmt.Errorf("journal.db_path is required")
	}
	if c.Risk.PerTradeRiskCap <= 0 {
		return fmt.Errorf("risk.per_trade_risk_cap must be positive")
	}
	if c.Risk.DailyRiskCap < c.Risk.PerTradeRiskCap {
		return fmt.Errorf("risk.daily_risk_cap must be at least the per-trade cap")
	}
	if c.Risk.MaxTradesPerDay <= 0 || c.Risk.MaxActivePerDay <= 0 || c.Risk.MaxCancelPerDay < 0 {
		return fmt.Errorf("risk day counts must be positive")
	}
	if c.Journal.DefaultRisk <= 0 || c.Journal.DefaultRisk > c.Risk.PerTradeRiskCap {
		return fmt.Errorf("journal.default_risk must be within (0, per_trade_risk_cap]")
	}
	return nil
}

const configTemplate = `# fxjournal configuration

[user]
# Owner of the journal. All accounts and trades are scoped to this id.
id = "local"
# Account used when --account is not given. Set by "fxjournal account switch".
active_account = ""

[journal]
# db_path = "~/.config/fxjournal/journal.db"
default_risk = 2.0
default_strategy = ""

[risk]
per_trade_risk_cap = 3.0
daily_risk_cap = 5.0
max_trades_per_day = 3
max_active_per_day = 2
max_cancel_per_day = 1

[logging]
level = "info"
console = true
file = true
`

func writeTemplate(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(configTemplate), 0644)
}

// SaveActiveAccount persists the active account selection back to the
// config file.
func SaveActiveAccount(configDir, accountID string) error {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		if err := writeTemplate(configDir); err != nil {
			return err
		}
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	}
	v.Set("user.active_account", accountID)
	return v.WriteConfig()
}
