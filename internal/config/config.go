// Package config loads the combat runtime configuration from YAML.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/talania/internal/combat"
	"github.com/udisondev/talania/internal/combat/shield"
	"github.com/udisondev/talania/internal/debug"
)

// Config holds all configuration for the combat runtime.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Database DatabaseConfig  `yaml:"database"`
	Combat   combat.Settings `yaml:"combat"`
	Debug    debug.Settings  `yaml:"debug"`
	Shield   ShieldConfig    `yaml:"shield"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
// Profiles are kept in memory only when Enabled is false.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// ShieldConfig configures the energy shield regeneration loop.
type ShieldConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"` // default: 250ms
}

// Default returns Config with sensible defaults.
func Default() Config {
	return Config{
		LogLevel: "info",
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "talania",
			Password: "talania",
			DBName:   "talania",
			SSLMode:  "disable",
		},
		Combat: combat.DefaultSettings(),
		Debug:  debug.DefaultSettings(),
		Shield: ShieldConfig{TickInterval: shield.DefaultTickInterval},
	}
}

// Load loads config from a YAML file.
// If the file doesn't exist, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.Combat = cfg.Combat.Sanitized()
	if cfg.Shield.TickInterval <= 0 {
		cfg.Shield.TickInterval = shield.DefaultTickInterval
	}
	if cfg.Debug.CombatLogMax <= 0 {
		cfg.Debug.CombatLogMax = debug.DefaultSettings().CombatLogMax
	}
	return cfg, nil
}

// SlogLevel maps LogLevel to a slog level. Unknown values yield info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
