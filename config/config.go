/*
Package config loads the server configuration.

FILE FORMAT (YAML):

	server:
	  port: 8080
	  allowed_origins: ["http://localhost:5173"]
	  shutdown_timeout: "30s"
	database:
	  path: "leave.db"        # ":memory:" for an in-memory database
	log:
	  level: info             # debug | info | warn | error
	  format: json            # json | dev
	demo:
	  seed: true              # seed demo data into an empty database
	reminder:
	  enabled: true
	  interval: "1h"
	  lead_days: 7

Every field is optional; missing fields take the defaults from Default().
Command-line flags in cmd/server override the file.
*/
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Demo     DemoConfig     `yaml:"demo"`
	Reminder ReminderConfig `yaml:"reminder"`
}

type ServerConfig struct {
	Port               int           `yaml:"port"`
	AllowedOrigins     []string      `yaml:"allowed_origins"`
	ShutdownTimeout    time.Duration `yaml:"-"`
	ShutdownTimeoutRaw string        `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type DemoConfig struct {
	Seed bool `yaml:"seed"`
}

// ReminderConfig drives the approval reminder scheduler.
type ReminderConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Interval    time.Duration `yaml:"-"`
	IntervalRaw string        `yaml:"interval"`
	LeadDays    int           `yaml:"lead_days"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			AllowedOrigins:  []string{"http://localhost:5173", "http://localhost:8080"},
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{Path: "leave.db"},
		Log:      LogConfig{Level: "info", Format: "json"},
		Demo:     DemoConfig{Seed: true},
		Reminder: ReminderConfig{
			Enabled:  true,
			Interval: time.Hour,
			LeadDays: 7,
		},
	}
}

// Load reads the YAML file at path on top of Default().
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks a configuration built in code or modified by flags.
func (c *Config) Validate() error {
	return c.validateAndNormalize()
}

func (c *Config) validateAndNormalize() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	timeout, err := parseDurationOr(c.Server.ShutdownTimeoutRaw, c.Server.ShutdownTimeout)
	if err != nil {
		return fmt.Errorf("config: server.shutdown_timeout: %w", err)
	}
	c.Server.ShutdownTimeout = timeout

	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("config: database.path must be set")
	}

	c.Log.Level = strings.ToLower(c.Log.Level)
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	case "":
		c.Log.Level = "info"
	default:
		return fmt.Errorf("config: log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}

	interval, err := parseDurationOr(c.Reminder.IntervalRaw, c.Reminder.Interval)
	if err != nil {
		return fmt.Errorf("config: reminder.interval: %w", err)
	}
	c.Reminder.Interval = interval
	if c.Reminder.Enabled && c.Reminder.Interval <= 0 {
		return fmt.Errorf("config: reminder.interval must be positive")
	}
	if c.Reminder.LeadDays < 0 {
		return fmt.Errorf("config: reminder.lead_days must not be negative")
	}

	return nil
}

func parseDurationOr(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	return time.ParseDuration(raw)
}
