// Package config loads the server configuration from a YAML file, an optional
// .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Defaults used by Normalize.
const (
	DefaultListen           = ":8080"
	DefaultDBPath           = "./data/outings.db"
	DefaultStaticPath       = "../frontend/static"
	DefaultLogLevel         = "info"
	DefaultTimezone         = "Europe/Paris"
	DefaultReminderSchedule = "*/15 * * * *"
	DefaultReminderWindow   = "24h"
	DefaultPushTTLSeconds   = 24 * 60 * 60
	DefaultPushConcurrency  = 8
)

// ReminderConfig controls the reminder sweep.
type ReminderConfig struct {
	// Schedule is a five-field cron spec. An empty schedule disables the
	// in-process sweep; RunReminderSweep can still be triggered externally.
	Schedule string `yaml:"schedule"`

	// Window is how far ahead events are reminded, as a Go duration.
	Window string `yaml:"window"`

	// TriggerToken guards RunReminderSweep. Empty disables the RPC.
	TriggerToken string `yaml:"trigger_token,omitempty"`
}

// PushConfig holds the Web Push (VAPID) settings. Without keys,
// notifications are only logged.
type PushConfig struct {
	VAPIDPublicKey  string `yaml:"vapid_public_key,omitempty"`
	VAPIDPrivateKey string `yaml:"vapid_private_key,omitempty"`

	// Subject is the contact URI sent to push services (mailto: or https:).
	Subject     string `yaml:"subject,omitempty"`
	TTLSeconds  int    `yaml:"ttl_seconds"`
	Concurrency int    `yaml:"concurrency"`
}

// Config is the top-level server configuration.
type Config struct {
	Listen     string `yaml:"listen"`
	DBPath     string `yaml:"db_path"`
	StaticPath string `yaml:"static_path"`
	LogLevel   string `yaml:"log_level"`

	// Timezone is the IANA zone used to render dates in notifications.
	Timezone string `yaml:"timezone"`

	Reminder ReminderConfig `yaml:"reminder"`
	Push     PushConfig     `yaml:"push"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Normalize()
	return cfg
}

// Normalize fills in missing values with defaults.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.DBPath == "" {
		c.DBPath = DefaultDBPath
	}
	if c.StaticPath == "" {
		c.StaticPath = DefaultStaticPath
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.Reminder.Window == "" {
		c.Reminder.Window = DefaultReminderWindow
	}
	if c.Push.TTLSeconds <= 0 {
		c.Push.TTLSeconds = DefaultPushTTLSeconds
	}
	if c.Push.Concurrency <= 0 {
		c.Push.Concurrency = DefaultPushConcurrency
	}
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	if _, err := c.ReminderWindow(); err != nil {
		return err
	}
	if c.Reminder.Schedule != "" {
		if _, err := cron.ParseStandard(c.Reminder.Schedule); err != nil {
			return fmt.Errorf("invalid reminder.schedule %q: %w", c.Reminder.Schedule, err)
		}
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if (c.Push.VAPIDPublicKey == "") != (c.Push.VAPIDPrivateKey == "") {
		return errors.New("push.vapid_public_key and push.vapid_private_key must be set together")
	}
	if c.Push.VAPIDPrivateKey != "" && c.Push.Subject == "" {
		return errors.New("push.subject is required with VAPID keys")
	}
	return nil
}

// ReminderWindow parses Reminder.Window.
func (c *Config) ReminderWindow() (time.Duration, error) {
	d, err := time.ParseDuration(c.Reminder.Window)
	if err != nil {
		return 0, fmt.Errorf("invalid reminder.window %q: %w", c.Reminder.Window, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid reminder.window %q: must be positive", c.Reminder.Window)
	}
	return d, nil
}

// Location loads Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// PushTTL returns Push.TTLSeconds as a duration.
func (c *Config) PushTTL() time.Duration {
	return time.Duration(c.Push.TTLSeconds) * time.Second
}

// PushEnabled reports whether VAPID keys are configured.
func (c *Config) PushEnabled() bool {
	return c.Push.VAPIDPrivateKey != ""
}

// Load builds the configuration.
//
// A .env file in the working directory is loaded first when present. Then,
// if path is set, the YAML file is read; a missing file is created with the
// defaults (0600). Environment variables override file values last.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			if err := Save(path, cfg); err != nil {
				return nil, err
			}
		case err != nil:
			return nil, err
		default:
			cfg = &Config{}
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Listen = getEnv("LISTEN_ADDR", c.Listen)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.StaticPath = getEnv("STATIC_PATH", c.StaticPath)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Timezone = getEnv("TIMEZONE", c.Timezone)
	c.Reminder.TriggerToken = getEnv("REMINDER_TRIGGER_TOKEN", c.Reminder.TriggerToken)
	c.Push.VAPIDPublicKey = getEnv("VAPID_PUBLIC_KEY", c.Push.VAPIDPublicKey)
	c.Push.VAPIDPrivateKey = getEnv("VAPID_PRIVATE_KEY", c.Push.VAPIDPrivateKey)
	c.Push.Subject = getEnv("VAPID_SUBJECT", c.Push.Subject)
	if v, err := strconv.Atoi(os.Getenv("PUSH_CONCURRENCY")); err == nil {
		c.Push.Concurrency = v
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Save writes cfg to path atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data to a temp file next to path, then renames it
// over path. Parent directories are created with 0700 and the file ends up
// with 0600.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
