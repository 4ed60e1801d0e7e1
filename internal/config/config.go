// Package config loads the service configuration from defaults, an optional
// .env file, config/vtmsu.yaml or config/vtmsu.toml and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/latoulicious/vtmsu/pkg/database"
	"github.com/latoulicious/vtmsu/pkg/logging"
	"github.com/latoulicious/vtmsu/pkg/notify"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// DatabaseConfig contains connection settings
type DatabaseConfig struct {
	Driver          string        `yaml:"driver" toml:"driver" env:"DB_DRIVER"`
	URL             string        `yaml:"url" toml:"url" env:"DATABASE_URL"`
	TablePrefix     string        `yaml:"table_prefix" toml:"table_prefix" env:"DB_TABLE_PREFIX"`
	LogLevel        string        `yaml:"log_level" toml:"log_level" env:"DB_LOG_LEVEL"`
	SlowThreshold   time.Duration `yaml:"slow_threshold" toml:"slow_threshold" env:"DB_SLOW_THRESHOLD"`
	MaxOpenConns    int           `yaml:"max_open_conns" toml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" toml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" toml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	AutoMigrate     bool          `yaml:"auto_migrate" toml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
}

// ServerConfig contains HTTP settings
type ServerConfig struct {
	Addr            string        `yaml:"addr" toml:"addr" env:"SERVER_ADDR"`
	ReadTimeout     time.Duration `yaml:"read_timeout" toml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" toml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	// AdminToken guards the storyteller endpoints; they are disabled when empty
	AdminToken string `yaml:"admin_token" toml:"admin_token" env:"ADMIN_TOKEN"`
}

// LoggerConfig contains logging configuration
type LoggerConfig struct {
	Level  string `yaml:"level" toml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" toml:"format" env:"LOG_FORMAT"`
}

// JobsConfig contains the background job schedules
type JobsConfig struct {
	Enabled         bool   `yaml:"enabled" toml:"enabled" env:"JOBS_ENABLED"`
	SpawnSchedule   string `yaml:"spawn_schedule" toml:"spawn_schedule" env:"JOBS_SPAWN_SCHEDULE"`
	CleanupSchedule string `yaml:"cleanup_schedule" toml:"cleanup_schedule" env:"JOBS_CLEANUP_SCHEDULE"`
}

// NotifyConfig contains the Discord webhook settings
type NotifyConfig struct {
	WebhookURL string `yaml:"webhook_url" toml:"webhook_url" env:"DISCORD_WEBHOOK_URL"`
	Username   string `yaml:"username" toml:"username" env:"DISCORD_WEBHOOK_USERNAME"`
	AvatarURL  string `yaml:"avatar_url" toml:"avatar_url" env:"DISCORD_WEBHOOK_AVATAR_URL"`
}

// Config is the complete service configuration
type Config struct {
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Logger   LoggerConfig   `yaml:"logger" toml:"logger"`
	Jobs     JobsConfig     `yaml:"jobs" toml:"jobs"`
	Notify   NotifyConfig   `yaml:"notify" toml:"notify"`

	// Source names the file the configuration was read from, if any
	Source string `yaml:"-" toml:"-"`
}

// Defaults returns the configuration used when nothing overrides it
func Defaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:          database.DriverPostgres,
			TablePrefix:     database.DefaultTablePrefix,
			LogLevel:        "warn",
			SlowThreshold:   200 * time.Millisecond,
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			AutoMigrate:     true,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "json",
		},
		Jobs: JobsConfig{
			Enabled:         true,
			SpawnSchedule:   "*/5 * * * *",
			CleanupSchedule: "@hourly",
		},
		Notify: NotifyConfig{
			Username: "Storyteller",
		},
	}
}

// LoadConfig loads the configuration relative to the working directory
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(".")
}

// LoadConfigFrom loads the configuration from dir. Sources are applied in
// order, each overriding the previous one:
//  1. Defaults
//  2. dir/config/vtmsu.yaml, or dir/config/vtmsu.toml when there is no YAML file
//  3. Environment variables, including those of dir/.env
func LoadConfigFrom(dir string) (*Config, error) {
	cfg := Defaults()

	envPath := filepath.Join(dir, ".env")
	if _, err := os.Stat(envPath); err == nil {
		// godotenv keeps variables that are already set
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	if err := loadFile(dir, cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func loadFile(dir string, cfg *Config) error {
	yamlPath := filepath.Join(dir, "config", "vtmsu.yaml")
	if data, err := os.ReadFile(yamlPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse YAML config: %w", err)
		}
		cfg.Source = yamlPath
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read YAML config file: %w", err)
	}

	tomlPath := filepath.Join(dir, "config", "vtmsu.toml")
	if _, err := os.Stat(tomlPath); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if _, err := toml.DecodeFile(tomlPath, cfg); err != nil {
		return fmt.Errorf("failed to parse TOML config: %w", err)
	}
	cfg.Source = tomlPath
	return nil
}

// Validate checks every section and reports the first problem found
func (c *Config) Validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case database.DriverPostgres, database.DriverMySQL, database.DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return errors.New("database url is required (DATABASE_URL)")
	}
	if !isValidLogLevel(c.Database.LogLevel) && c.Database.LogLevel != "silent" {
		return fmt.Errorf("invalid database log level: %s", c.Database.LogLevel)
	}
	if c.Database.MaxOpenConns < 0 || c.Database.MaxIdleConns < 0 {
		return errors.New("connection pool sizes cannot be negative")
	}
	if c.Database.MaxOpenConns > 0 && c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("max idle connections (%d) cannot exceed max open connections (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Server.Addr == "" {
		return errors.New("server address is required")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("server shutdown timeout must be positive")
	}

	if !isValidLogLevel(c.Logger.Level) {
		return fmt.Errorf("invalid log level: %s", c.Logger.Level)
	}
	if !isValidLogFormat(c.Logger.Format) {
		return fmt.Errorf("invalid log format: %s", c.Logger.Format)
	}

	if c.Jobs.Enabled {
		for name, spec := range map[string]string{
			"spawn":   c.Jobs.SpawnSchedule,
			"cleanup": c.Jobs.CleanupSchedule,
		} {
			if _, err := cron.ParseStandard(spec); err != nil {
				return fmt.Errorf("invalid %s schedule %q: %w", name, spec, err)
			}
		}
	}

	if c.Notify.WebhookURL != "" {
		if _, _, err := notify.ParseWebhookURL(c.Notify.WebhookURL); err != nil {
			return err
		}
	}
	return nil
}

// DatabaseOptions converts the database section into connection options
func (c *Config) DatabaseOptions(logger logging.Logger) database.Options {
	return database.Options{
		Driver:          c.Database.Driver,
		DSN:             c.Database.URL,
		TablePrefix:     c.Database.TablePrefix,
		LogLevel:        c.Database.LogLevel,
		SlowThreshold:   c.Database.SlowThreshold,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		Logger:          logger,
	}
}

// LoggingOptions converts the logger section into logging options
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{Level: c.Logger.Level, Format: c.Logger.Format}
}

// NotifyOptions converts the notify section into notifier settings
func (c *Config) NotifyOptions() notify.Config {
	return notify.Config{
		WebhookURL: c.Notify.WebhookURL,
		Username:   c.Notify.Username,
		AvatarURL:  c.Notify.AvatarURL,
	}
}

func isValidLogLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

func isValidLogFormat(format string) bool {
	switch strings.ToLower(format) {
	case "json", "text":
		return true
	}
	return false
}
