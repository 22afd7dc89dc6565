// Package config loads server configuration from a YAML file, a .env file
// and the environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"

	"github.com/erazemk/foodbank/internal/db"
	"github.com/erazemk/foodbank/internal/logger"
)

// Config represents the application configuration.
type Config struct {
	// Env names the deployment. "test" enables the test auth header.
	Env       string          `yaml:"env"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Events    EventsConfig    `yaml:"events"`
	Monitor   MonitorConfig   `yaml:"monitor"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	CORSOrigins     []string `yaml:"cors_origins"`
	AllowTestHeader bool     `yaml:"allow_test_header"`
}

// DatabaseConfig selects the store backend.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "postgres"
	DSN    string `yaml:"dsn"`
}

// JWTConfig contains token settings. An empty secret means one is
// generated and kept in the database.
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// EventsConfig configures the message broker. An empty URL disables publishing.
type EventsConfig struct {
	AMQPURL  string `yaml:"amqp_url"`
	Exchange string `yaml:"exchange"`
}

// MonitorConfig schedules the low-stock sweep. An empty schedule disables it.
type MonitorConfig struct {
	Schedule string `yaml:"schedule"`
}

// BootstrapConfig names the first organization and admin created on an empty database.
type BootstrapConfig struct {
	Organization string `yaml:"organization"`
	AdminEmail   string `yaml:"admin_email"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Env: "production",
		Server: ServerConfig{
			Addr:        ":4545",
			CORSOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Driver: db.DriverSQLite,
			DSN:    "foodbank.sqlite3",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Events: EventsConfig{
			Exchange: "foodbank.events",
		},
		Monitor: MonitorConfig{
			Schedule: "0 */15 * * * *",
		},
		Bootstrap: BootstrapConfig{
			Organization: "Food Bank",
			AdminEmail:   "admin@foodbank.local",
		},
	}
}

// Load reads configuration from a YAML file. An empty path skips the file.
// Variables from ./.env are loaded first and never override the real environment.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// overrideWithEnv overrides config values with environment variables.
func (c *Config) overrideWithEnv() {
	// Server
	if val := os.Getenv("PORT"); val != "" {
		c.Server.Addr = ":" + val
	}
	if val := os.Getenv("FOODBANK_ADDR"); val != "" {
		c.Server.Addr = val
	}
	if val := os.Getenv("CORS_ORIGINS"); val != "" {
		c.Server.CORSOrigins = splitList(val)
	}

	// Database
	if val := os.Getenv("DATABASE_URL"); val != "" {
		c.Database.Driver = db.DriverPostgres
		c.Database.DSN = val
	}
	if val := os.Getenv("FOODBANK_DB_DRIVER"); val != "" {
		c.Database.Driver = val
	}
	if val := os.Getenv("FOODBANK_DB_DSN"); val != "" {
		c.Database.DSN = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}
	if val := os.Getenv("LOG_FILE"); val != "" {
		c.Log.File = val
	}

	// Events and monitor
	if val := os.Getenv("AMQP_URL"); val != "" {
		c.Events.AMQPURL = val
	}
	if val, ok := os.LookupEnv("LOW_STOCK_SCHEDULE"); ok {
		c.Monitor.Schedule = val
	}

	if val := os.Getenv("FOODBANK_ENV"); val != "" {
		c.Env = val
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server address is required")
	}

	switch c.Database.Driver {
	case db.DriverSQLite, db.DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database DSN is required")
	}

	if c.JWT.Secret != "" && len(c.JWT.Secret) < 32 {
		return errors.New("JWT secret must be at least 32 characters")
	}

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}

	if c.Monitor.Schedule != "" {
		if _, err := ScheduleParser.Parse(c.Monitor.Schedule); err != nil {
			return fmt.Errorf("invalid monitor schedule: %w", err)
		}
	}

	if c.Events.AMQPURL != "" && c.Events.Exchange == "" {
		return errors.New("events exchange is required when a broker URL is set")
	}

	if c.Bootstrap.AdminEmail == "" || !strings.Contains(c.Bootstrap.AdminEmail, "@") {
		return fmt.Errorf("invalid bootstrap admin email %q", c.Bootstrap.AdminEmail)
	}
	return nil
}

// Overrides are command-line values. Nil fields leave the config unchanged.
type Overrides struct {
	Addr       *string
	DSN        *string
	LogFile    *string
	AdminEmail *string
}

// Apply sets the overridden fields and validates the result.
func (c *Config) Apply(o Overrides) error {
	if o.Addr != nil {
		c.Server.Addr = *o.Addr
	}
	if o.DSN != nil {
		c.Database.DSN = *o.DSN
	}
	if o.LogFile != nil {
		c.Log.File = *o.LogFile
	}
	if o.AdminEmail != nil {
		c.Bootstrap.AdminEmail = *o.AdminEmail
	}
	return c.Validate()
}

// AllowTestHeader reports whether the X-Test-User header is honoured.
func (c *Config) AllowTestHeader() bool {
	return c.Env == "test" || c.Server.AllowTestHeader
}

// ScheduleParser parses seconds-precision cron specs.
var ScheduleParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
