package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	HTTP    HTTPConfig    `yaml:"http"`
	Auth    AuthConfig    `yaml:"auth"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig selects where accounts are persisted.
type StorageConfig struct {
	Driver     string `yaml:"driver"`      // "file" or "sqlite"
	File       string `yaml:"file"`        // accounts text file for the file driver
	SQLitePath string `yaml:"sqlite_path"` // database file for the sqlite driver
}

// HTTPConfig contains HTTP server settings.
type HTTPConfig struct {
	Address string `yaml:"address"` // listen address (e.g., ":8080")
}

// AuthConfig contains session settings.
type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `yaml:"level"`
	Env   string `yaml:"env"` // "dev" or "prod"
}

const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"

	devJWTSecret = "dev-secret-change-me"
)

func defaults() *Config {
	return &Config{
		Storage: StorageConfig{Driver: DriverFile, File: "accounts.txt", SQLitePath: "bank.db"},
		HTTP:    HTTPConfig{Address: ":8080"},
		Auth:    AuthConfig{SessionTTL: 15 * time.Minute},
		Log:     LogConfig{Level: "info", Env: "dev"},
	}
}

// Load reads configuration from the optional YAML file named by BANK_CONFIG and
// then from environment variables, which win. JWT_SECRET must end up non-empty.
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set; required for production")
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but falls back to a development JWT secret.
// WARNING: Only use in development! Use Load() in production.
func LoadWithDefaults() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = devJWTSecret
	}
	return cfg, nil
}

func load() (*Config, error) {
	cfg := defaults()
	if path := getEnv("BANK_CONFIG", ""); path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Storage.Driver = getEnv("STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.File = getEnv("ACCOUNTS_FILE", c.Storage.File)
	c.Storage.SQLitePath = getEnv("DB_PATH", c.Storage.SQLitePath)
	c.HTTP.Address = getEnv("HTTP_ADDRESS", c.HTTP.Address)
	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Env = getEnv("APP_ENV", c.Log.Env)

	ttl, err := getEnvDuration("SESSION_TTL", c.Auth.SessionTTL)
	if err != nil {
		return err
	}
	c.Auth.SessionTTL = ttl
	return nil
}

func (c *Config) validate() error {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case DriverFile, DriverSQLite:
	default:
		return fmt.Errorf("unknown storage driver %q (want %s or %s)", c.Storage.Driver, DriverFile, DriverSQLite)
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.Auth.SessionTTL)
	}
	return nil
}

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// getEnvDuration retrieves an environment variable as a time.Duration with a default fallback.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		return d, nil
	}
	return defaultVal, nil
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{Storage: %s (file=%s sqlite=%s), HTTP: %s, SessionTTL: %s, Auth: *** (masked) ***}",
		c.Storage.Driver, c.Storage.File, c.Storage.SQLitePath, c.HTTP.Address, c.Auth.SessionTTL)
}
