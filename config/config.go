// Package config loads server settings from .env files, an optional YAML
// file and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every server setting. Keys match the environment variable
// names.
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`

	Port         int    `mapstructure:"PORT"`
	ClientOrigin string `mapstructure:"CLIENT_ORIGIN"`

	StoreDriver   string `mapstructure:"STORE_DRIVER"`
	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`
	SQLDSN        string `mapstructure:"SQL_DSN"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTIssuer string        `mapstructure:"JWT_ISSUER"`
	JWTTTL    time.Duration `mapstructure:"JWT_TTL"`

	Timezone string `mapstructure:"TIMEZONE"`

	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int           `mapstructure:"REDIS_DB"`
	AuthRateLimit   int           `mapstructure:"AUTH_RATE_LIMIT"`
	AuthRateWindow  time.Duration `mapstructure:"AUTH_RATE_WINDOW"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`

	LogLevel      string `mapstructure:"LOG_LEVEL"`
	LogFormat     string `mapstructure:"LOG_FORMAT"`
	LogFile       string `mapstructure:"LOG_FILE"`
	LogMaxSizeMB  int    `mapstructure:"LOG_MAX_SIZE_MB"`
	LogMaxBackups int    `mapstructure:"LOG_MAX_BACKUPS"`
	LogMaxAgeDays int    `mapstructure:"LOG_MAX_AGE_DAYS"`
}

const devSecret = "dev-secret-change-me"

var defaults = map[string]any{
	"ENVIRONMENT":      "development",
	"PORT":             4000,
	"CLIENT_ORIGIN":    "*",
	"STORE_DRIVER":     "mongo",
	"MONGO_URI":        "mongodb://localhost:27017",
	"MONGO_DATABASE":   "smart_tasks",
	"SQL_DSN":          "smart_tasks.db",
	"JWT_SECRET":       "",
	"JWT_ISSUER":       "smart-tasks",
	"JWT_TTL":          "168h",
	"TIMEZONE":         "Local",
	"REDIS_ADDR":       "",
	"REDIS_PASSWORD":   "",
	"REDIS_DB":         0,
	"AUTH_RATE_LIMIT":  20,
	"AUTH_RATE_WINDOW": "1m",
	"SHUTDOWN_TIMEOUT": "30s",
	"LOG_LEVEL":        "info",
	"LOG_FORMAT":       "console",
	"LOG_FILE":         "",
	"LOG_MAX_SIZE_MB":  100,
	"LOG_MAX_BACKUPS":  10,
	"LOG_MAX_AGE_DAYS": 30,
}

// Load reads the given .env files (missing ones are skipped), then the YAML
// file named by CONFIG_FILE if set, then the environment. Later sources win.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(cfg.StoreDriver)
	if cfg.JWTSecret == "" && !cfg.IsProduction() {
		cfg.JWTSecret = devSecret
	}
	return cfg, cfg.Validate()
}

// IsProduction reports whether ENVIRONMENT is production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case "mongo", "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q is not one of mongo, sqlite, mysql", c.StoreDriver))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required in production"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d is out of range", c.Port))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location resolves TIMEZONE.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// RateLimitEnabled reports whether a Redis address is configured.
func (c Config) RateLimitEnabled() bool {
	return c.RedisAddr != ""
}
