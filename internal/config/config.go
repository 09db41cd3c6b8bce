// Package config loads the service configuration from environment variables,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Logging    LoggingConfig
	Database   DatabaseConfig
	Session    SessionConfig
	Cloudinary CloudinaryConfig
	Telemetry  TelemetryConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int
	GinMode         string
	ShutdownTimeout time.Duration
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string
	// Format is json or console.
	Format string
}

// DatabaseConfig selects Postgres storage when URL is set.
type DatabaseConfig struct {
	URL      string
	MaxConns int
}

// SessionConfig selects Redis-backed sessions when RedisAddr is set.
type SessionConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// CloudinaryConfig holds the upstream media credentials.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	BaseURL   string
	Timeout   time.Duration
}

// TelemetryConfig enables OTLP export when Endpoint is set.
type TelemetryConfig struct {
	Endpoint    string
	ServiceName string
}

// Enabled reports whether all Cloudinary credentials are present.
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// Load reads the configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var errs []string

	cfg := &Config{
		Server: ServerConfig{
			Port:            getInt("PORT", 8081, &errs),
			GinMode:         getEnv("GIN_MODE", "release"),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 15*time.Second, &errs),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
		},
		Database: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			MaxConns: getInt("DB_MAX_CONNS", 10, &errs),
		},
		Session: SessionConfig{
			RedisAddr:     os.Getenv("REDIS_ADDR"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			RedisDB:       getInt("REDIS_DB", 0, &errs),
			TTL:           getDuration("SESSION_TTL", 24*time.Hour, &errs),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
			BaseURL:   getEnv("CLOUDINARY_BASE_URL", "https://api.cloudinary.com"),
			Timeout:   getDuration("CLOUDINARY_TIMEOUT", 10*time.Second, &errs),
		},
		Telemetry: TelemetryConfig{
			Endpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			ServiceName: getEnv("SERVICE_NAME", "pos-backoffice"),
		},
	}

	errs = append(errs, cfg.validate()...)
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return cfg, nil
}

func (c *Config) validate() []string {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SHUTDOWN_TIMEOUT must be positive")
	}
	switch c.Server.GinMode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Sprintf("GIN_MODE (%q) must be one of: debug, release, test", c.Server.GinMode))
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: json, console", c.Logging.Format))
	}

	if c.Database.URL != "" && c.Database.MaxConns <= 0 {
		errs = append(errs, "DB_MAX_CONNS must be positive")
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, "SESSION_TTL must be positive")
	}
	if c.Cloudinary.Timeout <= 0 {
		errs = append(errs, "CLOUDINARY_TIMEOUT must be positive")
	}

	// Partial credentials are a misconfiguration; none at all just disables deletion.
	set := 0
	for _, v := range []string{c.Cloudinary.CloudName, c.Cloudinary.APIKey, c.Cloudinary.APISecret} {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != 3 {
		errs = append(errs, "CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET must be set together")
	}

	return errs
}

// String returns a loggable summary with secrets masked.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %d, LogLevel: %q, Postgres: %t, Redis: %t, Cloudinary: %t, Telemetry: %t}",
		c.Server.Port, c.Logging.Level, c.Database.URL != "", c.Session.RedisAddr != "",
		c.Cloudinary.Enabled(), c.Telemetry.Endpoint != "")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int, errs *[]string) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s=%q is not an integer", key, v))
		return def
	}
	return i
}

func getDuration(key string, def time.Duration, errs *[]string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s=%q is not a duration", key, v))
		return def
	}
	return d
}
