// Package config loads CLI settings from a .env file and DBAL_* environment
// variables. Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	"dbal/internal/dialect"
	"dbal/internal/logger"
)

// Environment variables read by Load.
const (
	EnvDSN       = "DBAL_DSN"
	EnvPlatform  = "DBAL_PLATFORM"
	EnvLogLevel  = "DBAL_LOG_LEVEL"
	EnvLogFormat = "DBAL_LOG_FORMAT"
	EnvTimeout   = "DBAL_TIMEOUT"
)

// DefaultTimeout bounds a single apply run.
const DefaultTimeout = 5 * time.Minute

// Config holds the resolved settings.
type Config struct {
	DSN       string
	Platform  dialect.Type
	LogLevel  string
	LogFormat string
	Timeout   time.Duration
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Platform:  dialect.MySQL,
		LogLevel:  "info",
		LogFormat: "console",
		Timeout:   DefaultTimeout,
	}
}

// Load reads envFile when it exists, then the DBAL_* variables. Variables
// already set in the process environment win over the file. An empty
// envFile skips the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %q: %w", envFile, err)
		}
	}

	cfg := Default()
	if v, ok := lookup(EnvDSN); ok {
		cfg.DSN = v
	}
	if v, ok := lookup(EnvPlatform); ok {
		p, err := dialect.ParseType(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvPlatform, err)
		}
		cfg.Platform = p
	} else if p, ok := InferPlatform(cfg.DSN); ok {
		cfg.Platform = p
	}
	if v, ok := lookup(EnvLogLevel); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := lookup(EnvLogFormat); ok {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v, ok := lookup(EnvTimeout); ok {
		d, err := ParseTimeout(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// ParseTimeout accepts a Go duration ("90s", "2m") or a whole number of seconds.
func ParseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("invalid timeout %q: must not be negative", s)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: must not be negative", s)
	}
	return d, nil
}

// InferPlatform recognizes PostgreSQL URL DSNs. MySQL DSNs have no scheme.
func InferPlatform(dsn string) (dialect.Type, bool) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return dialect.PostgreSQL, true
	}
	return "", false
}

// Validate checks the platform, the log settings and the DSN syntax. An
// empty DSN is valid; commands that connect check for it themselves.
func (c *Config) Validate() error {
	if _, err := dialect.ParseType(string(c.Platform)); err != nil {
		return err
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q: use debug, info, warn or error", c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format %q: use json or console", c.LogFormat)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("invalid timeout %s: must not be negative", c.Timeout)
	}
	if c.DSN == "" {
		return nil
	}
	return ValidateDSN(c.Platform, c.DSN)
}

// ValidateDSN parses dsn with the driver's own parser for platform.
func ValidateDSN(platform dialect.Type, dsn string) error {
	switch platform {
	case dialect.MySQL:
		if _, err := mysql.ParseDSN(dsn); err != nil {
			return fmt.Errorf("invalid mysql DSN: %w", err)
		}
	case dialect.PostgreSQL:
		if _, err := pgx.ParseConfig(dsn); err != nil {
			return fmt.Errorf("invalid postgresql DSN: %w", err)
		}
	default:
		return &dialect.UnsupportedError{Name: string(platform)}
	}
	return nil
}

// Logger builds the logger described by the config, writing to out.
func (c *Config) Logger(out io.Writer) *logger.Logger {
	return logger.New(&logger.Config{
		Level:  c.LogLevel,
		Format: c.LogFormat,
		Output: out,
	})
}
