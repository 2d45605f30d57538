package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robfig/cron/v3"

	"github.com/RezaEskandarii/jobboard/custom_errors"
	"github.com/RezaEskandarii/jobboard/internal/auth"
	"github.com/RezaEskandarii/jobboard/internal/db"
)

const (
	DefaultPort          = 3000
	DefaultSQLitePath    = "jobs.db"
	DefaultStatsSchedule = "@every 1h"
	DefaultLogLevel      = "info"
	DefaultRateLimit     = 100

	devAdminPassword = "admin123"
	devSessionSecret = "dev-session-secret-change-me"
)

type Config struct {
	Env  Environment
	Port int

	DatabaseURL string // PostgreSQL DSN; when empty SQLitePath is used
	SQLitePath  string

	AdminPassword     string
	AdminPasswordHash string // bcrypt hash, takes precedence over AdminPassword
	SessionSecret     string

	DBTimeout    time.Duration
	DBMaxRetries int

	StatsSchedule string // cron spec for the status report, empty disables it
	LogLevel      string

	RateLimit int // API requests per client per 15 minutes, zero disables
}

// Option type for functional options pattern
type Option func(*Config) error

// New creates a Config with development defaults and applies opts. Every
// failing option is collected into one ValidationError.
func New(opts ...Option) (*Config, error) {
	cfg := &Config{
		Env:           Development,
		Port:          DefaultPort,
		SQLitePath:    DefaultSQLitePath,
		DBTimeout:     db.DefaultStatementTimeout,
		DBMaxRetries:  db.DefaultMaxRetries,
		StatsSchedule: DefaultStatsSchedule,
		LogLevel:      DefaultLogLevel,
		RateLimit:     DefaultRateLimit,
	}
	validationErrs := &custom_errors.ValidationError{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			validationErrs.Add(err)
		}
	}

	if cfg.Env == Production {
		if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
			validationErrs.Add(errors.New("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required in production"))
		}
		if cfg.SessionSecret == "" {
			validationErrs.Add(errors.New("SESSION_SECRET is required in production"))
		}
	} else {
		if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
			cfg.AdminPassword = devAdminPassword
		}
		if cfg.SessionSecret == "" {
			cfg.SessionSecret = devSessionSecret
		}
	}

	if validationErrs.HasError() {
		return nil, validationErrs
	}
	return cfg, nil
}

func WithEnvironment(env Environment) Option {
	return func(c *Config) error {
		if env != Development && env != Production {
			return errors.Newf("unknown environment %d", env)
		}
		c.Env = env
		return nil
	}
}

func WithPort(port int) Option {
	return func(c *Config) error {
		if port < 1 || port > 65535 {
			return errors.Newf("port must be between 1 and 65535, got %d", port)
		}
		c.Port = port
		return nil
	}
}

// WithDatabase selects PostgreSQL when databaseURL is set and SQLite otherwise.
func WithDatabase(databaseURL, sqlitePath string) Option {
	return func(c *Config) error {
		c.DatabaseURL = strings.TrimSpace(databaseURL)
		if p := strings.TrimSpace(sqlitePath); p != "" {
			c.SQLitePath = p
		}
		return nil
	}
}

func WithAdminPassword(password string) Option {
	return func(c *Config) error {
		c.AdminPassword = strings.TrimSpace(password)
		return nil
	}
}

func WithAdminPasswordHash(hash string) Option {
	return func(c *Config) error {
		hash = strings.TrimSpace(hash)
		if hash == "" {
			return nil
		}
		if !strings.HasPrefix(hash, "$2") {
			return errors.New("ADMIN_PASSWORD_HASH must be a bcrypt hash")
		}
		c.AdminPasswordHash = hash
		return nil
	}
}

func WithSessionSecret(secret string) Option {
	return func(c *Config) error {
		c.SessionSecret = strings.TrimSpace(secret)
		return nil
	}
}

func WithDBTimeout(d time.Duration) Option {
	return func(c *Config) error {
		if d <= 0 {
			return errors.New("database timeout must be positive")
		}
		c.DBTimeout = d
		return nil
	}
}

func WithDBMaxRetries(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return errors.New("database retries cannot be negative")
		}
		c.DBMaxRetries = n
		return nil
	}
}

func WithStatsSchedule(spec string) Option {
	return func(c *Config) error {
		spec = strings.TrimSpace(spec)
		if spec != "" {
			if _, err := cron.ParseStandard(spec); err != nil {
				return errors.Wrapf(err, "invalid STATS_SCHEDULE %q", spec)
			}
		}
		c.StatsSchedule = spec
		return nil
	}
}

func WithLogLevel(level string) Option {
	return func(c *Config) error {
		if level = strings.TrimSpace(level); level != "" {
			c.LogLevel = strings.ToLower(level)
		}
		return nil
	}
}

func WithRateLimit(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return errors.New("rate limit cannot be negative")
		}
		c.RateLimit = n
		return nil
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == Production
}

// Database returns the storage adapter settings.
func (c *Config) Database() db.Config {
	cfg := db.ConfigFor(c.DatabaseURL, c.SQLitePath)
	cfg.StatementTimeout = c.DBTimeout
	cfg.MaxRetries = c.DBMaxRetries
	return cfg
}

// Auth returns the gate settings, hashing the plain admin password when no hash was configured.
func (c *Config) Auth() (auth.Config, error) {
	hash := c.AdminPasswordHash
	if hash == "" {
		var err error
		if hash, err = auth.HashPassword(c.AdminPassword); err != nil {
			return auth.Config{}, err
		}
	}
	return auth.Config{
		Secret:       c.SessionSecret,
		PasswordHash: hash,
		SecureCookie: c.IsProduction(),
	}, nil
}
